package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/moonmatch/internal/client/formlink"
)

// Scan checks text decoded from an event QR code. A Google Form link is
// printed together with what to do next; anything else is refused.
func (a *App) Scan(ctx context.Context, args []string) error {
	data := strings.Join(args, " ")
	if data == "" {
		text, err := getSimpleText(a.reader, "Paste the text of the scanned QR code", a.out)
		if err != nil {
			return err
		}
		data = text
	}

	link, err := formlink.Parse(data)
	if errors.Is(err, formlink.ErrNotAForm) {
		a.printf("This QR code does not contain a valid Google Form URL.\n")
		return nil
	}
	if err != nil {
		return err
	}

	a.printf("This QR code contains a Google Form. Open it in your browser:\n  %s\n", link)
	if a.isLoggedIn() {
		a.printf("Your responses are linked by your account email.\n")
	} else {
		a.printf("Please complete the form, then 'register' or 'login' to link your responses.\n")
	}
	return nil
}
