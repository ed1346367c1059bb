// Package formlink recognizes event questionnaire links, as scanned from a QR
// code or pasted by an admin.
package formlink

import (
	"errors"
	"net/url"
	"strings"
)

var ErrNotAForm = errors.New("not a Google Form link")

// Parse validates scanned text as a Google Form link and returns the
// normalized URL. The form markers are matched against the host and path
// only, never the query or fragment.
func Parse(data string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(data))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", ErrNotAForm
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrNotAForm
	}
	if !isFormLocation(strings.ToLower(u.Hostname()), u.Path) {
		return "", ErrNotAForm
	}
	return u.String(), nil
}

func isFormLocation(host, path string) bool {
	switch host {
	case "forms.google.com":
		return true
	case "docs.google.com":
		return path == "/forms" || strings.HasPrefix(path, "/forms/")
	default:
		return false
	}
}
