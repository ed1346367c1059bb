package cli

import (
	"github.com/dmitrijs2005/moonmatch/internal/client/client"
	"github.com/dmitrijs2005/moonmatch/internal/client/session"
)

// describe turns an error into the line shown to the user.
func describe(err error) string {
	msg := client.ServerMessage(err)

	switch session.ReasonOf(err) {
	case session.ReasonInvalidCredentials:
		if msg != "" {
			return msg
		}
		return "Invalid email or password."
	case session.ReasonNetworkUnavailable:
		return "Cannot reach the server. Check your connection and try again."
	case session.ReasonServerError:
		return "The server had a problem handling the request. Try again later."
	case session.ReasonMalformedResponse:
		return "The server sent an unexpected response."
	case session.ReasonRejected:
		if msg != "" {
			return msg
		}
		return "The server rejected the request."
	case session.ReasonStorage:
		return "Local storage problem: " + err.Error()
	default:
		return err.Error()
	}
}
