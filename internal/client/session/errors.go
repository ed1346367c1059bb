package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/moonmatch/internal/client/client"
)

var (
	ErrNoSession          = errors.New("cannot update: no active session")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrStorage            = errors.New("session storage failure")
)

// Reason classifies a failed session operation so callers can tell "bad
// credentials" from "server unreachable". A nil error is ReasonNone.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonInvalidCredentials
	ReasonNetworkUnavailable
	ReasonServerError
	ReasonMalformedResponse
	ReasonRejected
	ReasonPrecondition
	ReasonStorage
	ReasonUnknown
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInvalidCredentials:
		return "invalid credentials"
	case ReasonNetworkUnavailable:
		return "network unavailable"
	case ReasonServerError:
		return "server error"
	case ReasonMalformedResponse:
		return "malformed response"
	case ReasonRejected:
		return "rejected"
	case ReasonPrecondition:
		return "precondition failed"
	case ReasonStorage:
		return "storage failure"
	default:
		return "unknown"
	}
}

// ReasonOf maps err onto a Reason.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, client.ErrUnauthorized):
		return ReasonInvalidCredentials
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return ReasonNetworkUnavailable
	case errors.Is(err, client.ErrServer):
		return ReasonServerError
	case errors.Is(err, client.ErrMalformedResponse):
		return ReasonMalformedResponse
	case errors.Is(err, client.ErrConflict), errors.Is(err, client.ErrRejected):
		return ReasonRejected
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrMissingCredentials), errors.Is(err, client.ErrValidation):
		return ReasonPrecondition
	case errors.Is(err, ErrStorage):
		return ReasonStorage
	default:
		return ReasonUnknown
	}
}
