package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput means required user text was missing.
	ErrInvalidInput = errors.New("scoutingMessage and storeOwnerReply are required")
	// ErrUpstreamEmpty means the completion API answered without usable text.
	ErrUpstreamEmpty = errors.New("no reply generated")
	// ErrUpstreamError means the completion API call itself failed.
	ErrUpstreamError = errors.New("completion request failed")
	// ErrPersistenceRead means stored client data could not be read or parsed.
	ErrPersistenceRead = errors.New("stored data unreadable")
	// ErrNetwork means the client could not reach the reply endpoint.
	ErrNetwork = errors.New("network error")
)

// RemoteError is an error reported by the reply endpoint in its JSON body.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("reply endpoint %d: %s", e.StatusCode, e.Message)
}

const (
	msgInvalidInput  = "scoutingMessage and storeOwnerReply are required"
	msgUpstreamEmpty = "No reply generated"
	msgUpstreamError = "Failed to generate reply"
	msgNetwork       = "Network or server error."
	msgUnknown       = "Something went wrong."
)

// PublicMessage maps err to the text that may be shown to a user or returned
// over HTTP. Upstream details never leak through it.
func PublicMessage(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &remote):
		if remote.Message == "" {
			return msgUnknown
		}
		return remote.Message
	case errors.Is(err, ErrInvalidInput):
		return msgInvalidInput
	case errors.Is(err, ErrUpstreamEmpty):
		return msgUpstreamEmpty
	case errors.Is(err, ErrUpstreamError):
		return msgUpstreamError
	case errors.Is(err, ErrNetwork):
		return msgNetwork
	default:
		return msgUnknown
	}
}
