// Package failure defines the error taxonomy shared by every stage of a
// photo search. Each failure carries exactly one Kind so callers can tell
// a bad user input from a network problem or an unusable payload.
package failure

import (
	"errors"
	"fmt"
)

// Kind identifies which stage of the search pipeline failed
type Kind string

const (
	// KindValidation marks malformed or out-of-range user input
	KindValidation Kind = "validation"

	// KindTransport marks network level failures (DNS, connect, timeout)
	KindTransport Kind = "transport"

	// KindBadStatus marks an HTTP status outside 200-299
	KindBadStatus Kind = "bad_status"

	// KindEmptyBody marks a response without data
	KindEmptyBody Kind = "empty_body"

	// KindDecode marks a body that is not JSON or not the expected shape
	KindDecode Kind = "decode"

	// KindRemoteStatus marks a parsed payload whose stat is not "ok"
	KindRemoteStatus Kind = "remote_status"

	// KindMissingField marks a well-formed payload lacking photos, pages or photo
	KindMissingField Kind = "missing_field"

	// KindEmptyResultSet marks a page with zero photos
	KindEmptyResultSet Kind = "empty_result_set"

	// KindMissingImageURL marks a chosen photo without a usable url_m
	KindMissingImageURL Kind = "missing_image_url"

	// KindImageFetchFailed marks a failed binary image download
	KindImageFetchFailed Kind = "image_fetch_failed"
)

// Error is a search failure with its kind, a diagnostic message and an
// optional underlying cause
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext attaches a diagnostic key/value pair
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// UserMessage returns the text a front end shows for this failure
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindValidation:
		if msg, ok := e.Context["hint"].(string); ok && msg != "" {
			return msg
		}
		return e.Message
	case KindTransport:
		return "Could not reach Flickr. Check your connection and try again."
	default:
		return "No Image found"
	}
}

// New creates a failure of the given kind
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a failure of the given kind around cause
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if
// there is none
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err carries a failure of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the text to show for err: the failure's user
// message when err carries one, err.Error() otherwise
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.UserMessage()
	}
	return err.Error()
}
