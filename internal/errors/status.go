package errors

import (
	"errors"
	"net/http"
	"strings"
)

// HTTPStatus maps an error from the pipeline to the response status.
// Validation failures are the only client errors; everything else is a 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if IsInvalidInput(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text placed in the "error" field of a response envelope.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var we *WrappedError
	if errors.As(err, &we) {
		// Surface the innermost typed error so upstream status codes stay visible.
		return we.Cause.Error()
	}
	return err.Error()
}

// Details renders the unwrap chain of err, one layer per line, for the
// "details" field of non-production error responses.
func Details(err error) string {
	if err == nil {
		return ""
	}
	var lines []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		lines = append(lines, typeName(e)+": "+e.Error())
	}
	return strings.Join(lines, "\n")
}

func typeName(err error) string {
	switch err.(type) {
	case *ValidationError:
		return "ValidationError"
	case *ConfigError:
		return "ConfigError"
	case *UpstreamError:
		return "UpstreamError"
	case *FormatError:
		return "FormatError"
	case *WrappedError:
		return "WrappedError"
	default:
		return "error"
	}
}
