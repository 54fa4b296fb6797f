package errors

import (
	stderrors "errors"
	"net/http"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Additional context for templating
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata attached.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf extracts the machine code from an error chain.
func CodeOf(err error) Code {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// HTTPStatus maps an error to an HTTP status code for the JSON surface.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch CodeOf(err) {
	case CodeLocaleCodeEmpty, CodeLocaleCodeInvalid,
		CodeUserNameEmpty, CodeUserNameInvalid, CodeUserPasswordEmpty,
		CodePageTitleEmpty, CodePageSlugEmpty, CodePageSlugInvalid,
		CodePageKindInvalid, CodePageLocaleEmpty, CodePageParentCycle,
		CodeTranslationInvalid, CodeTranslationSameLocale,
		CodeSegmentContextEmpty, CodeSourceInvalid,
		CodeStringValueEmpty, CodeStringTranslationEmpty,
		CodeBlanksMarkerMissing, CodeBlanksSeparatorMissing,
		CodeBlanksParamInvalid, CodeRequestInvalid:
		return http.StatusBadRequest
	case CodeUserSessionRequired, CodeUserSessionInvalid, CodeUserBadCredentials:
		return http.StatusUnauthorized
	case CodeUserNotAuthorized, CodeUserNotActivePerm:
		return http.StatusForbidden
	case CodeLocaleNotFound, CodeUserNotFound, CodePageNotFound,
		CodePageRootMissing, CodeTranslationNotFound, CodeSegmentNotFound,
		CodeSourceNotFound, CodeStringNotFound, CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
