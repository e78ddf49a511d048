package errors

import (
	"context"
	stderrors "errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/louisbranch/whispering.depths/internal/platform/errors/i18n"
)

// Domain is the error domain for Whispering Depths errors.
const Domain = "github.com/louisbranch/whispering.depths"

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

// WithMetadata creates a domain error with metadata for i18n templating.
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

// GetCode extracts the domain code from an error chain, or CodeUnknown.
func GetCode(err error) Code {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// ToGRPCStatus converts the error to a gRPC status with errdetails.
// The status message contains the internal message for logging.
// The LocalizedMessage contains the user-facing translated message.
func (e *Error) ToGRPCStatus(locale string, userMessage string) error {
	grpcCode := e.Code.GRPCCode()
	st := status.New(grpcCode, e.Message)

	st, err := st.WithDetails(
		&errdetails.ErrorInfo{
			Reason:   string(e.Code),
			Domain:   Domain,
			Metadata: e.Metadata,
		},
		&errdetails.LocalizedMessage{
			Locale:  locale,
			Message: userMessage,
		},
	)
	if err != nil {
		return status.New(grpcCode, e.Message).Err()
	}
	return st.Err()
}

// Public is the client-facing view of an error.
type Public struct {
	Status  codes.Code
	Reason  Code
	Message string
}

// Describe resolves err into its client-facing view for locale.
//
// Domain errors keep their code and get a catalog message. Context expiry maps
// to DeadlineExceeded or Canceled. Anything else is reported as an internal
// failure without leaking its text.
func Describe(err error, locale string) Public {
	catalog := i18n.GetCatalog(locale)

	var domainErr *Error
	if !stderrors.As(err, &domainErr) {
		grpcCode := codes.Internal
		switch {
		case stderrors.Is(err, context.DeadlineExceeded):
			grpcCode = codes.DeadlineExceeded
		case stderrors.Is(err, context.Canceled):
			grpcCode = codes.Canceled
		}
		return Public{
			Status:  grpcCode,
			Reason:  CodeUnknown,
			Message: catalog.Format(string(CodeUnknown), nil),
		}
	}

	userMessage := catalog.Format(string(domainErr.Code), domainErr.Metadata)
	st := status.Convert(domainErr.ToGRPCStatus(catalog.Locale(), userMessage))

	public := Public{Status: st.Code(), Reason: domainErr.Code, Message: userMessage}
	for _, detail := range st.Details() {
		if localized, ok := detail.(*errdetails.LocalizedMessage); ok {
			public.Message = localized.GetMessage()
		}
	}
	return public
}
