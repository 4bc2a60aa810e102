// Package apierr classifies stage errors into the kinds exposed by the API.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/abhisek/examforge/internal/credits"
	"github.com/abhisek/examforge/internal/llm"
	"github.com/abhisek/examforge/internal/pdfrender"
	"github.com/abhisek/examforge/internal/pdftext"
	"github.com/abhisek/examforge/internal/qcm"
	"github.com/abhisek/examforge/internal/storage"
)

// Kind is the coarse error class returned to clients.
type Kind string

const (
	KindInputInvalid        Kind = "INPUT_INVALID"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindUpstreamMalformed   Kind = "UPSTREAM_MALFORMED"
	KindPaymentRequired     Kind = "PAYMENT_REQUIRED"
	KindNotFound            Kind = "NOT_FOUND"
	KindInternal            Kind = "INTERNAL"
)

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindInputInvalid:
		return http.StatusBadRequest
	case KindUpstreamUnavailable, KindUpstreamMalformed:
		return http.StatusBadGateway
	case KindPaymentRequired:
		return http.StatusPaymentRequired
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Machine-readable codes carried in the envelope next to the kind.
const (
	CodeInputInvalid      = "INPUT_INVALID"
	CodeEmptyOrUnreadable = "EMPTY_OR_UNREADABLE"
	CodeTextTooShort      = "TEXT_TOO_SHORT"
	CodeShortBatch        = "SHORT_BATCH"
	CodeServiceError      = "SERVICE_ERROR"
	CodeInvalidJSON       = "INVALID_JSON"
	CodeTimeout           = "TIMEOUT"
	CodeInvalidEmail      = "INVALID_EMAIL"
	CodeNoCredits         = "NO_CREDITS"
	CodeTypeInvalid       = "TYPE_INVALID"
	CodeFileNotFound      = "FILE_NOT_FOUND"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL"
)

// Error is a classified failure. Produced is set for short batches.
type Error struct {
	Kind     Kind
	Status   int
	Code     string
	Message  string
	Produced int
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Status: kind.Status(), Code: code, Message: message, Err: err}
}

// Input is shorthand for an INPUT_INVALID error.
func Input(code, message string) *Error {
	return New(KindInputInvalid, code, message, nil)
}

// NotFound is shorthand for a NOT_FOUND error.
func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message, nil)
}

// From classifies err. Already classified errors are returned unchanged;
// anything unknown becomes INTERNAL.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var (
		inputErr   *qcm.InputError
		shortErr   *qcm.ShortBatchError
		rateErr    *llm.ErrRateLimit
		unavailErr *llm.ErrProviderUnavailable
		invalidErr *llm.ErrInvalidResponse
		maxTokErr  *llm.ErrMaxTokensExceeded
		llmTimeout *llm.ErrTimeout
		pdfTimeout *pdftext.ErrTimeout
	)

	switch {
	case errors.As(err, &inputErr):
		code := CodeInputInvalid
		if inputErr.Field == "cleanedText" {
			code = CodeTextTooShort
		}
		return New(KindInputInvalid, code, inputErr.Error(), err)
	case errors.As(err, &shortErr):
		e := New(KindUpstreamMalformed, CodeShortBatch, shortErr.Error(), err)
		e.Produced = shortErr.Produced
		return e
	case errors.Is(err, pdftext.ErrEmptyOrUnreadable):
		return New(KindInputInvalid, CodeEmptyOrUnreadable, "the PDF has no extractable text", err)
	case errors.As(err, &pdfTimeout), errors.As(err, &llmTimeout):
		return New(KindUpstreamUnavailable, CodeTimeout, err.Error(), err)
	case errors.As(err, &invalidErr), errors.As(err, &maxTokErr):
		return New(KindUpstreamMalformed, CodeInvalidJSON, err.Error(), err)
	case errors.As(err, &rateErr), errors.As(err, &unavailErr),
		errors.Is(err, pdftext.ErrUnavailable), errors.Is(err, credits.ErrUnavailable),
		errors.Is(err, pdfrender.ErrUnavailable):
		return New(KindUpstreamUnavailable, CodeServiceError, err.Error(), err)
	case errors.Is(err, credits.ErrInvalidEmail):
		return New(KindInputInvalid, CodeInvalidEmail, err.Error(), err)
	case errors.Is(err, credits.ErrInsufficientCredits):
		return New(KindPaymentRequired, CodeNoCredits, err.Error(), err)
	case errors.Is(err, storage.ErrNotFound):
		return New(KindNotFound, CodeFileNotFound, err.Error(), err)
	case errors.Is(err, context.DeadlineExceeded):
		return New(KindUpstreamUnavailable, CodeTimeout, err.Error(), err)
	}

	return New(KindInternal, CodeInternal, "internal error", err)
}

// Envelope is the JSON body written for a failed request.
type Envelope struct {
	Status  string `json:"status"`
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// Produced is present on every short batch, zero included.
	Produced *int `json:"produced,omitempty"`
}

// Envelope renders e for the wire.
func (e *Error) Envelope() Envelope {
	env := Envelope{
		Status:  "ERROR",
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Error(),
	}
	if e.Code == CodeShortBatch {
		produced := e.Produced
		env.Produced = &produced
	}
	return env
}
