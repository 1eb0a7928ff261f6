package domain

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION"
	KindCommitRejected ErrorKind = "COMMIT_REJECTED"
	KindPartialCommit  ErrorKind = "PARTIAL_COMMIT_FAILURE"
	KindPaymentFailed  ErrorKind = "PAYMENT_FAILED"
	KindNetwork        ErrorKind = "NETWORK"
	KindUnknown        ErrorKind = "UNKNOWN"
)

var (
	ErrValidation     = errors.New("invalid input")
	ErrCommitRejected = errors.New("commit rejected")
	ErrPartialCommit  = errors.New("commit failed after partial effect")
	ErrPaymentFailed  = errors.New("payment failed")
	ErrNetwork        = errors.New("network error")

	IllegalTransitionError = errors.New("illegal transition of checkout step")
	ErrStaleAttempt        = errors.New("result belongs to an abandoned checkout attempt")
	ErrCheckoutInFlight    = errors.New("checkout step already in flight")
	ErrUnauthenticated     = errors.New("sign-in required")
)

var kindSentinels = map[ErrorKind]error{
	KindValidation:     ErrValidation,
	KindCommitRejected: ErrCommitRejected,
	KindPartialCommit:  ErrPartialCommit,
	KindPaymentFailed:  ErrPaymentFailed,
	KindNetwork:        ErrNetwork,
}

// CheckoutError carries the taxonomy kind of a failure along with its cause.
// errors.Is(err, ErrPartialCommit) and friends match on the kind.
type CheckoutError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func NewError(kind ErrorKind, op, msg string, cause error) *CheckoutError {
	return &CheckoutError{Kind: kind, Op: op, Message: msg, Err: cause}
}

func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

func (e *CheckoutError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf classifies any error into the checkout taxonomy.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}

// UserMessage tells the user whether anything was created on the server.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindValidation:
		return "Please check the highlighted fields and try again."
	case KindCommitRejected:
		return "Nothing was created. Please review your selection and try again."
	case KindPartialCommit:
		return "Your order could not be completed and may be partially saved. Please do not resubmit; contact support or start over."
	case KindPaymentFailed:
		return "Your order was created but not paid. Retry the payment; do not place the order again."
	case KindNetwork:
		return "We could not reach the server. Nothing was charged; please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// RemoteError is a non-2xx response from an upstream collaborator.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Rejected reports a client-side refusal (4xx) as opposed to a server or transport fault.
func (e *RemoteError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
