package checkout

import "errors"

const op = "checkout"

var (
	ErrNoCheckout   = errors.New("no checkout in progress")
	ErrEmptyDraft   = errors.New("nothing to check out")
	// ErrDraftChanged refuses payment for a commitment made from another draft.
	ErrDraftChanged = errors.New("draft changed since it was committed")
)
