package domain

type CheckoutStep string

const (
	StepReviewing            CheckoutStep = "REVIEWING"
	StepCommitting           CheckoutStep = "COMMITTING"
	StepPaying               CheckoutStep = "PAYING"
	StepAwaitingConfirmation CheckoutStep = "AWAITING_CONFIRMATION"
	StepSucceeded            CheckoutStep = "SUCCEEDED"
	StepFailed               CheckoutStep = "FAILED"
)

// allowedTransitions maps a step to the steps reachable from it.
var allowedTransitions = map[CheckoutStep][]CheckoutStep{
	StepReviewing:            {StepCommitting},
	StepCommitting:           {StepPaying, StepFailed, StepReviewing},
	StepPaying:               {StepSucceeded, StepAwaitingConfirmation, StepFailed, StepReviewing},
	StepAwaitingConfirmation: {StepSucceeded, StepFailed},
	StepFailed:               {StepReviewing, StepPaying},
	StepSucceeded:            {},
}

func CanTransitionTo(from, to CheckoutStep) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s CheckoutStep) IsTerminal() bool {
	return s == StepSucceeded
}

// CanAbandon reports whether the user may walk away from the checkout in this step.
func (s CheckoutStep) CanAbandon() bool {
	return s == StepReviewing || s == StepFailed
}

// String representation (for logging)
func (s CheckoutStep) String() string {
	return string(s)
}
