package payment

import (
	"context"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/sirupsen/logrus"
)

// Gateway is the payments collaborator.
type Gateway interface {
	Charge(ctx context.Context, req d.ChargeRequest) (*d.ChargeResponse, error)
}

// Orchestrator drives a committed resource through one payment attempt.
// It never touches the commitment itself: a failed charge leaves the
// resource pending and payable again.
type Orchestrator struct {
	gateway Gateway
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewOrchestrator(gateway Gateway, timeout time.Duration, log logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		gateway: gateway,
		timeout: timeout,
		log:     log,
	}
}
