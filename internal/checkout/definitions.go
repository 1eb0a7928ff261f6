package checkout

import (
	"context"
	"sync"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/cart"
	"github.com/sirupsen/logrus"
)

type Committer interface {
	Commit(ctx context.Context, draft d.Draft, idempotencyKey string) (*d.CommittedResource, error)
}

type Payer interface {
	Pay(ctx context.Context, resource *d.CommittedResource, details d.PaymentDetails, idempotencyKey string) (d.PaymentOutcome, error)
}

// ResourceTracker reads and cancels committed resources on the server.
type ResourceTracker interface {
	Status(ctx context.Context, kind d.ResourceKind, id int64) (d.ResourceStatus, error)
	Cancel(ctx context.Context, kind d.ResourceKind, id int64) error
}

// SessionRecorder persists checkout sessions. CompleteSession must store the
// succeeded session and its completion event atomically.
type SessionRecorder interface {
	SaveSession(ctx context.Context, session *d.CheckoutSession) error
	CompleteSession(ctx context.Context, session *d.CheckoutSession, payload []byte) error
	DeleteSession(ctx context.Context, id string) error
}

// Machine supervises one user's checkout. It is the only place the current
// step changes. The lock is never held across a collaborator call; an
// in-flight flag blocks a second commit or payment meanwhile.
type Machine struct {
	mu sync.Mutex

	userID    string
	cart      *cart.Store
	committer Committer
	payer     Payer
	resources ResourceTracker
	recorder  SessionRecorder
	log       logrus.FieldLogger
	now       func() time.Time

	session     *d.CheckoutSession
	reservation *d.ReservationDraft
	attempts    uint64
	inFlight    bool
}

func NewMachine(userID string, store *cart.Store, committer Committer, payer Payer,
	resources ResourceTracker, recorder SessionRecorder, log logrus.FieldLogger) *Machine {
	return &Machine{
		userID:    userID,
		cart:      store,
		committer: committer,
		payer:     payer,
		resources: resources,
		recorder:  recorder,
		log:       log.WithField("user_id", userID),
		now:       time.Now,
	}
}
