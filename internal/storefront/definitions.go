package storefront

import (
	"context"
	"sync"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/cache"
	"github.com/fjod/go_restaurant/internal/cart"
	"github.com/fjod/go_restaurant/internal/checkout"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*d.Product, error)
	ListByCategory(ctx context.Context, category d.Category) ([]d.Product, error)
}

type Orders interface {
	ListMine(ctx context.Context) ([]d.Order, error)
	Get(ctx context.Context, id int64) (*d.Order, error)
	Cancel(ctx context.Context, id int64) error
}

type Reservations interface {
	ListTables(ctx context.Context) ([]d.Slot, error)
	Get(ctx context.Context, id int64) (*d.Reservation, error)
	Cancel(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, upd d.ReservationUpdate) (*d.Reservation, error)
}

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*d.SavedCart, error)
	UpsertCart(ctx context.Context, cart *d.SavedCart) error
	DeleteCart(ctx context.Context, userID string) error
}

// MachineFactory builds the checkout machine that owns a user's cart store.
type MachineFactory func(userID string, store *cart.Store) *checkout.Machine

// Workspace is one shopper's cart draft and the checkout that reads it.
type Workspace struct {
	Cart     *cart.Store
	Checkout *checkout.Machine
}

type Deps struct {
	Catalog      Catalog
	Orders       Orders
	Reservations Reservations
	Carts        CartRepository
	Cache        cache.CartCache
	NewMachine   MachineFactory
	Pricing      d.Pricing
	Location     *time.Location
}

// Service is the storefront facade the HTTP layer talks to. Workspaces live
// in memory for the lifetime of the process; carts are persisted after every
// mutation so a restart only loses in-progress checkouts.
type Service struct {
	catalog      Catalog
	orders       Orders
	reservations Reservations
	carts        CartRepository
	cache        cache.CartCache
	newMachine   MachineFactory
	pricing      d.Pricing
	loc          *time.Location
	log          logrus.FieldLogger
	now          func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
	sfg        singleflight.Group
}

func NewService(deps Deps, log logrus.FieldLogger) *Service {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		catalog:      deps.Catalog,
		orders:       deps.Orders,
		reservations: deps.Reservations,
		carts:        deps.Carts,
		cache:        deps.Cache,
		newMachine:   deps.NewMachine,
		pricing:      deps.Pricing,
		loc:          loc,
		log:          log,
		now:          time.Now,
		workspaces:   make(map[string]*Workspace),
	}
}
