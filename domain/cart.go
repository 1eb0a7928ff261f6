package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryStarter Category = "STARTER"
	CategoryMain    Category = "MAIN"
	CategoryDessert Category = "DESSERT"
	CategoryDrink   Category = "DRINK"
)

// Product is the catalog view of a menu item, as served by the catalog collaborator.
type Product struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	Category        Category        `json:"category"`
	ImageRef        string          `json:"image_ref"`
}

// EffectivePrice is the discounted price when one is set, the list price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice.IsPositive() {
		return p.DiscountedPrice
	}
	return p.Price
}

// CartLine is one product in the client-side draft. Quantity is always >= 1.
type CartLine struct {
	ProductID           int64           `json:"product_id"`
	Name                string          `json:"name"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	DiscountedUnitPrice decimal.Decimal `json:"discounted_unit_price"`
	Quantity            int             `json:"quantity"`
	Category            Category        `json:"category"`
	ImageRef            string          `json:"image_ref"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.DiscountedUnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is derived from the cart lines on every read, never stored.
type CartSnapshot struct {
	Lines       []CartLine      `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// SavedCart is a user's cart as persisted between requests.
type SavedCart struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}
