package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrCartNotFound = errors.New("cart not found")

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(database), nil
}

// cartDocument keeps money as decimal strings; bson has no decimal.Decimal codec.
type cartDocument struct {
	UserID    string         `bson:"user_id"`
	Lines     []lineDocument `bson:"lines"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type lineDocument struct {
	ProductID           int64  `bson:"product_id"`
	Name                string `bson:"name"`
	UnitPrice           string `bson:"unit_price"`
	DiscountedUnitPrice string `bson:"discounted_unit_price"`
	Quantity            int    `bson:"quantity"`
	Category            string `bson:"category"`
	ImageRef            string `bson:"image_ref,omitempty"`
}

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{collection: db.Collection("carts")}
}

func (m *CartRepository) GetCart(ctx context.Context, userID string) (*d.SavedCart, error) {
	var doc cartDocument
	err := m.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart := &d.SavedCart{UserID: doc.UserID, UpdatedAt: doc.UpdatedAt}
	for _, l := range doc.Lines {
		unit, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price for product %d: %w", l.ProductID, err)
		}
		discounted, err := decimal.NewFromString(l.DiscountedUnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid discounted price for product %d: %w", l.ProductID, err)
		}
		cart.Lines = append(cart.Lines, d.CartLine{
			ProductID:           l.ProductID,
			Name:                l.Name,
			UnitPrice:           unit,
			DiscountedUnitPrice: discounted,
			Quantity:            l.Quantity,
			Category:            d.Category(l.Category),
			ImageRef:            l.ImageRef,
		})
	}
	return cart, nil
}

// UpsertCart replaces the stored lines of the user's cart.
func (m *CartRepository) UpsertCart(ctx context.Context, cart *d.SavedCart) error {
	now := time.Now().UTC()
	lines := make([]lineDocument, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, lineDocument{
			ProductID:           l.ProductID,
			Name:                l.Name,
			UnitPrice:           l.UnitPrice.String(),
			DiscountedUnitPrice: l.DiscountedUnitPrice.String(),
			Quantity:            l.Quantity,
			Category:            string(l.Category),
			ImageRef:            l.ImageRef,
		})
	}

	update := bson.M{
		"$set":         bson.M{"lines": lines, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := m.collection.UpdateOne(ctx, bson.M{"user_id": cart.UserID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	cart.UpdatedAt = now
	return nil
}

func (m *CartRepository) DeleteCart(ctx context.Context, userID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *CartRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(30 * 24 * 60 * 60),
		},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
