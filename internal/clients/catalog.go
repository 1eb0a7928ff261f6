package clients

import (
	"context"
	"fmt"
	"net/url"

	d "github.com/fjod/go_restaurant/domain"
)

type Catalog struct {
	c *Client
}

func NewCatalog(c *Client) *Catalog {
	return &Catalog{c: c}
}

func (cat *Catalog) GetProduct(ctx context.Context, id int64) (*d.Product, error) {
	var p d.Product
	if err := cat.c.do(ctx, "GET", fmt.Sprintf("/products/%d", id), nil, &p, ""); err != nil {
		return nil, err
	}
	return &p, nil
}

func (cat *Catalog) ListByCategory(ctx context.Context, category d.Category) ([]d.Product, error) {
	path := "/products"
	if category != "" {
		path += "?category=" + url.QueryEscape(string(category))
	}
	var out []d.Product
	if err := cat.c.do(ctx, "GET", path, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}
