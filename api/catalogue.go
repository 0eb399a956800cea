package api

import (
	"context"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-bidagri-client/internal/errors"
	"github.com/jrsteele09/go-bidagri-client/products"
)

// Products lists the public catalogue
func (c *Client) Products(ctx context.Context) ([]products.Product, error) {
	return fetchList[products.Product](ctx, c, "/public/products")
}

// Product fetches one catalogue item
func (c *Client) Product(ctx context.Context, id int64) (*products.Product, error) {
	return fetchOne[products.Product](ctx, c, fmt.Sprintf("/public/%d", id))
}

// Categories lists every product category
func (c *Client) Categories(ctx context.Context) ([]products.Category, error) {
	return fetchList[products.Category](ctx, c, "/public/product-categories")
}

// Category fetches one product category
func (c *Client) Category(ctx context.Context, id int64) (*products.Category, error) {
	return fetchOne[products.Category](ctx, c, fmt.Sprintf("/public/product-categories/%d", id))
}

func fetchList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	envelope, err := call[[]T](ctx, c, http.MethodGet, path, authOptional, nil)
	if err != nil {
		return nil, err
	}
	if err := envelope.Err(); err != nil {
		return nil, err
	}
	items, _ := envelope.Data()
	if items == nil {
		items = make([]T, 0)
	}
	return items, nil
}

func fetchOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	envelope, err := call[T](ctx, c, http.MethodGet, path, authOptional, nil)
	if err != nil {
		return nil, err
	}
	if err := envelope.Err(); err != nil {
		return nil, err
	}
	item, ok := envelope.Data()
	if !ok {
		return nil, apperrors.Wrapf(ErrNotFound, "%s", path)
	}
	return &item, nil
}
