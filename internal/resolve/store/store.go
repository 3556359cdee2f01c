// Package store persists mapping records. The resolution engine itself is
// in-memory only; the catalog keeps it in sync with a Store.
package store

import (
	"context"
	"errors"
	"strings"

	"msku-service/internal/resolve/model"
)

var (
	ErrNotFound  = errors.New("mapping not found")
	ErrDuplicate = errors.New("mapping already exists")
)

type Store interface {
	// List returns all records in creation order.
	List(ctx context.Context) ([]model.Record, error)
	Get(ctx context.Context, id string) (model.Record, error)
	Create(ctx context.Context, rec model.Record) error
	Update(ctx context.Context, rec model.Record) error
	Delete(ctx context.Context, id string) error
	Close() error
}

func sameKey(a, b model.Record) bool {
	return strings.EqualFold(a.SKU, b.SKU) && strings.EqualFold(a.Marketplace, b.Marketplace)
}
