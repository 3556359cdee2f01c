package store

import (
	"time"

	"msku-service/internal/resolve/model"
)

const table = "sku_mappings"

var columns = []string{"id", "sku", "msku", "marketplace", "created_at", "updated_at"}

// timestamps are unix nanoseconds
type mappingDAO struct {
	ID          string `db:"id"`
	SKU         string `db:"sku"`
	MSKU        string `db:"msku"`
	Marketplace string `db:"marketplace"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (d mappingDAO) toModel() model.Record {
	return model.Record{
		ID:          d.ID,
		SKU:         d.SKU,
		MSKU:        d.MSKU,
		Marketplace: d.Marketplace,
		CreatedAt:   time.Unix(0, d.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, d.UpdatedAt).UTC(),
	}
}
