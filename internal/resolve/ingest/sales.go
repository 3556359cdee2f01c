package ingest

import (
	"math"
	"time"

	"msku-service/internal/resolve/engine"
	"msku-service/internal/resolve/model"
	"msku-service/internal/utils"
)

const unknown = "Unknown"

var (
	salesSKUFields         = []string{"sku", "product_sku", "item_sku", "productsku"}
	salesMarketplaceFields = []string{"marketplace", "channel", "platform"}
	salesDateFields        = []string{"date", "order_date", "orderdate", "purchase_date"}
	salesQtyFields         = []string{"quantity", "qty", "units"}
	salesPriceFields       = []string{"price", "unit_price", "unitprice", "amount"}
	salesOrderFields       = []string{"order_number", "ordernumber", "order_id", "orderid"}

	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"01/02/2006",
		"1/2/2006",
		"02.01.2006",
	}
)

// Resolver is the lookup side of the engine.
type Resolver interface {
	GetMsku(sku, marketplace string) (model.Match, error)
}

// Sales resolves every order line of a sales export and summarises it.
// Each field is read from the first candidate column holding a value in that
// row; an empty cell falls through to the next candidate, then to the default.
// Lines whose SKU cannot be read or resolved are kept and flagged.
func Sales(rows []map[string]string, r Resolver) model.SalesReport {
	keys := headerKeys(rows)
	var (
		skuKeys   = findAllExact(keys, salesSKUFields)
		mpKeys    = findAllExact(keys, salesMarketplaceFields)
		dateKeys  = findAllExact(keys, salesDateFields)
		qtyKeys   = findAllExact(keys, salesQtyFields)
		priceKeys = findAllExact(keys, salesPriceFields)
		orderKeys = findAllExact(keys, salesOrderFields)
	)

	out := make([]model.SalesRow, 0, len(rows))
	for _, row := range rows {
		line := model.SalesRow{
			OriginalSKU: firstValue(row, skuKeys),
			Marketplace: orDefault(firstValue(row, mpKeys), unknown),
			OrderDate:   parseDate(firstValue(row, dateKeys)),
			Quantity:    1,
			OrderNumber: orDefault(firstValue(row, orderKeys), unknown),
		}
		// present but unparseable counts as 0, not the default
		if raw := firstValue(row, qtyKeys); raw != "" {
			q, _ := utils.ParseNumber(raw)
			line.Quantity = int(math.Trunc(q))
		}
		if raw := firstValue(row, priceKeys); raw != "" {
			line.Price, _ = utils.ParseNumber(raw)
		}

		if line.OriginalSKU == "" {
			line.HasError = true
			line.ErrorMessage = "SKU field not found in data"
		} else if m, err := r.GetMsku(line.OriginalSKU, line.Marketplace); err != nil {
			line.HasError = true
			line.ErrorMessage = engine.Message(err)
		} else {
			line.MSKU = m.MSKU
			line.MappingConfidence = m.Confidence
		}
		out = append(out, line)
	}
	return model.SalesReport{Rows: out, Summary: summarize(out)}
}

func summarize(rows []model.SalesRow) model.SalesSummary {
	s := model.SalesSummary{TotalOrders: len(rows), Marketplaces: []string{}}
	seen := make(map[string]bool)
	for _, r := range rows {
		s.TotalQuantity += r.Quantity
		s.TotalRevenue += float64(r.Quantity) * r.Price
		if r.MSKU != "" {
			s.MappedSKUs++
		} else {
			s.UnmappedSKUs++
		}
		if !seen[r.Marketplace] {
			seen[r.Marketplace] = true
			s.Marketplaces = append(s.Marketplaces, r.Marketplace)
		}
		if d := r.OrderDate; d != nil {
			if s.DateRange.Start == nil || d.Before(*s.DateRange.Start) {
				s.DateRange.Start = d
			}
			if s.DateRange.End == nil || d.After(*s.DateRange.End) {
				s.DateRange.End = d
			}
		}
	}
	return s
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return &t
		}
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
