package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManifestRow is one consolidated product on a shipment or invoice manifest.
type ManifestRow struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Size      string          `json:"size"`
	Quantity  Quantity        `json:"quantity"`
	Samples   Quantity        `json:"samples,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price,omitempty"`
}

// ManifestSource is one contributing record (a bill, billing record, or
// dispatch entry) feeding a manifest.
type ManifestSource struct {
	CreatedAt time.Time
	Status    string
	Lines     []BillLine
}

// Manifest is the consolidated, deduplicated product list for a shipment or
// invoice. Status is the status of the most recently created contributing
// source, not an aggregate.
type Manifest struct {
	Rows   []ManifestRow `json:"rows"`
	Status string        `json:"status,omitempty"`
}

// Consolidate merges source product lists into one manifest. Rows are unique
// per (name, category, size, productID) with quantities summed across all
// contributing sources; missing optional fields default to zero rather than
// failing the merge. Row order follows first appearance.
func Consolidate(sources []ManifestSource) Manifest {
	var m Manifest
	index := map[string]int{}
	var newest time.Time

	for _, src := range sources {
		if src.CreatedAt.After(newest) || m.Status == "" {
			newest = src.CreatedAt
			m.Status = src.Status
		}
		for _, l := range src.Lines {
			sig := l.Name + "|" + l.Category + "|" + l.Size + "|" + l.ProductID
			i, ok := index[sig]
			if !ok {
				i = len(m.Rows)
				index[sig] = i
				m.Rows = append(m.Rows, ManifestRow{
					ProductID: l.ProductID,
					Name:      l.Name,
					Category:  l.Category,
					Size:      l.Size,
					Quantity:  ZeroOf(l.Quantity.Kind),
					Samples:   ZeroOf(l.Quantity.Kind),
				})
			}
			row := &m.Rows[i]
			row.Quantity = row.Quantity.Add(l.Quantity)
			if !l.Samples.IsZero() {
				row.Samples = row.Samples.Add(l.Samples)
			}
			if row.UnitPrice.IsZero() && !l.UnitPrice.IsZero() {
				row.UnitPrice = l.UnitPrice
			}
		}
	}
	return m
}
