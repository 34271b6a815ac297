package core

import "strings"

// Sentinel group keys for records with missing identifiers. Records are never
// dropped from a grouping — they land under a stable sentinel so totals stay
// auditable.
const (
	UnknownCompany = "Unknown Company"
	UnknownOrder   = "Unknown Order"
	UnknownGroup   = "Uncategorized"
)

// Row is one flat record fed to the grouping engine: a product occurrence
// from any stage listing, tagged with everything the hierarchy and filters
// need.
type Row struct {
	CompanyName string
	Contact     string
	OrderID     string
	OrderNumber string
	GroupKey    string // bill reference or category, depending on the view
	ProductID   string
	ProductName string
	Category    string
	Size        string
	Quantity    Quantity
	Samples     Quantity
	Status      string
}

// Filters narrow the record set before grouping. They apply as a fixed
// pipeline — search, then category, then size — each a pure predicate over
// the previous result.
type Filters struct {
	Search   string
	Category string
	Size     string
}

// ProductGroup is one deduplicated product row in the rendered table:
// recurring occurrences of the same product identity are merged with
// quantities summed.
type ProductGroup struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Size      string   `json:"size"`
	Quantity  Quantity `json:"quantity"`
	Samples   Quantity `json:"samples,omitempty"`
	Status    string   `json:"status,omitempty"`
}

// SubGroup is the Bill|Category level of the hierarchy.
type SubGroup struct {
	Key      string         `json:"key"`
	Products []ProductGroup `json:"products"`
}

// OrderGroup holds one order's sub-groups.
type OrderGroup struct {
	OrderID     string     `json:"order_id,omitempty"`
	OrderNumber string     `json:"order_number"`
	Groups      []SubGroup `json:"groups"`
}

// CompanyGroup is the top of the hierarchy.
type CompanyGroup struct {
	Company string       `json:"company"`
	Orders  []OrderGroup `json:"orders"`
}

// Group re-derives the Company → Order → Bill|Category → Product hierarchy
// from a flat record snapshot. The computation is total and stateless: no
// cache is carried between calls and the input rows are never mutated. Group
// order follows first appearance in the filtered input.
func Group(rows []Row, f Filters) []CompanyGroup {
	filtered := applySize(applyCategory(applySearch(rows, f.Search), f.Category), f.Size)

	var out []CompanyGroup
	companyIdx := map[string]int{}
	orderIdx := map[string]int{}   // company|order
	groupIdx := map[string]int{}   // company|order|group
	productIdx := map[string]int{} // company|order|group|signature

	for _, r := range filtered {
		company := r.CompanyName
		if company == "" {
			company = UnknownCompany
		}
		orderNo := r.OrderNumber
		if orderNo == "" {
			orderNo = UnknownOrder
		}
		groupKey := r.GroupKey
		if groupKey == "" {
			groupKey = UnknownGroup
		}

		ci, ok := companyIdx[company]
		if !ok {
			ci = len(out)
			companyIdx[company] = ci
			out = append(out, CompanyGroup{Company: company})
		}

		orderKey := company + "|" + orderNo
		oi, ok := orderIdx[orderKey]
		if !ok {
			oi = len(out[ci].Orders)
			orderIdx[orderKey] = oi
			out[ci].Orders = append(out[ci].Orders, OrderGroup{OrderID: r.OrderID, OrderNumber: orderNo})
		}

		gk := orderKey + "|" + groupKey
		gi, ok := groupIdx[gk]
		if !ok {
			gi = len(out[ci].Orders[oi].Groups)
			groupIdx[gk] = gi
			out[ci].Orders[oi].Groups = append(out[ci].Orders[oi].Groups, SubGroup{Key: groupKey})
		}

		sig := gk + "|" + r.ProductName + "|" + r.Category + "|" + r.Size + "|" + r.ProductID
		products := &out[ci].Orders[oi].Groups[gi].Products
		pi, ok := productIdx[sig]
		if !ok {
			pi = len(*products)
			productIdx[sig] = pi
			*products = append(*products, ProductGroup{
				ProductID: r.ProductID,
				Name:      r.ProductName,
				Category:  r.Category,
				Size:      r.Size,
				Quantity:  ZeroOf(r.Quantity.Kind),
				Samples:   ZeroOf(r.Quantity.Kind),
			})
		}
		p := &(*products)[pi]
		p.Quantity = p.Quantity.Add(r.Quantity)
		if !r.Samples.IsZero() {
			p.Samples = p.Samples.Add(r.Samples)
		}
		if r.Status != "" {
			p.Status = r.Status
		}
	}
	return out
}

// applySearch keeps rows whose company, order number, contact, or product
// name contains the query, case-insensitive. An empty query keeps everything.
func applySearch(rows []Row, query string) []Row {
	if query == "" {
		return rows
	}
	q := strings.ToLower(query)
	var out []Row
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.CompanyName), q) ||
			strings.Contains(strings.ToLower(r.OrderNumber), q) ||
			strings.Contains(strings.ToLower(r.Contact), q) ||
			strings.Contains(strings.ToLower(r.ProductName), q) {
			out = append(out, r)
		}
	}
	return out
}

func applyCategory(rows []Row, category string) []Row {
	if category == "" {
		return rows
	}
	var out []Row
	for _, r := range rows {
		if strings.EqualFold(r.Category, category) {
			out = append(out, r)
		}
	}
	return out
}

func applySize(rows []Row, size string) []Row {
	if size == "" {
		return rows
	}
	var out []Row
	for _, r := range rows {
		if strings.EqualFold(r.Size, size) {
			out = append(out, r)
		}
	}
	return out
}

// RowsFromOrders flattens order aggregates into grouping rows, keyed by
// category at the Bill|Category level.
func RowsFromOrders(orders []Order) []Row {
	var rows []Row
	for _, o := range orders {
		for _, l := range o.Lines {
			rows = append(rows, Row{
				CompanyName: o.Company.Name,
				Contact:     o.Company.Contact,
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				GroupKey:    l.Category,
				ProductID:   l.ID,
				ProductName: l.Name,
				Category:    l.Category,
				Size:        l.Size,
				Quantity:    l.Ordered,
				Status:      l.Status,
			})
		}
	}
	return rows
}

// RowsFromBills flattens an order's bills into grouping rows, keyed by bill
// ID at the Bill|Category level.
func RowsFromBills(order *Order, bills []Bill) []Row {
	var rows []Row
	for _, b := range bills {
		for _, l := range b.Lines {
			rows = append(rows, Row{
				CompanyName: order.Company.Name,
				Contact:     order.Company.Contact,
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				GroupKey:    b.ID,
				ProductID:   l.ProductID,
				ProductName: l.Name,
				Category:    l.Category,
				Size:        l.Size,
				Quantity:    l.Quantity,
				Samples:     l.Samples,
				Status:      b.Status,
			})
		}
	}
	return rows
}
