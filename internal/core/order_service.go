package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"packflow/internal/store"
)

// OrderService owns the Order aggregates. Orders are created once at intake;
// downstream stages only flip gate flags and write derived statuses back onto
// product lines.
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)

	// SetLineGate flips a per-stage boolean gate ("purchase" or "printing")
	// on one product line.
	SetLineGate(ctx context.Context, orderID, productID, gate string, value bool) error

	// UpdateLineStatus writes a derived status label onto one product line,
	// or onto every line when productID is AllProducts.
	UpdateLineStatus(ctx context.Context, orderID, productID, status string) error

	// LedgerStatus recomputes a product line's pipeline position from stage
	// histories. Use it to cross-check the stored status label, which can
	// drift if stages are amended after a completion write.
	LedgerStatus(ctx context.Context, orderID, productID string) (string, error)
}

// CreateOrderInput is the intake payload for a new order.
type CreateOrderInput struct {
	OrderNumber string
	Company     CompanyInfo
	Lines       []ProductLineInput
}

// ProductLineInput is one ordered item at intake.
type ProductLineInput struct {
	Name     string
	Category string
	Size     string
	Type     ProductType
	Ordered  Quantity
}

// Gate names accepted by SetLineGate.
const (
	GatePurchase = "purchase"
	GatePrinting = "printing"
)

type orderService struct {
	store  store.Store
	ledger *StageLedger
}

func NewOrderService(s store.Store, ledger *StageLedger) OrderService {
	return &orderService{store: s, ledger: ledger}
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderInput) (*Order, error) {
	if req.OrderNumber == "" {
		return nil, fmt.Errorf("create order: order number is required")
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("create order %s: at least one product line is required", req.OrderNumber)
	}

	order := Order{
		ID:          uuid.NewString(),
		OrderNumber: req.OrderNumber,
		Company:     req.Company,
		OrderedAt:   time.Now(),
	}
	for i, in := range req.Lines {
		if in.Ordered.AnyNegative() || in.Ordered.IsZero() {
			return nil, fmt.Errorf("create order %s line %d: %w", req.OrderNumber, i+1, ErrInvalidQuantity)
		}
		if in.Type == TypeLidTub && in.Ordered.Kind != KindLidTub {
			return nil, fmt.Errorf("create order %s line %d: LID & TUB lines need a lid/tub pair: %w",
				req.OrderNumber, i+1, ErrInvalidQuantity)
		}
		if in.Type != TypeLidTub && in.Ordered.Kind == KindLidTub {
			return nil, fmt.Errorf("create order %s line %d: paired quantity on a %s line: %w",
				req.OrderNumber, i+1, in.Type, ErrInvalidQuantity)
		}
		order.Lines = append(order.Lines, ProductLine{
			ID:       uuid.NewString(),
			Name:     in.Name,
			Category: in.Category,
			Size:     in.Size,
			Type:     in.Type,
			Ordered:  in.Ordered,
			Status:   StatusOrderPlaced,
		})
	}

	err := store.Mutate(ctx, s.store, store.OrdersKey(), func(orders []Order) ([]Order, error) {
		return append(orders, order), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order %s: %w", req.OrderNumber, err)
	}
	return &order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	orders, err := store.Load[[]Order](ctx, s.store, store.OrdersKey())
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID || orders[i].OrderNumber == orderID {
			return &orders[i], nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
}

func (s *orderService) ListOrders(ctx context.Context) ([]Order, error) {
	return store.Load[[]Order](ctx, s.store, store.OrdersKey())
}

func (s *orderService) SetLineGate(ctx context.Context, orderID, productID, gate string, value bool) error {
	if gate != GatePurchase && gate != GatePrinting {
		return fmt.Errorf("unknown gate %q", gate)
	}
	return s.mutateLines(ctx, orderID, productID, func(line *ProductLine) {
		switch gate {
		case GatePurchase:
			line.SentToPurchase = value
		case GatePrinting:
			line.SentToPrinting = value
		}
	})
}

func (s *orderService) UpdateLineStatus(ctx context.Context, orderID, productID, status string) error {
	return s.mutateLines(ctx, orderID, productID, func(line *ProductLine) {
		line.Status = status
	})
}

// mutateLines applies fn to the matching line(s) of an order inside one
// atomic store update. productID AllProducts matches every line.
func (s *orderService) mutateLines(ctx context.Context, orderID, productID string, fn func(*ProductLine)) error {
	return store.Mutate(ctx, s.store, store.OrdersKey(), func(orders []Order) ([]Order, error) {
		for i := range orders {
			if orders[i].ID != orderID && orders[i].OrderNumber != orderID {
				continue
			}
			matched := false
			for j := range orders[i].Lines {
				if productID == AllProducts || orders[i].Lines[j].ID == productID {
					fn(&orders[i].Lines[j])
					matched = true
				}
			}
			if !matched {
				return nil, fmt.Errorf("order %s product %s: %w", orderID, productID, ErrNotFound)
			}
			return orders, nil
		}
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	})
}

// LedgerStatus walks the stage histories and reports how far this product
// line has actually progressed, regardless of the stored label.
func (s *orderService) LedgerStatus(ctx context.Context, orderID, productID string) (string, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	line := order.Line(productID)
	if line == nil {
		return "", fmt.Errorf("order %s product %s: %w", orderID, productID, ErrNotFound)
	}

	purchased, err := s.ledger.CurrentTotal(ctx, StagePurchase, order.ID, productID)
	if err != nil {
		return "", err
	}
	purchaseDone, err := s.ledger.IsComplete(ctx, StagePurchase, order.ID, productID)
	if err != nil {
		return "", err
	}
	if !purchaseDone && !purchased.Covers(line.Ordered) {
		return StatusPurchasePending, nil
	}

	verified, err := s.ledger.CurrentTotal(ctx, StageInventory, order.ID, productID)
	if err != nil {
		return "", err
	}
	stockVerified, err := s.ledger.CurrentTotal(ctx, StageStock, order.ID, productID)
	if err != nil {
		return "", err
	}
	if verified.IsZero() && stockVerified.IsZero() {
		return StatusProductionPending, nil
	}
	combined := verified
	if combined.IsZero() {
		combined = stockVerified
	} else if !stockVerified.IsZero() {
		combined = combined.Add(stockVerified)
	}
	if !combined.Covers(purchased) {
		return StatusVerifyPending, nil
	}

	dispatched, err := s.productDispatched(ctx, order.ID, productID)
	if err != nil {
		return "", err
	}
	if dispatched {
		return StatusDispatched, nil
	}

	billed, err := s.productBilled(ctx, order.ID, productID)
	if err != nil {
		return "", err
	}
	if billed {
		return StatusDispatchPending, nil
	}
	return StatusBillingPending, nil
}

func (s *orderService) productBilled(ctx context.Context, orderID, productID string) (bool, error) {
	bills, err := store.Load[[]Bill](ctx, s.store, store.SalesBillsKey(orderID))
	if err != nil {
		return false, err
	}
	for _, b := range bills {
		for _, l := range b.Lines {
			if l.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *orderService) productDispatched(ctx context.Context, orderID, productID string) (bool, error) {
	records, err := store.Load[[]DispatchRecord](ctx, s.store, store.DispatchRecordsKey())
	if err != nil {
		return false, err
	}
	for _, d := range records {
		if d.OrderID != orderID {
			continue
		}
		for _, l := range d.Lines {
			if l.ProductID == productID && d.Status != DispatchReady {
				return true, nil
			}
		}
	}
	return false, nil
}
