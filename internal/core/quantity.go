package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// QuantityKind discriminates the two trackable quantity shapes a product line
// can carry. A "LID & TUB" line tracks two sub-components through every stage
// independently; everything else tracks a single quantity.
type QuantityKind string

const (
	KindSingle QuantityKind = "single"
	KindLidTub QuantityKind = "lid_tub"
)

// Quantity is a tagged union: either a single quantity or a lid/tub pair.
// All arithmetic is component-wise and dispatches on Kind — callers never
// probe for field presence.
type Quantity struct {
	Kind QuantityKind    `json:"kind"`
	Qty  decimal.Decimal `json:"qty,omitempty"`
	Lid  decimal.Decimal `json:"lid,omitempty"`
	Tub  decimal.Decimal `json:"tub,omitempty"`
}

// Single returns a single-component quantity.
func Single(q decimal.Decimal) Quantity {
	return Quantity{Kind: KindSingle, Qty: q}
}

// SingleInt is a convenience constructor for whole-unit quantities.
func SingleInt(n int64) Quantity {
	return Single(decimal.NewFromInt(n))
}

// LidTub returns a paired lid/tub quantity.
func LidTub(lid, tub decimal.Decimal) Quantity {
	return Quantity{Kind: KindLidTub, Lid: lid, Tub: tub}
}

// LidTubInt is a convenience constructor for whole-unit lid/tub pairs.
func LidTubInt(lid, tub int64) Quantity {
	return LidTub(decimal.NewFromInt(lid), decimal.NewFromInt(tub))
}

// ZeroOf returns the zero quantity of the same kind as q.
func ZeroOf(kind QuantityKind) Quantity {
	return Quantity{Kind: kind}
}

// Add returns q + other component-wise. Both operands must share a Kind;
// ledger appends enforce that before any arithmetic happens.
func (q Quantity) Add(other Quantity) Quantity {
	switch q.Kind {
	case KindLidTub:
		return LidTub(q.Lid.Add(other.Lid), q.Tub.Add(other.Tub))
	default:
		return Single(q.Qty.Add(other.Qty))
	}
}

// Sub returns q − other component-wise.
func (q Quantity) Sub(other Quantity) Quantity {
	switch q.Kind {
	case KindLidTub:
		return LidTub(q.Lid.Sub(other.Lid), q.Tub.Sub(other.Tub))
	default:
		return Single(q.Qty.Sub(other.Qty))
	}
}

// ClampZero floors every negative component at zero.
func (q Quantity) ClampZero() Quantity {
	clamp := func(d decimal.Decimal) decimal.Decimal {
		if d.IsNegative() {
			return decimal.Zero
		}
		return d
	}
	switch q.Kind {
	case KindLidTub:
		return LidTub(clamp(q.Lid), clamp(q.Tub))
	default:
		return Single(clamp(q.Qty))
	}
}

// IsZero reports whether every component is zero.
func (q Quantity) IsZero() bool {
	switch q.Kind {
	case KindLidTub:
		return q.Lid.IsZero() && q.Tub.IsZero()
	default:
		return q.Qty.IsZero()
	}
}

// AnyNegative reports whether any component is negative.
func (q Quantity) AnyNegative() bool {
	switch q.Kind {
	case KindLidTub:
		return q.Lid.IsNegative() || q.Tub.IsNegative()
	default:
		return q.Qty.IsNegative()
	}
}

// Covers reports whether q >= other on every component. A stage submission is
// valid only when the remaining capacity covers it.
func (q Quantity) Covers(other Quantity) bool {
	switch q.Kind {
	case KindLidTub:
		return !q.Lid.LessThan(other.Lid) && !q.Tub.LessThan(other.Tub)
	default:
		return !q.Qty.LessThan(other.Qty)
	}
}

// SameKind reports whether both quantities carry the same tag.
func (q Quantity) SameKind(other Quantity) bool {
	return q.Kind == other.Kind
}

func (q Quantity) String() string {
	switch q.Kind {
	case KindLidTub:
		return fmt.Sprintf("LID %s / TUB %s", q.Lid.String(), q.Tub.String())
	default:
		return q.Qty.String()
	}
}
