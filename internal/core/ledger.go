package core

import (
	"context"
	"fmt"

	"packflow/internal/store"
)

// Stage identifies one ledgered phase of the fulfillment pipeline.
type Stage string

const (
	StagePurchase        Stage = "purchase"
	StageInventory       Stage = "inventory"
	StageStock           Stage = "stock"
	StageJobworkSent     Stage = "jobwork_sent"
	StageJobworkReceived Stage = "jobwork_received"
)

// receiptDoc is the purchase-channel blob: one per (orderID, productID) key,
// history plus the sticky complete flag.
type receiptDoc struct {
	History  []LedgerEntry `json:"history"`
	Complete bool          `json:"complete,omitempty"`
}

// channelDoc is the order-keyed blob used by the verification and job-work
// channels: all entries for the order in one array, with sticky per-product
// complete flags alongside. The AllProducts key is the order-level override.
type channelDoc struct {
	Entries  []LedgerEntry   `json:"entries"`
	Complete map[string]bool `json:"complete,omitempty"`
}

// StageLedger is the append-only history per (orderID, productID) composite
// key. Entries are immutable once written; a product's current stage total is
// the reduction over history, never a stored counter.
type StageLedger struct {
	store store.Store
}

func NewStageLedger(s store.Store) *StageLedger {
	return &StageLedger{store: s}
}

// Append validates and stores one ledger entry. Negative deltas are rejected
// before storage; a zero delta is only allowed when it carries a complete
// flag (a "close the stage" entry).
func (l *StageLedger) Append(ctx context.Context, stage Stage, orderID string, e LedgerEntry) error {
	if e.ProductID == "" {
		return fmt.Errorf("ledger append: missing product ID: %w", ErrInvalidQuantity)
	}
	if e.Delta.AnyNegative() || e.Samples.AnyNegative() {
		return fmt.Errorf("ledger append for product %s: negative quantity: %w", e.ProductID, ErrInvalidQuantity)
	}
	if e.Delta.IsZero() && e.Samples.IsZero() && !e.Complete {
		return fmt.Errorf("ledger append for product %s: empty delta: %w", e.ProductID, ErrInvalidQuantity)
	}

	if stage == StagePurchase {
		key := store.LabelReceiptKey(orderID, e.ProductID)
		return store.Mutate(ctx, l.store, key, func(doc receiptDoc) (receiptDoc, error) {
			doc.History = append(doc.History, e)
			if e.Complete {
				doc.Complete = true
			}
			return doc, nil
		})
	}

	key, direction := channelKey(stage, orderID)
	if key == "" {
		return fmt.Errorf("unknown stage %q", stage)
	}
	if direction != "" {
		e.Direction = direction
	}
	return store.Mutate(ctx, l.store, key, func(doc channelDoc) (channelDoc, error) {
		doc.Entries = append(doc.Entries, e)
		if e.Complete {
			if doc.Complete == nil {
				doc.Complete = make(map[string]bool)
			}
			doc.Complete[e.ProductID] = true
		}
		return doc, nil
	})
}

// AppendBatch stores a multi-product submission as one atomic write. Only
// order-keyed stages support batches; each entry is validated like Append and
// the whole batch is rejected if any entry fails.
func (l *StageLedger) AppendBatch(ctx context.Context, stage Stage, orderID string, entries []LedgerEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("ledger batch append: no entries: %w", ErrInvalidQuantity)
	}
	key, direction := channelKey(stage, orderID)
	if key == "" {
		return fmt.Errorf("stage %q does not take batches", stage)
	}
	for i := range entries {
		e := &entries[i]
		if e.ProductID == "" {
			return fmt.Errorf("ledger batch append: missing product ID: %w", ErrInvalidQuantity)
		}
		if e.Delta.AnyNegative() || e.Samples.AnyNegative() {
			return fmt.Errorf("ledger batch append for product %s: negative quantity: %w", e.ProductID, ErrInvalidQuantity)
		}
		if e.Delta.IsZero() && e.Samples.IsZero() && !e.Complete {
			return fmt.Errorf("ledger batch append for product %s: empty delta: %w", e.ProductID, ErrInvalidQuantity)
		}
		if direction != "" {
			e.Direction = direction
		}
	}
	return store.Mutate(ctx, l.store, key, func(doc channelDoc) (channelDoc, error) {
		for _, e := range entries {
			doc.Entries = append(doc.Entries, e)
			if e.Complete {
				if doc.Complete == nil {
					doc.Complete = make(map[string]bool)
				}
				doc.Complete[e.ProductID] = true
			}
		}
		return doc, nil
	})
}

// History returns a product's entries at a stage, newest first.
func (l *StageLedger) History(ctx context.Context, stage Stage, orderID, productID string) ([]LedgerEntry, error) {
	entries, err := l.load(ctx, stage, orderID, productID)
	if err != nil {
		return nil, err
	}
	// Stored oldest-first; views want newest-first.
	out := make([]LedgerEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// CurrentTotal is the component-wise sum of Delta over a product's history.
func (l *StageLedger) CurrentTotal(ctx context.Context, stage Stage, orderID, productID string) (Quantity, error) {
	entries, err := l.load(ctx, stage, orderID, productID)
	if err != nil {
		return Quantity{}, err
	}
	return sumDeltas(entries, false), nil
}

// ConsumedTotal is CurrentTotal plus samples — the full capacity a product
// has consumed at this stage. Samples draw from the same pool as the main
// quantity.
func (l *StageLedger) ConsumedTotal(ctx context.Context, stage Stage, orderID, productID string) (Quantity, error) {
	entries, err := l.load(ctx, stage, orderID, productID)
	if err != nil {
		return Quantity{}, err
	}
	return sumDeltas(entries, true), nil
}

// IsComplete reports the sticky complete flag for a product, or true when the
// order-level override is set — the override wins over per-product flags.
func (l *StageLedger) IsComplete(ctx context.Context, stage Stage, orderID, productID string) (bool, error) {
	if stage == StagePurchase {
		all, err := store.Load[receiptDoc](ctx, l.store, store.LabelReceiptKey(orderID, AllProducts))
		if err != nil {
			return false, err
		}
		if all.Complete {
			return true, nil
		}
		doc, err := store.Load[receiptDoc](ctx, l.store, store.LabelReceiptKey(orderID, productID))
		if err != nil {
			return false, err
		}
		return doc.Complete, nil
	}

	key, _ := channelKey(stage, orderID)
	if key == "" {
		return false, fmt.Errorf("unknown stage %q", stage)
	}
	doc, err := store.Load[channelDoc](ctx, l.store, key)
	if err != nil {
		return false, err
	}
	return doc.Complete[AllProducts] || doc.Complete[productID], nil
}

// SetComplete sets or explicitly unsets the sticky flag. productID may be
// AllProducts for the order-wide toggle.
func (l *StageLedger) SetComplete(ctx context.Context, stage Stage, orderID, productID string, v bool) error {
	if stage == StagePurchase {
		key := store.LabelReceiptKey(orderID, productID)
		return store.Mutate(ctx, l.store, key, func(doc receiptDoc) (receiptDoc, error) {
			doc.Complete = v
			return doc, nil
		})
	}
	key, _ := channelKey(stage, orderID)
	if key == "" {
		return fmt.Errorf("unknown stage %q", stage)
	}
	return store.Mutate(ctx, l.store, key, func(doc channelDoc) (channelDoc, error) {
		if doc.Complete == nil {
			doc.Complete = make(map[string]bool)
		}
		doc.Complete[productID] = v
		return doc, nil
	})
}

// Batches reconstructs submission sessions for an order-keyed stage, newest
// first, grouping entries that share a batch ID.
func (l *StageLedger) Batches(ctx context.Context, stage Stage, orderID string) ([]VerificationBatch, error) {
	key, direction := channelKey(stage, orderID)
	if key == "" {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	doc, err := store.Load[channelDoc](ctx, l.store, key)
	if err != nil {
		return nil, err
	}

	var batches []VerificationBatch
	index := map[string]int{}
	for _, e := range doc.Entries {
		if direction != "" && e.Direction != direction {
			continue
		}
		i, ok := index[e.BatchID]
		if !ok {
			i = len(batches)
			index[e.BatchID] = i
			batches = append(batches, VerificationBatch{BatchID: e.BatchID, At: e.At, Remarks: e.Remarks})
		}
		batches[i].Entries = append(batches[i].Entries, e)
	}

	// Stored oldest-first; reverse for display.
	for i, j := 0, len(batches)-1; i < j; i, j = i+1, j-1 {
		batches[i], batches[j] = batches[j], batches[i]
	}
	return batches, nil
}

// load returns a product's entries at a stage, oldest first.
func (l *StageLedger) load(ctx context.Context, stage Stage, orderID, productID string) ([]LedgerEntry, error) {
	if stage == StagePurchase {
		doc, err := store.Load[receiptDoc](ctx, l.store, store.LabelReceiptKey(orderID, productID))
		if err != nil {
			return nil, err
		}
		return doc.History, nil
	}

	key, direction := channelKey(stage, orderID)
	if key == "" {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	doc, err := store.Load[channelDoc](ctx, l.store, key)
	if err != nil {
		return nil, err
	}
	var entries []LedgerEntry
	for _, e := range doc.Entries {
		if e.ProductID != productID {
			continue
		}
		if direction != "" && e.Direction != direction {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// channelKey maps an order-keyed stage to its store key and, for job-work
// stages, the entry direction it filters on.
func channelKey(stage Stage, orderID string) (key, direction string) {
	switch stage {
	case StageInventory:
		return store.InventoryVerificationKey(orderID), ""
	case StageStock:
		return store.StockVerificationKey(orderID), ""
	case StageJobworkSent:
		return store.JobworkKey(orderID), JobworkSent
	case StageJobworkReceived:
		return store.JobworkKey(orderID), JobworkReceived
	default:
		return "", ""
	}
}

// sumDeltas reduces entries to a total. The total adopts the kind of the
// first entry; an empty history sums to the zero single quantity.
func sumDeltas(entries []LedgerEntry, includeSamples bool) Quantity {
	var total Quantity
	for i, e := range entries {
		if i == 0 {
			total = ZeroOf(e.Delta.Kind)
		}
		total = total.Add(e.Delta)
		if includeSamples && !e.Samples.IsZero() {
			total = total.Add(e.Samples)
		}
	}
	if total.Kind == "" {
		total.Kind = KindSingle
	}
	return total
}
