package client

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyDraft is returned by Submission when every quantity is zero. The
// caller must not hit the network in that case.
var ErrEmptyDraft = errors.New("client: draft has no allocated quantities")

type draftKey struct {
	nurseryID   int64
	orderItemID int64
}

type draftBound struct {
	available int
	requested int
}

// Draft accumulates an allocation against a suggestions snapshot. Quantities
// are validated against the snapshot's min(available, requested) bound, so an
// invalid submission cannot be built.
type Draft struct {
	bounds     map[draftKey]draftBound
	quantities map[draftKey]int
	// nursery order as served, so Submission output is deterministic
	nurseryOrder []int64
	itemOrder    map[int64][]int64
}

// NewDraft builds a draft scoped to one suggestions snapshot.
func NewDraft(suggestions []NurserySuggestion) *Draft {
	d := &Draft{
		bounds:     make(map[draftKey]draftBound),
		quantities: make(map[draftKey]int),
		itemOrder:  make(map[int64][]int64),
	}
	for _, s := range suggestions {
		d.nurseryOrder = append(d.nurseryOrder, s.NurseryID)
		for _, item := range s.AvailableItems {
			key := draftKey{nurseryID: s.NurseryID, orderItemID: item.OrderItemID}
			bound := item.AvailableQty
			if item.RequestedQty < bound {
				bound = item.RequestedQty
			}
			d.bounds[key] = draftBound{available: bound, requested: item.RequestedQty}
			d.itemOrder[s.NurseryID] = append(d.itemOrder[s.NurseryID], item.OrderItemID)
		}
	}
	return d
}

// SetQuantity records qty for the (nursery, order item) pair. Zero clears the
// pair. Unknown pairs and quantities outside [0, bound] are rejected.
func (d *Draft) SetQuantity(nurseryID, orderItemID int64, qty int) error {
	key := draftKey{nurseryID: nurseryID, orderItemID: orderItemID}
	bound, ok := d.bounds[key]
	if !ok {
		return fmt.Errorf("client: nursery %d cannot supply order item %d", nurseryID, orderItemID)
	}
	if qty < 0 {
		return fmt.Errorf("client: quantity must not be negative, got %d", qty)
	}
	if qty > bound.available {
		return fmt.Errorf("client: quantity %d exceeds available %d for order item %d", qty, bound.available, orderItemID)
	}
	if qty == 0 {
		delete(d.quantities, key)
		return nil
	}
	d.quantities[key] = qty
	return nil
}

// Quantity returns the drafted quantity for the pair; absent pairs are zero.
func (d *Draft) Quantity(nurseryID, orderItemID int64) int {
	return d.quantities[draftKey{nurseryID: nurseryID, orderItemID: orderItemID}]
}

// Submission materializes the draft, dropping zero items and empty nurseries.
// Returns ErrEmptyDraft when nothing remains.
func (d *Draft) Submission() (Submission, error) {
	var out Submission
	for _, nurseryID := range d.nurseryOrder {
		var items []AllocationItem
		for _, orderItemID := range d.itemOrder[nurseryID] {
			qty := d.quantities[draftKey{nurseryID: nurseryID, orderItemID: orderItemID}]
			if qty == 0 {
				continue
			}
			items = append(items, AllocationItem{OrderItemID: orderItemID, Quantity: qty})
		}
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].OrderItemID < items[j].OrderItemID
		})
		out.Allocations = append(out.Allocations, AllocationEntry{
			NurseryID: nurseryID,
			Items:     items,
		})
	}
	if len(out.Allocations) == 0 {
		return Submission{}, ErrEmptyDraft
	}
	return out, nil
}
