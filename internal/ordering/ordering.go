// Package ordering keeps a strict total order over sibling rows (columns in a
// board, tasks in a column) using an integer order field.
//
// All functions are pure: they take the current siblings and return the new
// visual sequence together with the assignments that must be persisted. The
// renumber strategy is used throughout: every list touched by an insert or a
// move is renumbered 0..n-1 in visual order. Removal leaves gaps.
package ordering

import (
	"bytes"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the moving item is not among its source siblings.
var ErrNotFound = errors.New("ordering: item not found among siblings")

// Item is the ordering view of a sibling row.
type Item struct {
	ID        uuid.UUID
	Order     int
	CreatedAt time.Time
}

// Assignment is a persisted (parent, order) value for one row.
type Assignment struct {
	ID     uuid.UUID
	Parent uuid.UUID
	Order  int
}

// Less orders by Order, then CreatedAt, then ID so reads are deterministic
// even if two siblings ever share an order value.
func Less(a, b Item) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// Sort sorts items in place into visual order.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool { return Less(items[i], items[j]) })
}

// Sorted returns a sorted copy of items.
func Sorted(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	Sort(out)
	return out
}

// Append returns the order value for a new last sibling.
func Append(siblings []Item) int {
	if len(siblings) == 0 {
		return 0
	}
	max := siblings[0].Order
	for _, it := range siblings[1:] {
		if it.Order > max {
			max = it.Order
		}
	}
	return max + 1
}

// IndexOf returns the visual index of id among siblings, or -1.
func IndexOf(siblings []Item, id uuid.UUID) int {
	for i, it := range Sorted(siblings) {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Remove returns the siblings in visual order without id. Orders are kept as
// they are, so gaps are possible.
func Remove(siblings []Item, id uuid.UUID) ([]Item, bool) {
	out := make([]Item, 0, len(siblings))
	found := false
	for _, it := range Sorted(siblings) {
		if it.ID == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}

// Renumber returns the siblings in visual order with orders 0..n-1.
func Renumber(siblings []Item) []Item {
	out := Sorted(siblings)
	for i := range out {
		out[i].Order = i
	}
	return out
}

// ClampIndex bounds a requested visual index to [0, n].
func ClampIndex(index, n int) int {
	if index < 0 {
		return 0
	}
	if index > n {
		return n
	}
	return index
}

// InsertAt places item at the zero-based visual index among siblings and
// renumbers the result. The returned assignments cover the inserted item and
// every existing sibling whose order changed.
func InsertAt(parent uuid.UUID, siblings []Item, item Item, index int) ([]Item, []Assignment) {
	before := orderByID(siblings)
	list := Sorted(siblings)
	index = ClampIndex(index, len(list))

	out := make([]Item, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, item)
	out = append(out, list[index:]...)

	var changes []Assignment
	for i := range out {
		out[i].Order = i
		prev, existed := before[out[i].ID]
		if out[i].ID == item.ID || !existed || prev != i {
			changes = append(changes, Assignment{ID: out[i].ID, Parent: parent, Order: i})
		}
	}
	return out, changes
}

// Plan is the outcome of a move: the final sibling lists of both parents and
// the rows that have to be written.
type Plan struct {
	From   uuid.UUID
	To     uuid.UUID
	Moved  Assignment
	Source []Item
	Dest   []Item

	changes []Assignment
}

// Changes lists the rows whose parent or order differs from before the move.
func (p Plan) Changes() []Assignment { return p.changes }

// Empty reports a move onto the item's current position.
func (p Plan) Empty() bool { return len(p.changes) == 0 }

// SameParent reports an in-parent reorder.
func (p Plan) SameParent() bool { return p.From == p.To }

// Move plans moving id from the `from` parent to the `to` parent at the given
// visual index of the destination (after the item has left its source).
// When from == to, toSiblings is ignored and the move is a reorder.
func Move(id, from uuid.UUID, fromSiblings []Item, to uuid.UUID, toSiblings []Item, index int) (Plan, error) {
	var moving Item
	found := false
	for _, it := range fromSiblings {
		if it.ID == id {
			moving, found = it, true
			break
		}
	}
	if !found {
		return Plan{}, ErrNotFound
	}
	remaining, _ := Remove(fromSiblings, id)

	if from == to {
		index = ClampIndex(index, len(remaining))
		if IndexOf(fromSiblings, id) == index {
			list := Sorted(fromSiblings)
			return Plan{From: from, To: to, Moved: Assignment{ID: id, Parent: to, Order: moving.Order}, Dest: list}, nil
		}
		dest, changes := InsertAt(to, remaining, moving, index)
		return Plan{
			From:    from,
			To:      to,
			Moved:   assignmentFor(changes, id),
			Dest:    dest,
			changes: changes,
		}, nil
	}

	for _, it := range toSiblings {
		if it.ID == id {
			return Plan{}, errors.New("ordering: item already present in destination")
		}
	}

	before := orderByID(fromSiblings)
	source := Renumber(remaining)
	var changes []Assignment
	for _, it := range source {
		if before[it.ID] != it.Order {
			changes = append(changes, Assignment{ID: it.ID, Parent: from, Order: it.Order})
		}
	}
	dest, destChanges := InsertAt(to, toSiblings, moving, index)
	changes = append(changes, destChanges...)

	return Plan{
		From:    from,
		To:      to,
		Moved:   assignmentFor(destChanges, id),
		Source:  source,
		Dest:    dest,
		changes: changes,
	}, nil
}

func orderByID(items []Item) map[uuid.UUID]int {
	m := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		m[it.ID] = it.Order
	}
	return m
}

func assignmentFor(changes []Assignment, id uuid.UUID) Assignment {
	for _, c := range changes {
		if c.ID == id {
			return c
		}
	}
	return Assignment{ID: id}
}
