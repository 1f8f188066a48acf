package models

import (
	"kanban/internal/ordering"
	"sort"
)

// Item returns the ordering view of the column.
func (c Column) Item() ordering.Item {
	return ordering.Item{ID: c.ID, Order: c.Order, CreatedAt: c.CreatedAt}
}

// Item returns the ordering view of the task.
func (t Task) Item() ordering.Item {
	return ordering.Item{ID: t.ID, Order: t.Order, CreatedAt: t.CreatedAt}
}

func ColumnItems(cols []Column) []ordering.Item {
	items := make([]ordering.Item, len(cols))
	for i, c := range cols {
		items[i] = c.Item()
	}
	return items
}

func TaskItems(tasks []Task) []ordering.Item {
	items := make([]ordering.Item, len(tasks))
	for i, t := range tasks {
		items[i] = t.Item()
	}
	return items
}

// SortColumns puts columns into visual order using the ordering tie-break rule.
func SortColumns(cols []Column) {
	sortBy(cols, Column.Item)
}

// SortTasks puts tasks into visual order using the ordering tie-break rule.
func SortTasks(tasks []Task) {
	sortBy(tasks, Task.Item)
}

func sortBy[T any](xs []T, item func(T) ordering.Item) {
	sort.SliceStable(xs, func(i, j int) bool { return ordering.Less(item(xs[i]), item(xs[j])) })
}
