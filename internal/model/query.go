package model

import "time"

// Order selects the list sort.
type Order string

const (
	OrderNewest   Order = "new"
	OrderOldest   Order = "old"
	OrderCategory Order = "cat"
	OrderStatus   Order = "status"
)

// Valid reports whether o is a known sort.
func (o Order) Valid() bool {
	switch o {
	case OrderNewest, OrderOldest, OrderCategory, OrderStatus:
		return true
	}
	return false
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = 10000
)

// IssueFilter narrows a list or export. Zero values mean "no constraint".
// CreatedBefore is exclusive; an inclusive "to" date is stored as the following midnight.
type IssueFilter struct {
	Status        *Status
	Category      string
	Q             string
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

// IssueQuery is a normalised list request.
type IssueQuery struct {
	Filter   IssueFilter
	Order    Order
	Page     int
	PageSize int
}

// Offset returns the row offset for the requested page.
func (q IssueQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}
