package model

import "sort"

// CategoryOrder selects how categories are arranged along the band axis.
type CategoryOrder string

// Supported category orderings. The default keeps the order data arrived in.
const (
	OrderData    CategoryOrder = "data"
	OrderAsc     CategoryOrder = "asc"
	OrderDesc    CategoryOrder = "desc"
	OrderReverse CategoryOrder = "reverse"
)

// IsValid reports whether the ordering is one of the closed set.
func (o CategoryOrder) IsValid() bool {
	switch o {
	case OrderData, OrderAsc, OrderDesc, OrderReverse:
		return true
	default:
		return false
	}
}

// OrderCategories returns a copy of data arranged per the requested ordering.
// Unknown orderings fall back to data order.
func OrderCategories(data []ChartDatum, order CategoryOrder) []ChartDatum {
	out := make([]ChartDatum, len(data))
	copy(out, data)

	switch order {
	case OrderAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	case OrderDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Category > out[j].Category })
	case OrderReverse:
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}
