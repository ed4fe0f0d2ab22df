package enums

import "fmt"

// OrderType separates checkout orders from converted quick orders.
type OrderType string

const (
	OrderTypeRegular    OrderType = "regular"
	OrderTypeQuickOrder OrderType = "quick_order"
)

var validOrderTypes = []OrderType{
	OrderTypeRegular,
	OrderTypeQuickOrder,
}

// String implements fmt.Stringer.
func (t OrderType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OrderType.
func (t OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into a OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
