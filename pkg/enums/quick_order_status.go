package enums

import "fmt"

// QuickOrderStatus tracks an account-free order request.
type QuickOrderStatus string

const (
	QuickOrderStatusPending    QuickOrderStatus = "pending"
	QuickOrderStatusConfirmed  QuickOrderStatus = "confirmed"
	QuickOrderStatusProcessing QuickOrderStatus = "processing"
	QuickOrderStatusCancelled  QuickOrderStatus = "cancelled"
)

var validQuickOrderStatuses = []QuickOrderStatus{
	QuickOrderStatusPending,
	QuickOrderStatusConfirmed,
	QuickOrderStatusProcessing,
	QuickOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s QuickOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuickOrderStatus.
func (s QuickOrderStatus) IsValid() bool {
	for _, candidate := range validQuickOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseQuickOrderStatus converts raw input into a QuickOrderStatus.
func ParseQuickOrderStatus(value string) (QuickOrderStatus, error) {
	for _, candidate := range validQuickOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quick order status %q", value)
}
