package enums

import "fmt"

// LineItemStatus tracks fulfillment of a requested line item.
type LineItemStatus string

const (
	LineItemStatusPending   LineItemStatus = "pending"
	LineItemStatusReady     LineItemStatus = "ready"
	LineItemStatusRejected  LineItemStatus = "rejected"
	LineItemStatusDelivered LineItemStatus = "delivered"
	// LineItemStatusExternal marks items bought directly from an external
	// marketplace instead of club stock.
	LineItemStatusExternal LineItemStatus = "external"
)

var validLineItemStatuses = []LineItemStatus{
	LineItemStatusPending,
	LineItemStatusReady,
	LineItemStatusRejected,
	LineItemStatusDelivered,
	LineItemStatusExternal,
}

// String implements fmt.Stringer.
func (s LineItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LineItemStatus.
func (s LineItemStatus) IsValid() bool {
	for _, candidate := range validLineItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLineItemStatus converts raw input into a LineItemStatus.
func ParseLineItemStatus(value string) (LineItemStatus, error) {
	for _, candidate := range validLineItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line item status %q", value)
}
