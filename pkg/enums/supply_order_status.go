package enums

import "fmt"

// SupplyOrderStatus records where a catalog item stands with external
// suppliers, independent of on-hand quantity.
type SupplyOrderStatus string

const (
	SupplyOrderStatusAvailable        SupplyOrderStatus = "available"
	SupplyOrderStatusOrderedSupplierA SupplyOrderStatus = "ordered_supplier_a"
	SupplyOrderStatusOrderedSupplierB SupplyOrderStatus = "ordered_supplier_b"
	SupplyOrderStatusNotAvailable     SupplyOrderStatus = "not_available"
)

var validSupplyOrderStatuses = []SupplyOrderStatus{
	SupplyOrderStatusAvailable,
	SupplyOrderStatusOrderedSupplierA,
	SupplyOrderStatusOrderedSupplierB,
	SupplyOrderStatusNotAvailable,
}

// String implements fmt.Stringer.
func (s SupplyOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SupplyOrderStatus.
func (s SupplyOrderStatus) IsValid() bool {
	for _, candidate := range validSupplyOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSupplyOrderStatus converts raw input into a SupplyOrderStatus.
func ParseSupplyOrderStatus(value string) (SupplyOrderStatus, error) {
	for _, candidate := range validSupplyOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supply order status %q", value)
}
