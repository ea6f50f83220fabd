package domain

import "strings"

// PurchaseOrderStatus is the lifecycle state of a purchase order
type PurchaseOrderStatus int

const (
	POPending PurchaseOrderStatus = iota
	POSent
	POReceived
	POCancelled
)

var poStatusLabels = map[PurchaseOrderStatus]string{
	POPending:   "Pending",
	POSent:      "Sent",
	POReceived:  "Received",
	POCancelled: "Cancelled",
}

var poStatusCodes = map[string]PurchaseOrderStatus{
	"pending":   POPending,
	"sent":      POSent,
	"received":  POReceived,
	"cancelled": POCancelled,
}

// OpenPOStatuses are the states that block a new reorder suggestion
var OpenPOStatuses = []PurchaseOrderStatus{POPending, POSent}

// Open reports whether an order in this state is still in flight
func (s PurchaseOrderStatus) Open() bool {
	return s == POPending || s == POSent
}

// String returns a human-readable label for a PO status.
func (s PurchaseOrderStatus) String() string {
	if label, ok := poStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}

// ParsePOStatus returns the status for a given label (case-insensitive).
func ParsePOStatus(label string) (PurchaseOrderStatus, bool) {
	code, ok := poStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return code, ok
}
