// backend-go/internal/domain/status.go
package domain

import "strings"

// ReorderMethod selects the safety-stock/reorder-point policy method.
type ReorderMethod string

const (
	MethodMinMax   ReorderMethod = "minmax"
	MethodSSDLT    ReorderMethod = "ss_dlt"
	MethodPeriodic ReorderMethod = "periodic"
)

// PlanPriority buckets a recommendation by urgency.
type PlanPriority string

const (
	PriorityLow    PlanPriority = "low"
	PriorityMedium PlanPriority = "medium"
	PriorityHigh   PlanPriority = "high"
)

// PlanStatus is the downstream lifecycle of a plan. The engine only ever
// writes StatusNew; the rest belong to review actions.
type PlanStatus string

const (
	PlanStatusNew       PlanStatus = "new"
	PlanStatusAccepted  PlanStatus = "accepted"
	PlanStatusDismissed PlanStatus = "dismissed"
	PlanStatusOrdered   PlanStatus = "ordered"
)

// TransactionType classifies inventory movements.
type TransactionType string

const (
	TxnReceipt     TransactionType = "receipt"
	TxnIssue       TransactionType = "issue"
	TxnReturn      TransactionType = "return"
	TxnAdjust      TransactionType = "adjust"
	TxnTransferIn  TransactionType = "transfer_in"
	TxnTransferOut TransactionType = "transfer_out"
)

// ExceptionType classifies operational alerts.
type ExceptionType string

const (
	ExceptionETASlip        ExceptionType = "eta_slip"
	ExceptionCostVariance   ExceptionType = "cost_variance"
	ExceptionFreeTimeLow    ExceptionType = "free_time_low"
	ExceptionStockoutRisk   ExceptionType = "stockout_risk"
	ExceptionOverstock      ExceptionType = "overstock"
	ExceptionNegativeOnHand ExceptionType = "negative_on_hand"
	ExceptionLatePO         ExceptionType = "late_po"
)

// Severity tiers an exception.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var reorderMethods = map[string]ReorderMethod{
	"minmax":   MethodMinMax,
	"ss_dlt":   MethodSSDLT,
	"ss-dlt":   MethodSSDLT,
	"periodic": MethodPeriodic,
}

// ParseReorderMethod returns the method for a given label (case-insensitive).
func ParseReorderMethod(label string) (ReorderMethod, bool) {
	method, ok := reorderMethods[strings.ToLower(strings.TrimSpace(label))]

	return method, ok
}

var exceptionTypes = map[string]ExceptionType{
	"eta_slip":         ExceptionETASlip,
	"cost_variance":    ExceptionCostVariance,
	"free_time_low":    ExceptionFreeTimeLow,
	"stockout_risk":    ExceptionStockoutRisk,
	"overstock":        ExceptionOverstock,
	"negative_on_hand": ExceptionNegativeOnHand,
	"late_po":          ExceptionLatePO,
}

// ParseExceptionType returns the exception type for a given label.
func ParseExceptionType(label string) (ExceptionType, bool) {
	t, ok := exceptionTypes[strings.ToLower(strings.TrimSpace(label))]

	return t, ok
}
