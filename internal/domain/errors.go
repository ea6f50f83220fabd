package domain

import (
	"errors"
	"fmt"
)

// ErrorKind separates bad input state from failed derivations and missing resources
type ErrorKind string

const (
	KindPrecondition ErrorKind = "precondition"
	KindComputation  ErrorKind = "computation"
	KindNotFound     ErrorKind = "not_found"
)

// ErrorCode is the machine-readable reason of a business-rule failure
type ErrorCode string

const (
	CodeNoDefaultSupplier       ErrorCode = "no_default_supplier"
	CodeInvalidDemand           ErrorCode = "invalid_demand"
	CodeInvalidHoldingCost      ErrorCode = "invalid_holding_cost"
	CodeMissingSupplierTerms    ErrorCode = "missing_supplier_terms"
	CodeInvalidReviewPeriod     ErrorCode = "invalid_review_period"
	CodeInvalidOrderCost        ErrorCode = "invalid_order_cost"
	CodeUnsupportedModel        ErrorCode = "unsupported_model"
	CodeInvalidLotSize          ErrorCode = "invalid_lot_size"
	CodeInvalidRiskPeriod       ErrorCode = "invalid_risk_period"
	CodeIncompleteInventoryData ErrorCode = "incomplete_inventory_data"
	CodeInvalidCostParameters   ErrorCode = "invalid_cost_parameters"
	CodeNoActivePolicy          ErrorCode = "no_active_policy"
	CodeArticleNotFound         ErrorCode = "article_not_found"
	CodeSupplierTermsNotFound   ErrorCode = "supplier_terms_not_found"
	CodeInvalidAdjustment       ErrorCode = "invalid_adjustment"
	CodeInsufficientStock       ErrorCode = "insufficient_stock"
	CodeAlreadyDiscontinued     ErrorCode = "already_discontinued"
	CodeStockRemaining          ErrorCode = "stock_remaining"
	CodeOpenPurchaseOrders      ErrorCode = "open_purchase_orders"
	CodeSupplierDiscontinued    ErrorCode = "supplier_discontinued"
)

// Error is the single flat error type returned by engine and service operations.
// It carries the root cause directly; it never wraps another error.
type Error struct {
	Kind      ErrorKind `json:"kind"`
	Code      ErrorCode `json:"code"`
	ArticleID int64     `json:"article_id,omitempty"`
	Field     string    `json:"field,omitempty"`
	Detail    string    `json:"detail"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (article %d, field %s): %s", e.Kind, e.Code, e.ArticleID, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s: %s (article %d): %s", e.Kind, e.Code, e.ArticleID, e.Detail)
}

// Precondition reports missing or invalid article/supplier data
func Precondition(code ErrorCode, articleID int64, field, detail string) *Error {
	return &Error{Kind: KindPrecondition, Code: code, ArticleID: articleID, Field: field, Detail: detail}
}

// Computation reports a derived value that failed its validity check
func Computation(code ErrorCode, articleID int64, field, detail string) *Error {
	return &Error{Kind: KindComputation, Code: code, ArticleID: articleID, Field: field, Detail: detail}
}

// NotFound reports a referenced article or supplier-terms pair that does not exist
func NotFound(code ErrorCode, articleID int64, detail string) *Error {
	return &Error{Kind: KindNotFound, Code: code, ArticleID: articleID, Detail: detail}
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the reason code of err, or "" when err is not a *Error.
func CodeOf(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

func IsPrecondition(err error) bool { return kindOf(err) == KindPrecondition }
func IsComputation(err error) bool  { return kindOf(err) == KindComputation }
func IsNotFound(err error) bool     { return kindOf(err) == KindNotFound }

func kindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}
