package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrCollectionNotFound    = errors.New("collection not found")
	ErrFBONotFound           = errors.New("fbo not found")
	ErrBillNotFound          = errors.New("bill not found")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrCollectionAlreadyPaid = errors.New("collection is already paid")
	ErrCollectionNotPending  = errors.New("collection is not pending review")
	ErrInvalidPaymentAmount  = errors.New("invalid payment amount")
	ErrVersionConflict       = errors.New("concurrent update conflict")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeCollectionNotFound    = "COLLECTION_NOT_FOUND"
	ErrCodeFBONotFound           = "FBO_NOT_FOUND"
	ErrCodeBillNotFound          = "BILL_NOT_FOUND"
	ErrCodePaymentNotFound       = "PAYMENT_NOT_FOUND"
	ErrCodeCollectionAlreadyPaid = "COLLECTION_ALREADY_PAID"
	ErrCodeCollectionNotPending  = "COLLECTION_NOT_PENDING"
	ErrCodeInvalidPaymentAmount  = "INVALID_PAYMENT_AMOUNT"
	ErrCodeVersionConflict       = "VERSION_CONFLICT"
	ErrCodeValidationError       = "VALIDATION_ERROR"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapCollectionNotFound(collectionID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCollectionNotFound,
		fmt.Sprintf("Collection with ID %s not found", collectionID),
		ErrCollectionNotFound,
	)
}

func WrapFBONotFound(fboID string) *BusinessError {
	return NewBusinessError(
		ErrCodeFBONotFound,
		fmt.Sprintf("FBO with ID %s not found", fboID),
		ErrFBONotFound,
	)
}

func WrapBillNotFound(billID string) *BusinessError {
	return NewBusinessError(
		ErrCodeBillNotFound,
		fmt.Sprintf("Bill with ID %s not found", billID),
		ErrBillNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapCollectionAlreadyPaid(collectionID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCollectionAlreadyPaid,
		fmt.Sprintf("Collection %s is already paid", collectionID),
		ErrCollectionAlreadyPaid,
	)
}

func WrapCollectionNotPending(collectionID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCollectionNotPending,
		fmt.Sprintf("Collection %s is not pending review", collectionID),
		ErrCollectionNotPending,
	)
}

func WrapVersionConflict(collectionID string) *BusinessError {
	return NewBusinessError(
		ErrCodeVersionConflict,
		fmt.Sprintf("Collection %s was modified concurrently, retries exhausted", collectionID),
		ErrVersionConflict,
	)
}

func WrapValidationError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeValidationError,
		"request validation failed",
		err,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}
