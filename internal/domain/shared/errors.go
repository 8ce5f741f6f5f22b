package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared across the domain. The HTTP layer maps these to status codes.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeAllocationConflict     = "ALLOCATION_CONFLICT"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeQuantityMismatch       = "QUANTITY_MISMATCH"
)

// Common domain errors
var (
	ErrNotFound = NewDomainError(CodeNotFound, "Resource not found")

	// ErrAllocationConflict signals that another transaction created an ACTIVE
	// allocation for the same key first. Expected and retryable: the caller
	// re-reads the current balance and decides whether to try again.
	ErrAllocationConflict = NewDomainError(CodeAllocationConflict,
		"An active allocation already exists for this material/order/owner key")

	// ErrConcurrentModification signals an optimistic-lock version mismatch.
	// The caller must re-read and retry.
	ErrConcurrentModification = NewDomainError(CodeConcurrentModification,
		"Record was modified by another transaction")
)
