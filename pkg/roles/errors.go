package roles

import "fmt"

// ProposalError is returned when the Constructor rejects an input or output.
type ProposalError struct {
	Code    string // Error code (e.g., ErrInvalidInput, ErrInsufficientFunds)
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *ProposalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("proposal error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("proposal error [%s]: %s", e.Code, e.Message)
}

func (e *ProposalError) Unwrap() error { return e.Cause }

// SighashError is returned when the signature hash of an input cannot be
// computed.
type SighashError struct {
	InputIndex int    // Index of the input that caused the error
	Message    string // Human-readable error message
	Cause      error  // Underlying error (if any)
}

func (e *SighashError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sighash error at input %d: %s: %v", e.InputIndex, e.Message, e.Cause)
	}
	return fmt.Sprintf("sighash error at input %d: %s", e.InputIndex, e.Message)
}

func (e *SighashError) Unwrap() error { return e.Cause }

// SignatureError is returned when an input cannot be signed.
type SignatureError struct {
	InputIndex int    // Index of the input that caused the error
	Message    string // Human-readable error message
	Cause      error  // Underlying error (if any)
}

func (e *SignatureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signature error at input %d: %s: %v", e.InputIndex, e.Message, e.Cause)
	}
	return fmt.Sprintf("signature error at input %d: %s", e.InputIndex, e.Message)
}

func (e *SignatureError) Unwrap() error { return e.Cause }

// FinalizationError is returned by the Spend Finalizer and the Transaction
// Extractor when the proposal is incomplete or inconsistent.
type FinalizationError struct {
	Code    string // Error code (e.g., ErrIncompleteProposal)
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *FinalizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("finalization error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("finalization error [%s]: %s", e.Code, e.Message)
}

func (e *FinalizationError) Unwrap() error { return e.Cause }

// Error codes used by the roles.
const (
	ErrInvalidInput       = "INVALID_INPUT"       // Input data is invalid or malformed
	ErrInvalidOutput      = "INVALID_OUTPUT"      // Output data is invalid or malformed
	ErrInsufficientFunds  = "INSUFFICIENT_FUNDS"  // Fee or outputs exceed the inputs
	ErrNotModifiable      = "NOT_MODIFIABLE"      // Proposal already committed to by a signature
	ErrIncompleteProposal = "INCOMPLETE_PROPOSAL" // Proposal is missing signatures or scriptSigs
	ErrInvalidProposal    = "INVALID_PROPOSAL"    // Proposal structure is inconsistent
)
