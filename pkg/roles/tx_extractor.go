package roles

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// TxExtractor extracts the final transaction from a finalized Proposal.
//
// This is the final role in the workflow. After extraction, you have a
// complete, signed transaction ready for broadcast.
type TxExtractor struct {
	proposal *Proposal
}

// NewTxExtractor creates a new Transaction Extractor.
func NewTxExtractor(p *Proposal) *TxExtractor {
	return &TxExtractor{proposal: p}
}

// Extract returns the raw transaction bytes and the transaction id.
func (e *TxExtractor) Extract() ([]byte, chainhash.Hash, error) {
	if err := e.validate(); err != nil {
		return nil, chainhash.Hash{}, err
	}
	t := e.proposal.Tx
	return t.Serialize(), t.TxID(), nil
}

// validate checks that the Proposal is ready for extraction.
func (e *TxExtractor) validate() error {
	t := e.proposal.Tx
	if len(t.Inputs) == 0 {
		return &FinalizationError{
			Code:    ErrInvalidProposal,
			Message: "no inputs",
			Cause:   errors.Wrap(txerr.ErrInvalidFormat, "inputs"),
		}
	}
	if len(t.Outputs) == 0 {
		return &FinalizationError{
			Code:    ErrInvalidProposal,
			Message: "no outputs",
			Cause:   errors.Wrap(txerr.ErrInvalidFormat, "outputs"),
		}
	}
	if !t.IsSigned() {
		return &FinalizationError{
			Code:    ErrIncompleteProposal,
			Message: "inputs not finalized",
		}
	}
	if fee := e.proposal.Fee(); fee < 0 {
		return &FinalizationError{
			Code:    ErrInsufficientFunds,
			Message: "outputs exceed inputs",
			Cause: errors.Wrapf(txerr.ErrInsufficientFunds,
				"inputs %d, outputs %d, fee %d", t.InputTotal(), t.OutputTotal(), fee),
		}
	}
	return nil
}
