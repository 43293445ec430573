package roles

import (
	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/script"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// SpendFinalizer finalizes inputs by constructing their scriptSigs.
//
// The Spend Finalizer role:
//   - Takes the partial signatures from the Signer role
//   - Builds the P2PKH scriptSig <signature||hashtype> <pubkey> for each input
//   - Clears the partial signatures afterwards
type SpendFinalizer struct {
	proposal *Proposal
}

// NewSpendFinalizer creates a new Spend Finalizer.
func NewSpendFinalizer(p *Proposal) *SpendFinalizer {
	return &SpendFinalizer{proposal: p}
}

// Finalize finalizes all inputs. Either every input gets its scriptSig or
// none does.
func (f *SpendFinalizer) Finalize() error {
	p := f.proposal
	if len(p.Signatures) != len(p.Tx.Inputs) {
		return &FinalizationError{
			Code:    ErrInvalidProposal,
			Message: "signature slots do not match inputs",
			Cause:   errors.Wrapf(txerr.ErrInvalidFormat, "%d slots for %d inputs", len(p.Signatures), len(p.Tx.Inputs)),
		}
	}

	scripts := make([][]byte, len(p.Tx.Inputs))
	for i, in := range p.Tx.Inputs {
		if len(in.ScriptSig) > 0 {
			return &FinalizationError{
				Code:    ErrInvalidProposal,
				Message: "input already finalized",
				Cause:   errors.Wrapf(txerr.ErrAlreadySigned, "input %d", i),
			}
		}
		sig := p.Signatures[i]
		if sig == nil {
			return &FinalizationError{
				Code:    ErrIncompleteProposal,
				Message: "missing signature",
				Cause:   errors.Newf("input %d is not signed", i),
			}
		}

		der, hashType := sig.Signature[:len(sig.Signature)-1], sig.Signature[len(sig.Signature)-1]
		scripts[i] = script.P2PKHSpendingScript(der, hashType, sig.PubKey)
	}

	for i := range p.Tx.Inputs {
		p.Tx.Inputs[i].ScriptSig = scripts[i]
		p.Signatures[i] = nil
	}
	return nil
}

// Finish returns the finalized Proposal.
func (f *SpendFinalizer) Finish() *Proposal {
	return f.proposal
}
