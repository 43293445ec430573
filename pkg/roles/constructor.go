package roles

import (
	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/address"
	"github.com/suffix-labs/bchotg/pkg/tx"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// Constructor adds inputs and outputs to a Proposal.
//
// Input amounts are taken on trust: the engine never checks that a UTXO
// exists, is unspent or has the stated value. A wrong amount yields a
// signature the network rejects.
type Constructor struct {
	proposal *Proposal
}

// NewConstructor creates a new Constructor from an existing Proposal.
//
// The Proposal should have been created by the Creator role.
func NewConstructor(p *Proposal) *Constructor {
	return &Constructor{proposal: p}
}

// AddInput adds an unsigned input spending utxo. Inputs are signed in the
// order they are added.
func (c *Constructor) AddInput(utxo tx.UTXO) error {
	p := c.proposal
	if p.Modifiable&FlagInputsModifiable == 0 {
		return &ProposalError{Code: ErrNotModifiable, Message: "inputs not modifiable"}
	}

	for i, in := range p.Tx.Inputs {
		if in.UTXO.OutPoint == utxo.OutPoint {
			return &ProposalError{
				Code:    ErrInvalidInput,
				Message: "duplicate outpoint",
				Cause:   errors.Wrapf(txerr.ErrInvalidFormat, "input %d already spends %s:%d", i, utxo.Hash, utxo.Index),
			}
		}
	}

	if utxo.Amount > tx.MaxSatoshi || p.Tx.InputTotal()+utxo.Amount > tx.MaxSatoshi {
		return &ProposalError{
			Code:    ErrInvalidInput,
			Message: "amount out of range",
			Cause:   errors.Wrapf(txerr.ErrInvalidFormat, "amount %d", utxo.Amount),
		}
	}

	p.Tx.Inputs = append(p.Tx.Inputs, tx.NewTxIn(utxo))
	p.Signatures = append(p.Signatures, nil)
	return nil
}

// AddOutput adds an output with an arbitrary locking script.
func (c *Constructor) AddOutput(amount uint64, scriptPubKey []byte) error {
	p := c.proposal
	if p.Modifiable&FlagOutputsModifiable == 0 {
		return &ProposalError{Code: ErrNotModifiable, Message: "outputs not modifiable"}
	}
	if amount > tx.MaxSatoshi || p.Tx.OutputTotal()+amount > tx.MaxSatoshi {
		return &ProposalError{
			Code:    ErrInvalidOutput,
			Message: "amount out of range",
			Cause:   errors.Wrapf(txerr.ErrInvalidFormat, "amount %d", amount),
		}
	}

	p.Tx.Outputs = append(p.Tx.Outputs, tx.TxOut{Amount: amount, ScriptPubKey: scriptPubKey})
	return nil
}

// AddP2PKHOutput adds an output paying amount to dest.
func (c *Constructor) AddP2PKHOutput(dest address.Address, amount uint64) error {
	if dest.Net != c.proposal.Net {
		return &ProposalError{
			Code:    ErrInvalidOutput,
			Message: "destination on another network",
			Cause:   errors.Wrapf(txerr.ErrUnknownVersion, "address %s is for %s, not %s", dest, dest.Net, c.proposal.Net),
		}
	}
	return c.AddOutput(amount, dest.ScriptPubKey())
}

// AddSweepOutput pays everything the inputs carry beyond the existing
// outputs and fee to dest, and returns that amount. There is no change
// output: whatever is not paid out is fee.
func (c *Constructor) AddSweepOutput(dest address.Address, fee uint64) (uint64, error) {
	p := c.proposal
	if len(p.Tx.Inputs) == 0 {
		return 0, &ProposalError{
			Code:    ErrInvalidInput,
			Message: "no inputs to spend",
			Cause:   errors.Wrap(txerr.ErrInvalidFormat, "inputs"),
		}
	}

	available := p.Tx.InputTotal() - p.Tx.OutputTotal()
	if p.Tx.OutputTotal() > p.Tx.InputTotal() || fee > available {
		return 0, &ProposalError{
			Code:    ErrInsufficientFunds,
			Message: "fee exceeds available input value",
			Cause: errors.Wrapf(txerr.ErrInsufficientFunds,
				"fee %d, inputs %d, outputs %d", fee, p.Tx.InputTotal(), p.Tx.OutputTotal()),
		}
	}

	amount := available - fee
	if err := c.AddP2PKHOutput(dest, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// Finish returns the constructed Proposal.
//
// After all inputs and outputs have been added, call this to get the
// Proposal ready for the Signer.
func (c *Constructor) Finish() *Proposal {
	return c.proposal
}
