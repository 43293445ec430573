// Package roles implements the transaction assembly workflow as a sequence
// of roles, each with one responsibility:
//   - Creator: Initializes an empty proposal for a network
//   - Constructor: Adds the UTXOs to spend and the destination output
//   - Signer: Computes signature hashes and signs inputs
//   - Spend Finalizer: Turns signatures into scriptSigs
//   - Transaction Extractor: Validates and produces the final bytes and txid
//
// Each role takes the Proposal produced by the previous one and returns it
// from Finish. Roles never perform I/O.
package roles

import (
	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/tx"
)

// Creator initializes a Proposal with no inputs or outputs.
//
// The transaction version and lock time are fixed; the Creator only records
// the network the inputs and outputs must belong to.
type Creator struct {
	net *netparams.Params
}

// NewCreator creates a Creator for net. A nil net means MainNet.
func NewCreator(net *netparams.Params) *Creator {
	if net == nil {
		net = netparams.MainNet
	}
	return &Creator{net: net}
}

// Create creates the base Proposal with every modification flag set.
func (c *Creator) Create() *Proposal {
	return &Proposal{
		Tx:         tx.New(),
		Net:        c.net,
		Signatures: []*PartialSignature{},
		Modifiable: FlagInputsModifiable | FlagOutputsModifiable,
	}
}
