package roles

import (
	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/tx"
)

// Modification flags. A signature commits to every input and output, so
// the Signer clears both flags.
const (
	FlagInputsModifiable  uint8 = 0x01
	FlagOutputsModifiable uint8 = 0x02
)

// PartialSignature is a signature produced by the Signer that has not yet
// been placed into a scriptSig.
type PartialSignature struct {
	PubKey    []byte // Serialized public key the scriptCode was derived from
	Signature []byte // DER signature || hash type byte
}

// Proposal is a transaction under construction together with the signing
// data that is not part of its encoding.
type Proposal struct {
	Tx  *tx.Transaction
	Net *netparams.Params

	// Signatures holds one entry per input, nil until the input is signed.
	Signatures []*PartialSignature

	Modifiable uint8
}

// Fee returns the implicit fee: input total minus output total. It is
// negative when the outputs exceed the inputs.
func (p *Proposal) Fee() int64 {
	return int64(p.Tx.InputTotal()) - int64(p.Tx.OutputTotal())
}
