package roles

import (
	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/crypto"
	"github.com/suffix-labs/bchotg/pkg/script"
	"github.com/suffix-labs/bchotg/pkg/txerr"
)

// Signer adds signatures to the inputs of a Proposal.
//
// The transaction-wide digests are computed once, when the Signer is
// created, and reused for every input. Signing commits to all inputs and
// outputs, so the Signer clears the Proposal's modification flags.
type Signer struct {
	proposal *Proposal
	digests  *crypto.SighashDigests
}

// NewSigner creates a new Signer.
func NewSigner(p *Proposal) *Signer {
	p.Modifiable = 0
	return &Signer{
		proposal: p,
		digests:  crypto.ComputeSighashDigests(p.Tx),
	}
}

// SignInput signs input inputIndex with key.
//
// The scriptCode is the P2PKH locking script of the key's own public key
// hash, so the key must be the one the spent output pays to. The
// signature is stored as DER || 0x41 until the Spend Finalizer places it
// into the scriptSig.
//
// Returns an error if:
//   - Input index is out of bounds
//   - The key belongs to another network
//   - The input already carries a signature or scriptSig
func (s *Signer) SignInput(inputIndex int, key *crypto.PrivateKey) error {
	p := s.proposal
	if inputIndex < 0 || inputIndex >= len(p.Tx.Inputs) {
		return &SighashError{
			InputIndex: inputIndex,
			Message:    "input index out of bounds",
			Cause:      errors.Wrapf(txerr.ErrInvalidFormat, "have %d inputs", len(p.Tx.Inputs)),
		}
	}
	if key.Network().PrivateKeyID != p.Net.PrivateKeyID {
		return &SignatureError{
			InputIndex: inputIndex,
			Message:    "key for another network",
			Cause:      errors.Wrapf(txerr.ErrUnknownVersion, "key is for %s, proposal is for %s", key.Network(), p.Net),
		}
	}
	if p.Signatures[inputIndex] != nil || len(p.Tx.Inputs[inputIndex].ScriptSig) > 0 {
		return &SignatureError{
			InputIndex: inputIndex,
			Message:    "input already signed",
			Cause:      txerr.ErrAlreadySigned,
		}
	}

	pub := key.PublicKey()
	scriptCode := script.P2PKHLockingScript(pub.Hash())
	amount := p.Tx.Inputs[inputIndex].UTXO.Amount

	sighash, err := s.digests.SignatureHash(p.Tx, inputIndex, scriptCode, amount, crypto.SigHashAllForkID)
	if err != nil {
		return &SighashError{InputIndex: inputIndex, Message: "failed to compute sighash", Cause: err}
	}

	der := key.Sign(sighash)
	p.Signatures[inputIndex] = &PartialSignature{
		PubKey:    pub.Bytes(),
		Signature: append(der, byte(crypto.SigHashAllForkID)),
	}
	return nil
}

// SignAll signs input i with keys[i].
func (s *Signer) SignAll(keys []*crypto.PrivateKey) error {
	if len(keys) != len(s.proposal.Tx.Inputs) {
		return &SignatureError{
			InputIndex: len(keys),
			Message:    "one key per input required",
			Cause:      errors.Wrapf(txerr.ErrInvalidFormat, "%d keys for %d inputs", len(keys), len(s.proposal.Tx.Inputs)),
		}
	}
	for i, key := range keys {
		if err := s.SignInput(i, key); err != nil {
			return err
		}
	}
	return nil
}

// Finish returns the Proposal with signatures.
func (s *Signer) Finish() *Proposal {
	return s.proposal
}
