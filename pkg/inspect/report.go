package inspect

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/suffix-labs/bchotg/pkg/units"
)

// WriteText renders the summary in the plain-text layout printed by the
// decode command.
func (s *Summary) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "txid:      %s\n", s.TxID)
	fmt.Fprintf(bw, "size:      %d bytes\n", s.Size)
	fmt.Fprintf(bw, "version:   %d\n", s.Version)
	fmt.Fprintf(bw, "lock time: %d\n", s.LockTime)

	fmt.Fprintf(bw, "\ninputs: %d\n", len(s.Inputs))
	for _, in := range s.Inputs {
		fmt.Fprintf(bw, "  #%d %s:%d sequence 0x%08x\n", in.Index, in.OutPoint.Hash, in.OutPoint.Index, in.Sequence)
		if in.Amount != nil {
			fmt.Fprintf(bw, "     amount:    %s BCH\n", units.FormatBCH(*in.Amount))
		}
		if in.Signer != nil {
			fmt.Fprintf(bw, "     pubkey:    %s\n", hex.EncodeToString(in.PubKey))
			fmt.Fprintf(bw, "     signer:    %s %s\n", in.Signer.CashAddr, in.Signer.Legacy)
		}
		fmt.Fprintf(bw, "     scriptSig: %s\n", in.ScriptSig)
		if in.Detail != "" {
			fmt.Fprintf(bw, "     signature: %s (%s)\n", in.Verification, in.Detail)
		} else {
			fmt.Fprintf(bw, "     signature: %s\n", in.Verification)
		}
	}

	fmt.Fprintf(bw, "\noutputs: %d\n", len(s.Outputs))
	for _, out := range s.Outputs {
		fmt.Fprintf(bw, "  #%d %s BCH\n", out.Index, units.FormatBCH(out.Amount))
		if out.Standard() {
			fmt.Fprintf(bw, "     to: %s %s\n", out.Addresses.CashAddr, out.Addresses.Legacy)
		} else {
			fmt.Fprintf(bw, "     to: non-standard\n")
		}
		fmt.Fprintf(bw, "     scriptPubKey: %s\n", out.ScriptPubKey)
	}

	if s.OutputTotal != nil {
		fmt.Fprintf(bw, "\noutput total: %s BCH\n", units.FormatBCH(*s.OutputTotal))
	} else {
		fmt.Fprintf(bw, "\noutput total: out of range\n")
	}
	if s.InputTotal != nil {
		fmt.Fprintf(bw, "input total:  %s BCH\n", units.FormatBCH(*s.InputTotal))
	}
	if s.Fee != nil {
		fmt.Fprintf(bw, "fee:          %s BCH\n", units.FormatSignedBCH(*s.Fee))
	}
	for _, warning := range s.Warnings {
		fmt.Fprintf(bw, "WARNING: %s\n", warning)
	}

	return bw.Flush()
}
