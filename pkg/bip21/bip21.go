// Package bip21 implements Bitcoin Cash payment request URIs.
//
// A payment request names one recipient and optionally an amount and
// human-readable annotations:
//
//	bitcoincash:<address>?amount=<BCH>&label=<label>&message=<message>
//
// The scheme is the network's cashaddr prefix, so a prefixed cashaddr
// address is itself a valid URI. Parameters prefixed with "req-" are
// required to be understood; unknown ones make the request invalid.
//
// See: https://github.com/bitcoin/bips/blob/master/bip-0021.mediawiki
package bip21

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/suffix-labs/bchotg/pkg/address"
	"github.com/suffix-labs/bchotg/pkg/netparams"
	"github.com/suffix-labs/bchotg/pkg/txerr"
	"github.com/suffix-labs/bchotg/pkg/units"
)

// PaymentRequest is a parsed payment URI.
type PaymentRequest struct {
	Address address.Address
	Amount  *uint64 // Satoshis; nil when the payer chooses
	Label   *string
	Message *string
}

// Parse parses a payment URI or a plain address for net. A nil net means
// MainNet.
func Parse(uri string, net *netparams.Params) (*PaymentRequest, error) {
	if net == nil {
		net = netparams.MainNet
	}
	uri = strings.TrimSpace(uri)

	body, query, _ := strings.Cut(uri, "?")
	if scheme, rest, ok := strings.Cut(body, ":"); ok {
		if !strings.EqualFold(scheme, net.CashAddrPrefix) {
			// A cashaddr scheme is also its checksummed prefix.
			if _, err := address.Decode(body, net); errors.Is(err, txerr.ErrInvalidAddressChecksum) {
				return nil, errors.Wrap(err, "payment uri")
			}
			return nil, errors.Wrapf(txerr.ErrUnknownVersion,
				"payment uri: scheme %q, want %q", scheme, net.CashAddrPrefix)
		}
		body = rest
	}
	if body == "" {
		return nil, errors.Wrap(txerr.ErrInvalidFormat, "payment uri: missing address")
	}

	addr, err := address.Decode(body, net)
	if err != nil {
		return nil, errors.Wrap(err, "payment uri")
	}
	req := &PaymentRequest{Address: addr}

	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, errors.Wrapf(txerr.ErrInvalidFormat, "payment uri: query: %v", err)
	}

	for key, values := range params {
		if len(values) != 1 {
			return nil, errors.Wrapf(txerr.ErrInvalidFormat, "payment uri: parameter %q repeated", key)
		}
		value := values[0]

		switch key {
		case "amount":
			amount, err := units.ParseBCH(value)
			if err != nil {
				return nil, errors.Wrap(err, "payment uri")
			}
			req.Amount = &amount
		case "label":
			req.Label = &value
		case "message":
			req.Message = &value
		default:
			if strings.HasPrefix(key, "req-") {
				return nil, errors.Wrapf(txerr.ErrInvalidFormat,
					"payment uri: unsupported required parameter %q", key)
			}
		}
	}

	return req, nil
}

// Encode creates a payment URI. It is the inverse of Parse.
func (req *PaymentRequest) Encode() string {
	var uri string
	if req.Address.Encoding == address.CashAddr {
		uri = req.Address.String()
	} else {
		uri = req.Address.Net.CashAddrPrefix + ":" + req.Address.String()
	}

	params := url.Values{}
	if req.Amount != nil {
		params.Add("amount", units.FormatBCH(*req.Amount))
	}
	if req.Label != nil {
		params.Add("label", *req.Label)
	}
	if req.Message != nil {
		params.Add("message", *req.Message)
	}

	if len(params) > 0 {
		// url.Values encodes spaces as '+', which BIP 21 readers do not all accept.
		uri += "?" + strings.ReplaceAll(params.Encode(), "+", "%20")
	}
	return uri
}
