package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/suffix-labs/bchotg/pkg/api"
	"github.com/suffix-labs/bchotg/pkg/txerr"
	"github.com/suffix-labs/bchotg/pkg/units"
)

// Amount is a satoshi amount written in BCH in plan files.
type Amount uint64

// Plan describes a spend in a YAML file:
//
//	keys: [a.wif, b.wif]
//	inputs:
//	  - txid: 4a5e1e4b...
//	    vout: 0
//	    amount: 0.001
//	    key: 2
//	destination: bitcoincash:qp...
//	fee: 0.00001
//
// Key paths are relative to the plan file. Input keys are 1-based and may
// be omitted when the plan has a single key.
type Plan struct {
	Keys        []string    `mapstructure:"keys"`
	Inputs      []PlanInput `mapstructure:"inputs"`
	Destination string      `mapstructure:"destination"`
	Fee         Amount      `mapstructure:"fee"`
}

// PlanInput is one UTXO of a Plan.
type PlanInput struct {
	TxID   string `mapstructure:"txid"`
	Vout   uint32 `mapstructure:"vout"`
	Amount Amount `mapstructure:"amount"`
	Key    int    `mapstructure:"key"`
}

// loadPlan reads and decodes a plan file, resolving key paths against the
// file's directory.
func loadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "plan")
	}
	plan, err := decodePlan(data)
	if err != nil {
		return nil, errors.Wrapf(err, "plan %s", path)
	}
	for i, key := range plan.Keys {
		if !filepath.IsAbs(key) {
			plan.Keys[i] = filepath.Join(filepath.Dir(path), key)
		}
	}
	return plan, nil
}

func decodePlan(data []byte) (*Plan, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(txerr.ErrInvalidFormat, "yaml: %v", err)
	}

	var plan Plan
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  amountHook,
		ErrorUnused: true,
		Result:      &plan,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrapf(txerr.ErrInvalidFormat, "%v", err)
	}
	return &plan, nil
}

var amountType = reflect.TypeOf(Amount(0))

// amountHook converts BCH decimals into satoshi Amounts. YAML yields
// strings for quoted amounts, floats for unquoted decimals and ints for
// whole coins; all three are parsed as decimal text so no float rounding
// reaches the result.
func amountHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != amountType {
		return data, nil
	}

	var text string
	switch v := data.(type) {
	case string:
		text = v
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		text = strconv.Itoa(v)
	default:
		return nil, errors.Newf("amount of type %s", from)
	}

	sat, err := units.ParseBCH(strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	return Amount(sat), nil
}

// request turns the plan into an api.SpendRequest given the WIF text of
// each key file.
func (p *Plan) request(wifs []string) (*api.SpendRequest, error) {
	req := &api.SpendRequest{
		Keys:        wifs,
		Destination: p.Destination,
		Fee:         uint64(p.Fee),
	}
	for i, in := range p.Inputs {
		key, err := keyIndex(in.Key, len(wifs))
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i+1)
		}
		req.Inputs = append(req.Inputs, api.Input{
			TxID:   in.TxID,
			Vout:   in.Vout,
			Amount: uint64(in.Amount),
			Key:    key,
		})
	}
	return req, nil
}

// keyIndex converts a 1-based key number to an index. Zero means "the only
// key".
func keyIndex(n, keys int) (int, error) {
	if n == 0 {
		if keys != 1 {
			return 0, errors.Wrapf(txerr.ErrInvalidFormat, "key number required with %d keys", keys)
		}
		return 0, nil
	}
	if n < 1 || n > keys {
		return 0, errors.Wrapf(txerr.ErrInvalidFormat, "key %d of %d", n, keys)
	}
	return n - 1, nil
}
