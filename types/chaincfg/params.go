// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2020 The JAX.Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownCoin describes an error where the coin name is not registered.
var ErrUnknownCoin = errors.New("unknown coin")

// Coin identifies a CryptoNote chain whose block templates can be parsed.
type Coin uint8

const (
	CoinMonero Coin = iota
	CoinWownero
	CoinZephyr
	CoinTownforge
	CoinArqma
	CoinSumokoin
	CoinGraft
	CoinKeva
)

// String returns the registered name of the coin.
func (c Coin) String() string {
	if p, ok := registry[c]; ok {
		return p.Name
	}
	return "unknown"
}

// Params defines the template layout rules of a coin.
//
// Zero values switch a rule off, so a plain CryptoNote chain only needs its
// name and ticker.
type Params struct {
	Coin   Coin
	Name   string
	Ticker string

	// MinerSignatureVersion is the first major version whose header has a
	// 64-byte miner signature and a uint16 vote after the nonce.
	MinerSignatureVersion uint64

	// PricingRecordSize is the size of a fixed record following the nonce.
	// Chains with a pricing record also use asset-typed outputs, allow more
	// than one output and append three varints after the extra field.
	PricingRecordSize int

	// DeferredUnlockTime moves the unlock time after the output list.
	DeferredUnlockTime bool

	// CarrotVersion is the first major version that uses carrot outputs
	// and reserves two merkle leaves for the FCMP++ tree.
	CarrotVersion uint64

	// CheckpointInterval marks heights whose miner transaction body is left
	// unparsed past the prefix.
	CheckpointInterval uint64
}

// HasMinerSignature reports whether headers of the given major version carry
// a miner signature and vote.
func (p *Params) HasMinerSignature(major uint64) bool {
	return p.MinerSignatureVersion > 0 && major >= p.MinerSignatureVersion
}

// HasPricingRecord reports whether the chain uses pricing records and
// asset-typed outputs.
func (p *Params) HasPricingRecord() bool {
	return p.PricingRecordSize > 0
}

// IsCarrot reports whether templates of the given major version use the
// FCMP++ carrot output layout.
func (p *Params) IsCarrot(major uint64) bool {
	return p.CarrotVersion > 0 && major >= p.CarrotVersion
}

// IsCheckpointHeight reports whether the miner transaction at height is a
// checkpoint whose body is not parsed.
func (p *Params) IsCheckpointHeight(height uint64) bool {
	return p.CheckpointInterval > 0 && height%p.CheckpointInterval == 0
}

var registry = map[Coin]*Params{
	CoinMonero:    &MoneroParams,
	CoinWownero:   &WowneroParams,
	CoinZephyr:    &ZephyrParams,
	CoinTownforge: &TownforgeParams,
	CoinArqma:     &ArqmaParams,
	CoinSumokoin:  &SumokoinParams,
	CoinGraft:     &GraftParams,
	CoinKeva:      &KevaParams,
}

// ParamsForCoin returns the params of a registered coin.
func ParamsForCoin(c Coin) (*Params, error) {
	p, ok := registry[c]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCoin, "coin id %d", c)
	}
	return p, nil
}

// ParamsByName looks a coin up by its name or ticker, case-insensitively.
func ParamsByName(name string) (*Params, error) {
	for _, p := range registry {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.Ticker, name) {
			return p, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownCoin, "%q", name)
}

// CoinNames returns the names of all registered coins in Coin order.
func CoinNames() []string {
	names := make([]string, 0, len(registry))
	for c := CoinMonero; int(c) < len(registry); c++ {
		names = append(names, registry[c].Name)
	}
	return names
}
