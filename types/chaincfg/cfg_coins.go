// Copyright (c) 2020 The JAX.Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

// MoneroParams defines the template rules of Monero.
var MoneroParams = Params{
	Coin:   CoinMonero,
	Name:   "monero",
	Ticker: "XMR",

	CarrotVersion: MoneroCarrotVersion,
}

// WowneroParams defines the template rules of Wownero.
var WowneroParams = Params{
	Coin:   CoinWownero,
	Name:   "wownero",
	Ticker: "WOW",

	MinerSignatureVersion: WowneroSignatureVersion,
}

// ZephyrParams defines the template rules of Zephyr.
var ZephyrParams = Params{
	Coin:   CoinZephyr,
	Name:   "zephyr",
	Ticker: "ZEPH",

	PricingRecordSize: ZephyrPricingRecordSize,
}

// TownforgeParams defines the template rules of Townforge.
var TownforgeParams = Params{
	Coin:   CoinTownforge,
	Name:   "townforge",
	Ticker: "TFG",

	DeferredUnlockTime: true,
	CheckpointInterval: TownforgeCheckpointInterval,
}

// Plain CryptoNote chains.
var (
	ArqmaParams    = Params{Coin: CoinArqma, Name: "arqma", Ticker: "ARQ"}
	SumokoinParams = Params{Coin: CoinSumokoin, Name: "sumokoin", Ticker: "SUMO"}
	GraftParams    = Params{Coin: CoinGraft, Name: "graft", Ticker: "GRFT"}
	KevaParams     = Params{Coin: CoinKeva, Name: "keva", Ticker: "KVA"}
)
