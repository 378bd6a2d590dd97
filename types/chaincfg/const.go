/*
 * Copyright (c) 2021 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package chaincfg

const (
	// WowneroSignatureVersion is the first Wownero major version whose
	// header carries a miner signature and vote.
	WowneroSignatureVersion = 18

	// MoneroCarrotVersion is the first Monero major version (FCMP++) that
	// uses carrot outputs and commits the curve tree into the merkle tree.
	MoneroCarrotVersion = 17

	// ZephyrPricingRecordSize is the size of the oracle pricing record that
	// Zephyr stores right after the header nonce.
	ZephyrPricingRecordSize = 120

	// TownforgeCheckpointInterval is the block interval of Townforge game
	// update transactions. Their bodies are not parsed.
	TownforgeCheckpointInterval = 720
)

const (
	// OutputTypeCarrot is txout_to_carrot_v1.
	OutputTypeCarrot = 0x00

	// OutputTypeKey is txout_to_key.
	OutputTypeKey = 0x02

	// OutputTypeTaggedKey is txout_to_tagged_key, a key followed by a
	// one byte view tag.
	OutputTypeTaggedKey = 0x03

	// InputTypeGen is txin_gen, the only input a miner transaction has.
	InputTypeGen = 0xff
)
