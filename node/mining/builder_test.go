// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"bytes"
	"fmt"

	"gitlab.com/jaxnet/jaxminer/types/chaincfg"
	"gitlab.com/jaxnet/jaxminer/types/chainhash"
	"gitlab.com/jaxnet/jaxminer/types/wire"
)

// blobFixture describes a synthetic block template. newBlobFixture fills in a valid
// template for the coin; tests change single fields to break it.
type blobFixture struct {
	params *chaincfg.Params

	major, minor uint64
	timestamp    uint64
	nonce        [NonceSize]byte

	txVersion    uint64
	unlockTime   uint64
	numInputs    uint64
	inputType    byte
	height       uint64
	numOutputs   uint64
	amount       uint64
	outputType   byte
	secondType   byte
	extra        []byte
	rct          []byte
	hashes       []chainhash.Hash
	treeLayers   byte
	treeRoot     chainhash.Hash
	pricingExtra [3]uint64
}

// builtBlob is the serialized template with the positions the parser is
// expected to report.
type builtBlob struct {
	blob        []byte
	nonce       int
	prefixStart int
	prefixEnd   int
	ephKey      int
	extra       int
}

func newBlobFixture(params *chaincfg.Params) *blobFixture {
	s := &blobFixture{
		params:     params,
		major:      16,
		minor:      16,
		timestamp:  1700000000,
		nonce:      [NonceSize]byte{0x01, 0x02, 0x03, 0x04},
		txVersion:  2,
		numInputs:  1,
		inputType:  chaincfg.InputTypeGen,
		height:     3000001,
		numOutputs: 1,
		amount:     600000000000,
		outputType: chaincfg.OutputTypeTaggedKey,
		secondType: chaincfg.OutputTypeKey,
		extra:      standardExtra(8),
		rct:        []byte{0x00},
		hashes:     testHashes(3),
		treeLayers: 7,
		treeRoot:   chainhash.HashH([]byte("tree root")),
	}
	s.unlockTime = s.height + 60

	switch params.Coin {
	case chaincfg.CoinWownero:
		s.major, s.minor = 18, 18
	case chaincfg.CoinZephyr:
		s.numOutputs = 2
		s.outputType = chaincfg.OutputTypeKey
		s.pricingExtra = [3]uint64{2999999, 150, 300}
	case chaincfg.CoinTownforge:
		s.height = 721
	}

	return s
}

func testHashes(n int) []chainhash.Hash {
	hashes := make([]chainhash.Hash, n)
	for i := range hashes {
		hashes[i] = chainhash.HashH([]byte(fmt.Sprintf("tx_%d", i)))
	}
	return hashes
}

func fill(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

// standardExtra is a tx pubkey followed by an extra nonce of nonceSize
// bytes.
func standardExtra(nonceSize int) []byte {
	extra := []byte{extraTagPubKey}
	extra = append(extra, fill(0x77, KeySize)...)
	extra = append(extra, extraTagNonce)
	extra = wire.AppendVarInt(extra, uint64(nonceSize))
	return append(extra, fill(0x00, nonceSize)...)
}

func (s *blobFixture) build() builtBlob {
	var out builtBlob
	p := s.params
	carrot := p.IsCarrot(s.major)

	b := wire.AppendVarInt(nil, s.major)
	b = wire.AppendVarInt(b, s.minor)
	b = wire.AppendVarInt(b, s.timestamp)
	b = append(b, fill(0xaa, chainhash.HashSize)...)

	out.nonce = len(b)
	b = append(b, s.nonce[:]...)

	if p.HasMinerSignature(s.major) {
		b = append(b, fill(0x5e, SignatureSize)...)
		b = append(b, 0x07, 0x00)
	}
	if p.HasPricingRecord() {
		b = append(b, fill(0x33, p.PricingRecordSize)...)
	}

	out.prefixStart = len(b)
	b = wire.AppendVarInt(b, s.txVersion)
	if !p.DeferredUnlockTime {
		b = wire.AppendVarInt(b, s.unlockTime)
	}
	b = wire.AppendVarInt(b, s.numInputs)
	b = append(b, s.inputType)
	b = wire.AppendVarInt(b, s.height)
	b = wire.AppendVarInt(b, s.numOutputs)
	b = wire.AppendVarInt(b, s.amount)
	b = append(b, s.outputType)

	out.ephKey = len(b)
	b = append(b, fill(0x11, KeySize)...)

	if carrot {
		b = append(b, fill(0x21, CarrotViewTagSize)...)
		b = append(b, fill(0x22, JanusAnchorSize)...)
	}

	if p.HasPricingRecord() {
		b = appendAsset(b, "ZEPH")
		for k := uint64(1); k < s.numOutputs; k++ {
			b = wire.AppendVarInt(b, s.amount/10)
			b = append(b, s.secondType)
			b = append(b, fill(0x12, KeySize)...)
			b = appendAsset(b, "ZSD")
		}
	} else if s.outputType == chaincfg.OutputTypeTaggedKey {
		b = append(b, 0x44)
	}

	if p.DeferredUnlockTime {
		b = wire.AppendVarInt(b, s.unlockTime)
	}

	b = wire.AppendVarInt(b, uint64(len(s.extra)))
	out.extra = len(b)
	b = append(b, s.extra...)

	if p.HasPricingRecord() {
		for _, v := range s.pricingExtra {
			b = wire.AppendVarInt(b, v)
		}
	}

	out.prefixEnd = len(b)
	b = append(b, s.rct...)
	b = wire.AppendVarInt(b, uint64(len(s.hashes)))
	for _, h := range s.hashes {
		b = append(b, h[:]...)
	}
	if carrot {
		b = append(b, s.treeLayers)
		b = append(b, s.treeRoot[:]...)
	}

	out.blob = b
	return out
}

func appendAsset(b []byte, asset string) []byte {
	b = wire.AppendVarInt(b, uint64(len(asset)))
	b = append(b, asset...)
	return append(b, 0x44)
}
