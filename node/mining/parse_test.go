// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/jaxminer/types/chaincfg"
	"gitlab.com/jaxnet/jaxminer/types/chainhash"
)

func TestParseDialects(t *testing.T) {
	tests := []struct {
		name   string
		params *chaincfg.Params
		mutate func(s *blobFixture)
	}{
		{name: "monero tagged key", params: &chaincfg.MoneroParams},
		{
			name:   "monero txout_to_key",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.outputType = chaincfg.OutputTypeKey },
		},
		{
			name:   "monero carrot",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) {
				s.major, s.minor = 17, 17
				s.outputType = chaincfg.OutputTypeCarrot
			},
		},
		{
			name:   "monero fcmp tagged key",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.major, s.minor = 17, 17 },
		},
		{
			name:   "monero single transaction",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.hashes = nil },
		},
		{name: "wownero signed", params: &chaincfg.WowneroParams},
		{
			name:   "wownero unsigned",
			params: &chaincfg.WowneroParams,
			mutate: func(s *blobFixture) { s.major, s.minor = 17, 17 },
		},
		{name: "zephyr", params: &chaincfg.ZephyrParams},
		{
			name:   "zephyr three outputs",
			params: &chaincfg.ZephyrParams,
			mutate: func(s *blobFixture) { s.numOutputs = 3 },
		},
		{name: "townforge", params: &chaincfg.TownforgeParams},
		{name: "arqma", params: &chaincfg.ArqmaParams},
		{
			name:   "sumokoin with merge mining tag",
			params: &chaincfg.SumokoinParams,
			mutate: func(s *blobFixture) {
				s.extra = append(s.extra, extraTagMergeMining, 33)
				s.extra = append(s.extra, fill(0x66, 33)...)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newBlobFixture(tt.params)
			if tt.mutate != nil {
				tt.mutate(fx)
			}
			built := fx.build()

			tmpl, err := Parse(built.blob, tt.params, true)
			require.NoError(t, err)

			assert.Equal(t, tt.params.Coin, tmpl.Coin())
			assert.Equal(t, fx.major, tmpl.MajorVersion)
			assert.Equal(t, fx.minor, tmpl.MinorVersion)
			assert.Equal(t, fx.timestamp, tmpl.Timestamp)
			assert.Equal(t, fx.height, tmpl.Height)
			assert.Equal(t, fx.unlockTime, tmpl.UnlockTime)
			assert.Equal(t, fx.numOutputs, tmpl.NumOutputs)
			assert.Equal(t, fx.amount, tmpl.Amount)
			assert.Equal(t, fx.outputType, tmpl.OutputType)
			assert.Equal(t, uint64(len(fx.extra)), tmpl.ExtraSize)
			assert.Equal(t, uint64(len(fx.hashes)), tmpl.NumHashes)
			assert.False(t, tmpl.Checkpoint)

			offsets := map[Offset]int{
				NonceOffset:            built.nonce,
				MinerTxPrefixOffset:    built.prefixStart,
				MinerTxPrefixEndOffset: built.prefixEnd,
				EphPublicKeyOffset:     built.ephKey,
				TxExtraOffset:          built.extra,
				TxPubKeyOffset:         built.extra + 1,
				TxExtraNonceOffset:     built.extra + 1 + KeySize + 2,
			}
			for o, want := range offsets {
				got, ok := tmpl.Offset(o)
				require.True(t, ok, o.String())
				assert.Equal(t, want, got, o.String())
			}

			assert.Equal(t, fx.nonce[:], tmpl.Field(NonceOffset))
			assert.Equal(t, fill(0x11, KeySize), tmpl.Field(EphPublicKeyOffset))
			assert.Equal(t, fill(0x77, KeySize), tmpl.Field(TxPubKeyOffset))
			assert.Equal(t, fill(0x00, 8), tmpl.TxExtraNonce)
			assert.Equal(t, built.blob[built.prefixStart:built.prefixEnd], tmpl.MinerTxPrefix())

			carrot := tt.params.IsCarrot(fx.major)
			if carrot {
				assert.Equal(t, 2, tmpl.CoinbaseIndex)
				assert.Equal(t, fx.treeLayers, tmpl.Hashes[0][0])
				assert.Equal(t, make([]byte, chainhash.HashSize-1), tmpl.Hashes[0][1:])
				assert.Equal(t, fx.treeRoot, tmpl.Hashes[1])
				assert.Equal(t, fill(0x22, JanusAnchorSize), tmpl.JanusAnchor[:])
			} else {
				assert.Equal(t, 0, tmpl.CoinbaseIndex)
			}

			if tt.params.HasMinerSignature(fx.major) {
				assert.Equal(t, fill(0x5e, SignatureSize), tmpl.MinerSignature)
				assert.Equal(t, uint16(7), tmpl.Vote)
			} else {
				assert.Nil(t, tmpl.MinerSignature)
			}

			if tt.params.HasPricingRecord() {
				assert.Equal(t, fx.pricingExtra, [3]uint64{tmpl.PricingRecordHeight, tmpl.AmountBurnt, tmpl.AmountMinted})
			}

			require.Len(t, tmpl.Hashes, tmpl.CoinbaseIndex+len(fx.hashes)+1)
			assert.Equal(t, CalculateMinerTxHash(tmpl.MinerTxPrefix()), tmpl.Hashes[tmpl.CoinbaseIndex])
			assert.Equal(t, fx.hashes, nilIfEmpty(tmpl.Hashes[tmpl.CoinbaseIndex+1:]))

			root, err := chainhash.MerkleTreeRoot(tmpl.Hashes)
			require.NoError(t, err)
			assert.Equal(t, root, tmpl.RootHash)
			assert.Equal(t, root, CalculateRootHash(tmpl.MinerTxPrefix(), tmpl.MinerTxProof))
		})
	}
}

func nilIfEmpty(h []chainhash.Hash) []chainhash.Hash {
	if len(h) == 0 {
		return nil
	}
	return h
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		params *chaincfg.Params
		mutate func(s *blobFixture)
		want   error
	}{
		{
			name:   "no inputs",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.numInputs = 0 },
			want:   ErrStructuralViolation,
		},
		{
			name:   "two inputs",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.numInputs = 2 },
			want:   ErrStructuralViolation,
		},
		{
			name:   "input is not txin_gen",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.inputType = 0x02 },
			want:   ErrStructuralViolation,
		},
		{
			name:   "two outputs",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.numOutputs = 2 },
			want:   ErrStructuralViolation,
		},
		{
			name:   "unknown output type",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.outputType = 0x01 },
			want:   ErrStructuralViolation,
		},
		{
			name:   "carrot output before fcmp",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.outputType = chaincfg.OutputTypeCarrot },
			want:   ErrStructuralViolation,
		},
		{
			name:   "carrot output on another chain",
			params: &chaincfg.ArqmaParams,
			mutate: func(s *blobFixture) {
				s.major = 17
				s.outputType = chaincfg.OutputTypeCarrot
			},
			want: ErrStructuralViolation,
		},
		{
			name:   "zephyr single output",
			params: &chaincfg.ZephyrParams,
			mutate: func(s *blobFixture) { s.numOutputs = 1 },
			want:   ErrStructuralViolation,
		},
		{
			name:   "zephyr tagged key output",
			params: &chaincfg.ZephyrParams,
			mutate: func(s *blobFixture) { s.outputType = chaincfg.OutputTypeTaggedKey },
			want:   ErrStructuralViolation,
		},
		{
			name:   "zephyr secondary output type",
			params: &chaincfg.ZephyrParams,
			mutate: func(s *blobFixture) { s.secondType = chaincfg.OutputTypeTaggedKey },
			want:   ErrStructuralViolation,
		},
		{
			name:   "unknown extra tag",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.extra = append(s.extra, 0x04, 0x00) },
			want:   ErrStructuralViolation,
		},
		{
			name:   "padding extra tag",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.extra = append([]byte{0x00}, s.extra...) },
			want:   ErrStructuralViolation,
		},
		{
			name:   "extra pubkey overruns extra",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.extra = append([]byte{extraTagPubKey}, fill(0x77, 10)...) },
			want:   ErrTruncatedInput,
		},
		{
			name:   "extra nonce overruns extra",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.extra = []byte{extraTagNonce, 0x10, 0x00} },
			want:   ErrTruncatedInput,
		},
		{
			name:   "rct type not null",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.rct = []byte{0x01} },
			want:   ErrStructuralViolation,
		},
		{
			name:   "no rct byte",
			params: &chaincfg.MoneroParams,
			mutate: func(s *blobFixture) { s.rct = nil },
			want:   ErrStructuralViolation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newBlobFixture(tt.params)
			tt.mutate(fx)
			built := fx.build()

			tmpl, err := Parse(built.blob, tt.params, true)
			assert.Nil(t, tmpl)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseTruncated(t *testing.T) {
	carrot := newBlobFixture(&chaincfg.MoneroParams)
	carrot.major = 17
	carrot.outputType = chaincfg.OutputTypeCarrot

	fixtures := []*blobFixture{
		newBlobFixture(&chaincfg.MoneroParams),
		carrot,
		newBlobFixture(&chaincfg.WowneroParams),
		newBlobFixture(&chaincfg.ZephyrParams),
		newBlobFixture(&chaincfg.TownforgeParams),
	}
	for _, fx := range fixtures {
		built := fx.build()
		name := fx.params.Name

		_, err := Parse(built.blob, fx.params, true)
		require.NoError(t, err, name)

		for n := 0; n < len(built.blob); n++ {
			tmpl, err := Parse(built.blob[:n], fx.params, true)
			require.Error(t, err, "%s n=%d", name, n)
			assert.Nil(t, tmpl)

			if n < MinSize {
				assert.True(t, errors.Is(err, ErrTruncatedInput), "%s n=%d: %v", name, n, err)
			}
		}
	}
}

func TestParseHashCountGuard(t *testing.T) {
	built := newBlobFixture(&chaincfg.MoneroParams).build()
	blob := append([]byte(nil), built.blob...)

	// 3 hashes declared in a single byte right after the rct byte.
	require.Equal(t, byte(3), blob[built.prefixEnd+1])
	blob[built.prefixEnd+1] = 0x7f

	_, err := Parse(blob, &chaincfg.MoneroParams, true)
	assert.True(t, errors.Is(err, ErrTruncatedInput))

	// Without hashes the count is only read.
	tmpl, err := Parse(blob, &chaincfg.MoneroParams, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x7f), tmpl.NumHashes)
}

func TestParseWithoutHashes(t *testing.T) {
	built := newBlobFixture(&chaincfg.MoneroParams).build()

	tmpl, err := Parse(built.blob, &chaincfg.MoneroParams, false)
	require.NoError(t, err)

	assert.False(t, tmpl.HasHashes())
	assert.Equal(t, uint64(3), tmpl.NumHashes)

	_, err = tmpl.HashingBlob()
	assert.Equal(t, ErrNoMerkleTree, err)
	_, err = tmpl.HeaderHashingBlob()
	assert.Equal(t, ErrNoMerkleTree, err)
}

func TestParseCheckpoint(t *testing.T) {
	fx := newBlobFixture(&chaincfg.TownforgeParams)
	fx.height = 1440
	fx.rct = []byte{0x05}
	built := fx.build()

	// A checkpoint body is not parsed, so the rct byte does not matter.
	tmpl, err := Parse(built.blob, &chaincfg.TownforgeParams, true)
	require.NoError(t, err)

	assert.True(t, tmpl.Checkpoint)
	assert.False(t, tmpl.HasHashes())
	assert.Equal(t, built.blob[built.prefixStart:built.prefixEnd], tmpl.MinerTxPrefix())

	_, err = tmpl.HashingBlob()
	assert.Equal(t, ErrIncompleteTemplate, err)

	_, err = NewJob(tmpl)
	assert.Equal(t, ErrIncompleteTemplate, err)

	// The same rct byte fails an ordinary height.
	fx.height = 1441
	_, err = Parse(fx.build().blob, &chaincfg.TownforgeParams, true)
	assert.True(t, errors.Is(err, ErrStructuralViolation))
}

func TestParseExtraRepeatedTags(t *testing.T) {
	fx := newBlobFixture(&chaincfg.MoneroParams)

	var extra []byte
	extra = append(extra, extraTagNonce, 4, 0xa1, 0xa2, 0xa3, 0xa4)
	extra = append(extra, extraTagPubKey)
	extra = append(extra, fill(0x77, KeySize)...)
	extra = append(extra, extraTagPubKey)
	extra = append(extra, fill(0x78, KeySize)...)
	extra = append(extra, extraTagNonce, 2, 0xb1, 0xb2)
	extra = append(extra, extraTagMergeMining, 1, 0xc1)
	extra = append(extra, extraTagMergeMining, 1, 0xc2)
	fx.extra = extra

	built := fx.build()
	tmpl, err := Parse(built.blob, &chaincfg.MoneroParams, true)
	require.NoError(t, err)

	nonceOffset, ok := tmpl.Offset(TxExtraNonceOffset)
	require.True(t, ok)
	assert.Equal(t, built.extra+2, nonceOffset)
	assert.Equal(t, []byte{0xa1, 0xa2, 0xa3, 0xa4}, tmpl.TxExtraNonce)
	assert.Equal(t, tmpl.TxExtraNonce, tmpl.Field(TxExtraNonceOffset))

	pubKeyOffset, ok := tmpl.Offset(TxPubKeyOffset)
	require.True(t, ok)
	assert.Equal(t, built.extra+7, pubKeyOffset)
	assert.Equal(t, fill(0x77, KeySize), tmpl.Field(TxPubKeyOffset))

	assert.Equal(t, []byte{0xc1}, tmpl.TxMergeMiningTag)
	assert.Equal(t, []byte{0xc1}, tmpl.Field(TxExtraMergeMiningTagOffset))
}

func TestParseEmptyExtra(t *testing.T) {
	fx := newBlobFixture(&chaincfg.MoneroParams)
	fx.extra = nil

	tmpl, err := Parse(fx.build().blob, &chaincfg.MoneroParams, true)
	require.NoError(t, err)

	for _, o := range []Offset{TxPubKeyOffset, TxExtraNonceOffset, TxExtraMergeMiningTagOffset} {
		_, ok := tmpl.Offset(o)
		assert.False(t, ok, o.String())
		assert.Nil(t, tmpl.Field(o), o.String())
	}
	assert.Empty(t, tmpl.Field(TxExtraOffset))
}

func TestParseIsDeterministic(t *testing.T) {
	built := newBlobFixture(&chaincfg.MoneroParams).build()

	first, err := Parse(built.blob, &chaincfg.MoneroParams, true)
	require.NoError(t, err)
	second, err := Parse(built.blob, &chaincfg.MoneroParams, true)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	firstBlob, err := first.HashingBlob()
	require.NoError(t, err)
	secondBlob, err := second.HashingBlob()
	require.NoError(t, err)
	assert.Equal(t, firstBlob, secondBlob)
}

func TestParseCopiesBlob(t *testing.T) {
	built := newBlobFixture(&chaincfg.MoneroParams).build()
	blob := append([]byte(nil), built.blob...)

	tmpl, err := Parse(blob, &chaincfg.MoneroParams, true)
	require.NoError(t, err)

	blob[built.nonce] ^= 0xff
	assert.Equal(t, built.blob, tmpl.Blob())
}

func TestParseHex(t *testing.T) {
	built := newBlobFixture(&chaincfg.MoneroParams).build()
	text := hex.EncodeToString(built.blob)

	tmpl, err := ParseHex(text, &chaincfg.MoneroParams, true)
	require.NoError(t, err)
	assert.Equal(t, built.blob, tmpl.Blob())

	tmpl, err = ParseHex(strings.ToUpper(text), &chaincfg.MoneroParams, true)
	require.NoError(t, err)
	assert.Equal(t, built.blob, tmpl.Blob())

	_, err = ParseHex(text[:MinSize*2-2], &chaincfg.MoneroParams, true)
	assert.True(t, errors.Is(err, ErrTruncatedInput))

	_, err = ParseHex("zz"+text[2:], &chaincfg.MoneroParams, true)
	assert.True(t, errors.Is(err, ErrStructuralViolation))

	_, err = ParseHex(text, nil, true)
	assert.True(t, errors.Is(err, chaincfg.ErrUnknownCoin))
}

func TestOffsetNames(t *testing.T) {
	seen := map[string]bool{}
	for _, o := range Offsets() {
		name := o.String()
		assert.NotEqual(t, "unknown", name)
		assert.False(t, seen[name], name)
		seen[name] = true
	}
	assert.Equal(t, "unknown", Offset(-1).String())
	assert.Equal(t, "unknown", offsetCount.String())
}
