// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/jaxminer/types/chaincfg"
)

func TestJobNonce(t *testing.T) {
	built := newBlobFixture(&chaincfg.MoneroParams).build()
	tmpl, err := Parse(built.blob, &chaincfg.MoneroParams, true)
	require.NoError(t, err)

	job, err := NewJob(tmpl)
	require.NoError(t, err)

	header, err := tmpl.HeaderHashingBlob()
	require.NoError(t, err)
	assert.Equal(t, header, job.HashingBlob())
	assert.Equal(t, uint32(0x04030201), job.Nonce())

	id := job.ID()
	job.SetNonce(0xdeadbeef)

	assert.Equal(t, uint32(0xdeadbeef), job.Nonce())
	assert.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(job.HashingBlob()[built.nonce:]))
	assert.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(job.Blob()[built.nonce:]))
	assert.Equal(t, id, job.ID())
	assert.Equal(t, tmpl.RootHash, job.Root())

	// The template is left untouched.
	assert.Equal(t, built.blob, tmpl.Blob())
}

func TestJobExtraNonceMatchesRebuild(t *testing.T) {
	carrot := newBlobFixture(&chaincfg.MoneroParams)
	carrot.major = 17
	carrot.outputType = chaincfg.OutputTypeCarrot
	carrot.hashes = testHashes(9)

	wide := newBlobFixture(&chaincfg.MoneroParams)
	wide.hashes = testHashes(12)

	fixtures := map[string]*blobFixture{
		"monero":  newBlobFixture(&chaincfg.MoneroParams),
		"wide":    wide,
		"carrot":  carrot,
		"wownero": newBlobFixture(&chaincfg.WowneroParams),
		"zephyr":  newBlobFixture(&chaincfg.ZephyrParams),
		"single": func() *blobFixture {
			s := newBlobFixture(&chaincfg.ArqmaParams)
			s.hashes = nil
			return s
		}(),
	}
	for name, fx := range fixtures {
		t.Run(name, func(t *testing.T) {
			built := fx.build()
			tmpl, err := Parse(built.blob, fx.params, true)
			require.NoError(t, err)

			job, err := NewJob(tmpl)
			require.NoError(t, err)

			require.NoError(t, job.SetExtraNonce([]byte{0xca, 0xfe, 0xba, 0xbe}))
			job.SetNonce(42)

			rebuilt, err := Parse(job.Blob(), fx.params, true)
			require.NoError(t, err)
			assert.Equal(t, []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 0}, rebuilt.TxExtraNonce)
			assert.Equal(t, rebuilt.RootHash, job.Root())
			assert.NotEqual(t, tmpl.RootHash, job.Root())

			want, err := rebuilt.HeaderHashingBlob()
			require.NoError(t, err)
			assert.Equal(t, want, job.HashingBlob())
		})
	}
}

func TestJobExtraNonceErrors(t *testing.T) {
	built := newBlobFixture(&chaincfg.MoneroParams).build()
	tmpl, err := Parse(built.blob, &chaincfg.MoneroParams, true)
	require.NoError(t, err)

	job, err := NewJob(tmpl)
	require.NoError(t, err)

	err = job.SetExtraNonce(make([]byte, 9))
	assert.True(t, errors.Is(err, ErrExtraNonceSize))
	assert.Equal(t, tmpl.RootHash, job.Root())

	fx := newBlobFixture(&chaincfg.MoneroParams)
	fx.extra = append([]byte{extraTagPubKey}, fill(0x77, KeySize)...)
	tmpl, err = Parse(fx.build().blob, &chaincfg.MoneroParams, true)
	require.NoError(t, err)

	job, err = NewJob(tmpl)
	require.NoError(t, err)
	assert.True(t, errors.Is(job.SetExtraNonce([]byte{1}), ErrExtraNonceSize))
}

func TestJobID(t *testing.T) {
	first := newBlobFixture(&chaincfg.MoneroParams)
	second := newBlobFixture(&chaincfg.MoneroParams)
	second.height++

	ids := map[uint64]bool{}
	for _, fx := range []*blobFixture{first, second} {
		tmpl, err := Parse(fx.build().blob, &chaincfg.MoneroParams, true)
		require.NoError(t, err)

		job, err := NewJob(tmpl)
		require.NoError(t, err)

		again, err := NewJob(tmpl)
		require.NoError(t, err)
		assert.Equal(t, job.ID(), again.ID())
		assert.NotEmpty(t, job.IDString())

		ids[job.ID()] = true
	}
	assert.Len(t, ids, 2)
}

func TestNewJobWithoutHashes(t *testing.T) {
	tmpl, err := Parse(newBlobFixture(&chaincfg.MoneroParams).build().blob, &chaincfg.MoneroParams, false)
	require.NoError(t, err)

	_, err = NewJob(tmpl)
	assert.Equal(t, ErrNoMerkleTree, err)
}
