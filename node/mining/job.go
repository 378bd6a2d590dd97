// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"

	"github.com/aead/siphash"
	"github.com/pkg/errors"
	"gitlab.com/jaxnet/jaxminer/types/chainhash"
)

// jobKey keys job ids. It is random per process so ids can not be
// predicted from the template.
var jobKey [siphash.KeySize]byte

func init() {
	if _, err := rand.Read(jobKey[:]); err != nil {
		panic(err)
	}
}

// Job is a block template being mined. It owns a copy of the template blob
// in which the nonce and the extra nonce are rewritten. A Job is not safe for
// concurrent use.
type Job struct {
	tmpl *BlockTemplate
	blob []byte
	root chainhash.Hash
	id   uint64

	prefixStart int
	prefixEnd   int
	nonceOffset int

	hashingBlob []byte
}

// NewJob prepares a job for a template parsed with its hashes.
func NewJob(tmpl *BlockTemplate) (*Job, error) {
	header, err := tmpl.HeaderHashingBlob()
	if err != nil {
		return nil, err
	}

	j := &Job{
		tmpl: tmpl,
		blob: append([]byte(nil), tmpl.blob...),
		root: tmpl.RootHash,
		id:   siphash.Sum64(header, &jobKey),
	}
	j.prefixStart, _ = tmpl.Offset(MinerTxPrefixOffset)
	j.prefixEnd, _ = tmpl.Offset(MinerTxPrefixEndOffset)
	j.nonceOffset, _ = tmpl.Offset(NonceOffset)
	j.rebuild()

	return j, nil
}

// ID identifies the template of the job. It does not change with the nonce
// or the extra nonce.
func (j *Job) ID() uint64 { return j.id }

// IDString returns the job id as hex.
func (j *Job) IDString() string { return strconv.FormatUint(j.id, 16) }

// Template returns the parsed template the job was created from.
func (j *Job) Template() *BlockTemplate { return j.tmpl }

// Root returns the current merkle root.
func (j *Job) Root() chainhash.Hash { return j.root }

// Nonce returns the current header nonce.
func (j *Job) Nonce() uint32 {
	return binary.LittleEndian.Uint32(j.blob[j.nonceOffset:])
}

// SetNonce writes the header nonce.
func (j *Job) SetNonce(nonce uint32) {
	binary.LittleEndian.PutUint32(j.blob[j.nonceOffset:], nonce)
	binary.LittleEndian.PutUint32(j.hashingBlob[j.nonceOffset:], nonce)
}

// SetExtraNonce writes extraNonce at the start of the extra nonce field
// reserved by the pool and re-derives the merkle root from the cached proof.
func (j *Job) SetExtraNonce(extraNonce []byte) error {
	offset, ok := j.tmpl.Offset(TxExtraNonceOffset)
	if !ok {
		return errors.Wrap(ErrExtraNonceSize, "template has no extra nonce field")
	}
	if len(extraNonce) > len(j.tmpl.TxExtraNonce) {
		return errors.Wrapf(ErrExtraNonceSize, "extra nonce is %d bytes, field is %d",
			len(extraNonce), len(j.tmpl.TxExtraNonce))
	}

	copy(j.blob[offset:], extraNonce)
	j.root = CalculateRootHash(j.blob[j.prefixStart:j.prefixEnd], j.tmpl.MinerTxProof)
	j.rebuild()

	return nil
}

func (j *Job) rebuild() {
	j.hashingBlob = appendTreeHash(j.hashingBlob[:0], j.blob[:j.prefixStart], j.root, j.tmpl.NumHashes)
}

// HashingBlob returns the bytes to feed to the proof of work for the current
// nonce and extra nonce. The slice is reused by the next call to SetNonce or
// SetExtraNonce.
func (j *Job) HashingBlob() []byte { return j.hashingBlob }

// Blob returns a copy of the full block blob with the current nonce and
// extra nonce, ready to be submitted.
func (j *Job) Blob() []byte {
	return append([]byte(nil), j.blob...)
}
