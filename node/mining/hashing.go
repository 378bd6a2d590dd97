// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"gitlab.com/jaxnet/jaxminer/types/chainhash"
	"gitlab.com/jaxnet/jaxminer/types/wire"
)

// baseRCTHash is the hash of the RCT base of a miner transaction, a single
// zero byte.
var baseRCTHash = chainhash.Hash{
	0xbc, 0x36, 0x78, 0x9e, 0x7a, 0x1e, 0x28, 0x14,
	0x36, 0x46, 0x42, 0x29, 0x82, 0x8f, 0x81, 0x7d,
	0x66, 0x12, 0xf7, 0xb4, 0x77, 0xd6, 0x65, 0x91,
	0xff, 0x96, 0xa9, 0xe0, 0x64, 0xbc, 0xc9, 0x8a,
}

// CalculateMinerTxHash returns the hash of a miner transaction given its
// serialized prefix. A miner transaction has no signatures, so the RCT base
// hash is constant and the prunable hash is zero.
func CalculateMinerTxHash(prefix []byte) chainhash.Hash {
	var hashes [chainhash.HashSize * 3]byte

	prefixHash := chainhash.HashH(prefix)
	copy(hashes[:], prefixHash[:])
	copy(hashes[chainhash.HashSize:], baseRCTHash[:])

	return chainhash.HashH(hashes[:])
}

// CalculateRootHash returns the merkle root of a block whose miner
// transaction has the given prefix.
func CalculateRootHash(prefix []byte, proof chainhash.MerkleProof) chainhash.Hash {
	return proof.Root(CalculateMinerTxHash(prefix))
}

// HashingBlob returns the miner transaction prefix followed by the merkle
// root and the number of transactions in the block.
func (t *BlockTemplate) HashingBlob() ([]byte, error) {
	if err := t.checkHashable(); err != nil {
		return nil, err
	}
	return appendTreeHash(nil, t.MinerTxPrefix(), t.RootHash, t.NumHashes), nil
}

// HeaderHashingBlob returns the block header followed by the merkle root and
// the number of transactions in the block. This is the blob CryptoNote
// daemons feed to the proof of work; it contains the header nonce.
func (t *BlockTemplate) HeaderHashingBlob() ([]byte, error) {
	if err := t.checkHashable(); err != nil {
		return nil, err
	}
	prefixStart, _ := t.Offset(MinerTxPrefixOffset)
	return appendTreeHash(nil, t.blob[:prefixStart], t.RootHash, t.NumHashes), nil
}

func (t *BlockTemplate) checkHashable() error {
	if t.Checkpoint {
		return ErrIncompleteTemplate
	}
	if !t.HasHashes() {
		return ErrNoMerkleTree
	}
	return nil
}

func appendTreeHash(dst, head []byte, root chainhash.Hash, numHashes uint64) []byte {
	if dst == nil {
		dst = make([]byte, 0, len(head)+chainhash.HashSize+wire.VarIntSerializeSize(numHashes+1))
	}
	dst = append(dst, head...)
	dst = append(dst, root[:]...)
	return wire.AppendVarInt(dst, numHashes+1)
}
