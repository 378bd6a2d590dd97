// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"github.com/pkg/errors"
)

var (
	ErrEmptyMerkleTree = errors.New("merkle tree has no leaves")
	ErrMerkleLeafIndex = errors.New("merkle leaf index out of range")
)

// MerkleProof is the audit branch of a single leaf.
//
// Branch lists the sibling hashes from the leaf level up to the level right
// below the root. Path holds one orientation bit per branch entry: the bit for
// Branch[0] is the most significant populated bit and the bit for the last
// entry is bit 0. A set bit means the tracked hash is the right element of
// its pair.
type MerkleProof struct {
	Branch []Hash
	Path   uint32
}

// Depth returns the number of levels between the leaf and the root.
func (p MerkleProof) Depth() int {
	return len(p.Branch)
}

// Root re-derives the merkle root from leaf using only the branch and path.
func (p MerkleProof) Root(leaf Hash) Hash {
	depth := len(p.Branch)
	var buf [HashSize * 2]byte

	for d := 0; d < depth; d++ {
		t := (p.Path >> uint(depth-d-1)) & 1

		copy(buf[HashSize*t:], leaf[:])
		copy(buf[HashSize*(t^1):], p.Branch[d][:])
		leaf = HashH(buf[:])
	}

	return leaf
}

// HashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation.
func HashMerkleBranches(left *Hash, right *Hash) *Hash {
	var hash [HashSize * 2]byte
	copy(hash[:HashSize], left[:])
	copy(hash[HashSize:], right[:])

	newHash := HashH(hash[:])
	return &newHash
}

// BuildMerkleTreeProof computes the CryptoNote merkle root of leaves together
// with the proof for the leaf at index.
//
// A leaf count that is not a power of two is first folded into the largest
// power of two not above it: the first 2*cnt-n leaves are carried over as is
// and the rest are hashed pairwise. The folded level is then halved until one
// hash remains. Leaves that were carried over sit one level closer to the
// root, so their proofs are one entry shorter.
func BuildMerkleTreeProof(leaves []Hash, index int) (Hash, MerkleProof, error) {
	var proof MerkleProof

	count := len(leaves)
	if count == 0 {
		return ZeroHash, proof, ErrEmptyMerkleTree
	}
	if index < 0 || index >= count {
		return ZeroHash, proof, errors.Wrapf(ErrMerkleLeafIndex, "index %d, %d leaves", index, count)
	}

	switch count {
	case 1:
		return leaves[0], proof, nil

	case 2:
		root := HashMerkleBranches(&leaves[0], &leaves[1])
		proof.Branch = []Hash{leaves[index^1]}
		proof.Path = uint32(index)
		return *root, proof, nil
	}

	cnt, maxDepth := 1, 0
	for cnt <= count {
		cnt <<= 1
		maxDepth++
	}
	cnt >>= 1

	proof.Branch = make([]Hash, 0, maxDepth)

	ints := make([]Hash, cnt)
	k := cnt*2 - count
	copy(ints, leaves[:k])

	// pos follows the tracked leaf through the levels.
	pos := index
	for i, j := k, k; j < cnt; i, j = i+2, j+1 {
		ints[j] = *HashMerkleBranches(&leaves[i], &leaves[i+1])

		switch pos {
		case i:
			proof.Branch = append(proof.Branch, leaves[i+1])
			pos = j
		case i + 1:
			proof.Branch = append(proof.Branch, leaves[i])
			proof.Path = 1
			pos = j
		}
	}

	for cnt >= 2 {
		cnt >>= 1
		for i, j := 0, 0; j < cnt; i, j = i+2, j+1 {
			parent := HashMerkleBranches(&ints[i], &ints[i+1])

			switch pos {
			case i:
				proof.Branch = append(proof.Branch, ints[i+1])
				proof.Path <<= 1
				pos = j
			case i + 1:
				proof.Branch = append(proof.Branch, ints[i])
				proof.Path = proof.Path<<1 | 1
				pos = j
			}

			ints[j] = *parent
		}
	}

	return ints[0], proof, nil
}

// MerkleTreeRoot returns the CryptoNote merkle root of leaves.
func MerkleTreeRoot(leaves []Hash) (Hash, error) {
	root, _, err := BuildMerkleTreeProof(leaves, 0)
	return root, err
}

// ValidateMerkleTreeProof reports whether proof links leaf to root.
func ValidateMerkleTreeProof(leaf Hash, proof MerkleProof, root Hash) bool {
	return proof.Root(leaf) == root
}
