// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"math/big"

	"gitlab.com/jaxnet/jaxminer/types/chainhash"
)

var (
	oneLsh256 = new(big.Int).Lsh(big.NewInt(1), 256)
	maxTarget = new(big.Int).Sub(oneLsh256, big.NewInt(1))
)

// HashToBig interprets a proof-of-work hash as a little endian 256-bit
// integer.
func HashToBig(hash *chainhash.Hash) *big.Int {
	buf := *hash
	for i := 0; i < chainhash.HashSize/2; i++ {
		buf[i], buf[chainhash.HashSize-1-i] = buf[chainhash.HashSize-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// CheckHash reports whether hash meets difficulty, that is whether
// hash * difficulty fits in 256 bits.
func CheckHash(hash *chainhash.Hash, difficulty uint64) bool {
	product := new(big.Int).Mul(HashToBig(hash), new(big.Int).SetUint64(difficulty))
	return product.Cmp(oneLsh256) < 0
}

// Target returns the largest hash value that meets difficulty.
func Target(difficulty uint64) *big.Int {
	if difficulty == 0 {
		return new(big.Int).Set(maxTarget)
	}
	return new(big.Int).Div(maxTarget, new(big.Int).SetUint64(difficulty))
}
