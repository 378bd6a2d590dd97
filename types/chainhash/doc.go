// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides abstracted hash functionality.
//
// This package provides a generic hash type and associated functions that
// allows the specific hash algorithm to be abstracted. CryptoNote chains use
// Keccak-256 (cn_fast_hash) both for transaction ids and for the nodes of the
// block Merkle tree, so every helper here hashes with it.
//
// The Merkle helpers build the CryptoNote tree, which folds a non-power-of-two
// leaf count into a power-of-two level before the ordinary pairwise halving,
// and produce the branch and orientation path needed to re-derive the root
// from a single leaf.
package chainhash
