// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"github.com/pkg/errors"
	"gitlab.com/jaxnet/jaxminer/types/wire"
)

var (
	// ErrTruncatedInput is returned when the template ends before a field
	// it declares.
	ErrTruncatedInput = wire.ErrTruncated

	// ErrStructuralViolation is returned when a field holds a value the
	// miner transaction layout does not allow.
	ErrStructuralViolation = errors.New("invalid block template layout")

	// ErrIncompleteTemplate is returned when hashing is requested for a
	// checkpoint template whose body was not parsed.
	ErrIncompleteTemplate = errors.New("checkpoint template can not be hashed")

	// ErrNoMerkleTree is returned when hashing is requested for a template
	// parsed without its transaction hashes.
	ErrNoMerkleTree = errors.New("template was parsed without transaction hashes")

	// ErrExtraNonceSize is returned when an extra nonce does not fit the
	// slot reserved by the pool.
	ErrExtraNonceSize = errors.New("extra nonce does not fit reserved space")
)

func violation(format string, args ...interface{}) error {
	return errors.Wrapf(ErrStructuralViolation, format, args...)
}

func truncated(format string, args ...interface{}) error {
	return errors.Wrapf(ErrTruncatedInput, format, args...)
}
