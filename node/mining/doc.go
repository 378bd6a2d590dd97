// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mining parses CryptoNote block templates and prepares them for
hashing.

A template is the hex blob returned by get_block_template: the block header,
the miner transaction and the hashes of the other transactions of the block.
Parse validates that layout for one coin dialect and records where the mutable
fields live. Because only the miner transaction changes between attempts, the
merkle proof of its leaf is cached on the template and the root is re-derived
in O(log n) whenever the extra nonce is rewritten.

	tmpl, err := mining.ParseHex(resp.Blob, &chaincfg.MoneroParams, true)
	if err != nil {
		return err
	}

	job, err := mining.NewJob(tmpl)
	if err != nil {
		return err
	}
	if err := job.SetExtraNonce(extraNonce); err != nil {
		return err
	}
	job.SetNonce(nonce)
	pow(job.HashingBlob())
*/
package mining
