// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"gitlab.com/jaxnet/jaxminer/types/chaincfg"
	"gitlab.com/jaxnet/jaxminer/types/chainhash"
)

const (
	// MinSize is the smallest blob that can hold a block template.
	MinSize = 76

	NonceSize     = 4
	KeySize       = 32
	SignatureSize = 64

	CarrotViewTagSize = 3
	JanusAnchorSize   = 16
)

// Offset names a position inside the template blob.
type Offset int

const (
	NonceOffset Offset = iota
	MinerTxPrefixOffset
	MinerTxPrefixEndOffset
	EphPublicKeyOffset
	TxExtraOffset
	TxPubKeyOffset
	TxExtraNonceOffset
	TxExtraMergeMiningTagOffset

	offsetCount
)

var offsetNames = [offsetCount]string{
	NonceOffset:                 "nonce",
	MinerTxPrefixOffset:         "miner_tx_prefix",
	MinerTxPrefixEndOffset:      "miner_tx_prefix_end",
	EphPublicKeyOffset:          "eph_public_key",
	TxExtraOffset:               "tx_extra",
	TxPubKeyOffset:              "tx_pubkey",
	TxExtraNonceOffset:          "tx_extra_nonce",
	TxExtraMergeMiningTagOffset: "tx_extra_merge_mining_tag",
}

func (o Offset) String() string {
	if o >= 0 && o < offsetCount {
		return offsetNames[o]
	}
	return "unknown"
}

// Offsets lists every named offset in blob order of the fixed fields.
func Offsets() []Offset {
	list := make([]Offset, offsetCount)
	for i := range list {
		list[i] = Offset(i)
	}
	return list
}

// BlockTemplate is a parsed block template.
//
// The template owns a private copy of the blob. Slices returned by it or held
// in its fields alias that copy and must not be modified; a template is
// read-only once Parse returns and may be shared between goroutines.
type BlockTemplate struct {
	params *chaincfg.Params
	blob   []byte

	offsets    [offsetCount]int
	offsetsSet uint16

	// Block header.
	MajorVersion uint64
	MinorVersion uint64
	Timestamp    uint64
	PrevID       chainhash.Hash

	// Wownero miner signature, empty for other chains.
	MinerSignature []byte
	Vote           uint16

	// Miner transaction prefix.
	TxVersion     uint64
	UnlockTime    uint64
	InputType     uint8
	Height        uint64
	NumOutputs    uint64
	Amount        uint64
	OutputType    uint8
	EphPublicKey  [KeySize]byte
	ViewTag       uint8
	CarrotViewTag [CarrotViewTagSize]byte
	JanusAnchor   [JanusAnchorSize]byte
	ExtraSize     uint64

	// Contents of the extra nonce and merge mining tag fields.
	TxExtraNonce     []byte
	TxMergeMiningTag []byte

	// Zephyr pricing fields that follow the extra field.
	PricingRecordHeight uint64
	AmountBurnt         uint64
	AmountMinted        uint64

	// Checkpoint is set for templates whose body was left unparsed. Such a
	// template has a prefix but no hashes and can not be hashed.
	Checkpoint bool

	// NumHashes counts the transactions besides the miner transaction.
	NumHashes uint64

	// FCMP++ curve tree commitment.
	FCMPTreeLayers uint8
	FCMPTreeRoot   chainhash.Hash

	// Hashes is the merkle leaf list. The miner transaction hash sits at
	// CoinbaseIndex; it is computed, the others are copied from the blob.
	Hashes        []chainhash.Hash
	CoinbaseIndex int
	RootHash      chainhash.Hash
	MinerTxProof  chainhash.MerkleProof
}

// Params returns the coin params the template was parsed with.
func (t *BlockTemplate) Params() *chaincfg.Params { return t.params }

// Coin returns the coin of the template.
func (t *BlockTemplate) Coin() chaincfg.Coin { return t.params.Coin }

// Blob returns the raw template.
func (t *BlockTemplate) Blob() []byte { return t.blob }

// Offset returns the position of o in the blob. The second result is false
// when the field was not met while parsing.
func (t *BlockTemplate) Offset(o Offset) (int, bool) {
	if o < 0 || o >= offsetCount || t.offsetsSet&(1<<uint(o)) == 0 {
		return 0, false
	}
	return t.offsets[o], true
}

// setOffset records o unless it is already known and reports whether it
// did.
func (t *BlockTemplate) setOffset(o Offset, pos int) bool {
	if t.offsetsSet&(1<<uint(o)) != 0 {
		return false
	}
	t.offsets[o] = pos
	t.offsetsSet |= 1 << uint(o)
	return true
}

// Field returns the bytes of the field that starts at o:
//   - NonceOffset: the 4 nonce bytes
//   - MinerTxPrefixOffset: the whole miner transaction prefix
//   - MinerTxPrefixEndOffset: everything after the prefix
//   - EphPublicKeyOffset, TxPubKeyOffset: the 32 key bytes
//   - TxExtraOffset: the extra field
//   - TxExtraNonceOffset, TxExtraMergeMiningTagOffset: the tag payload
//
// It returns nil for offsets the template does not have.
func (t *BlockTemplate) Field(o Offset) []byte {
	start, ok := t.Offset(o)
	if !ok {
		return nil
	}

	var size int
	switch o {
	case NonceOffset:
		size = NonceSize
	case MinerTxPrefixOffset:
		end, _ := t.Offset(MinerTxPrefixEndOffset)
		size = end - start
	case MinerTxPrefixEndOffset:
		size = len(t.blob) - start
	case EphPublicKeyOffset, TxPubKeyOffset:
		size = KeySize
	case TxExtraOffset:
		size = int(t.ExtraSize)
	case TxExtraNonceOffset:
		size = len(t.TxExtraNonce)
	case TxExtraMergeMiningTagOffset:
		size = len(t.TxMergeMiningTag)
	}

	end := start + size
	return t.blob[start:end:end]
}

// MinerTxPrefix returns the serialized prefix of the miner transaction.
func (t *BlockTemplate) MinerTxPrefix() []byte {
	return t.Field(MinerTxPrefixOffset)
}

// HasHashes reports whether the merkle tree of the template was built.
func (t *BlockTemplate) HasHashes() bool {
	return len(t.Hashes) > 0
}
