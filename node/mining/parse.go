// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/jaxminer/types/chaincfg"
	"gitlab.com/jaxnet/jaxminer/types/chainhash"
	"gitlab.com/jaxnet/jaxminer/types/wire"
)

// Tags of the tx extra field that a miner transaction may carry.
const (
	extraTagPubKey      = 0x01
	extraTagNonce       = 0x02
	extraTagMergeMining = 0x03
)

// ParseHex decodes a hex encoded template and parses it.
func ParseHex(text string, params *chaincfg.Params, wantHashes bool) (*BlockTemplate, error) {
	if params == nil {
		return nil, errors.Wrap(chaincfg.ErrUnknownCoin, "nil coin params")
	}
	if len(text) < MinSize*2 {
		return nil, truncated("template hex is %d chars, minimum is %d", len(text), MinSize*2)
	}

	blob, err := hex.DecodeString(text)
	if err != nil {
		err = violation("template is not hex: %v", err)
		log.Debug().Err(err).Str("coin", params.Name).Msg("block template rejected")
		return nil, err
	}

	return Parse(blob, params, wantHashes)
}

// Parse validates blob as a block template of the coin described by params.
//
// With wantHashes the transaction hashes are read and the merkle tree of the
// block is built, which is required for hashing. Without it parsing stops
// after the transaction count.
//
// Every failure wraps ErrTruncatedInput or ErrStructuralViolation, and no
// template is returned alongside an error.
func Parse(blob []byte, params *chaincfg.Params, wantHashes bool) (*BlockTemplate, error) {
	if params == nil {
		return nil, errors.Wrap(chaincfg.ErrUnknownCoin, "nil coin params")
	}

	tmpl, err := parse(blob, params, wantHashes)
	if err != nil {
		log.Debug().Err(err).
			Str("coin", params.Name).
			Int("size", len(blob)).
			Msg("block template rejected")
		return nil, err
	}

	log.Trace().
		Str("coin", params.Name).
		Uint64("height", tmpl.Height).
		Uint64("hashes", tmpl.NumHashes).
		Bool("checkpoint", tmpl.Checkpoint).
		Msg("block template parsed")
	return tmpl, nil
}

// templateReader wraps a BlobReader and keeps the first error so that runs
// of reads can be checked once.
type templateReader struct {
	r   *wire.BlobReader
	err error
}

func (tr *templateReader) index() int { return tr.r.Index() }

func (tr *templateReader) u8() uint8 {
	if tr.err != nil {
		return 0
	}
	v, err := tr.r.ReadUint8()
	tr.err = err
	return v
}

func (tr *templateReader) u16() uint16 {
	if tr.err != nil {
		return 0
	}
	v, err := tr.r.ReadUint16()
	tr.err = err
	return v
}

func (tr *templateReader) varInt() uint64 {
	if tr.err != nil {
		return 0
	}
	v, err := tr.r.ReadVarInt()
	tr.err = err
	return v
}

func (tr *templateReader) span(n uint64) []byte {
	if tr.err != nil {
		return nil
	}
	v, err := tr.r.ReadSpan(n)
	tr.err = err
	return v
}

func (tr *templateReader) read(dst []byte) {
	if tr.err != nil {
		return
	}
	tr.err = tr.r.ReadBytes(dst)
}

func (tr *templateReader) skip(n uint64) {
	if tr.err != nil {
		return
	}
	tr.err = tr.r.Skip(n)
}

func parse(blob []byte, params *chaincfg.Params, wantHashes bool) (*BlockTemplate, error) {
	if len(blob) < MinSize {
		return nil, truncated("template is %d bytes, minimum is %d", len(blob), MinSize)
	}

	t := &BlockTemplate{
		params: params,
		blob:   append([]byte(nil), blob...),
	}
	ar := &templateReader{r: wire.NewBlobReader(t.blob)}

	// Block header
	t.MajorVersion = ar.varInt()
	t.MinorVersion = ar.varInt()
	t.Timestamp = ar.varInt()
	ar.read(t.PrevID[:])

	t.setOffset(NonceOffset, ar.index())
	ar.skip(NonceSize)

	if params.HasMinerSignature(t.MajorVersion) {
		t.MinerSignature = ar.span(SignatureSize)
		t.Vote = ar.u16()
	}
	if params.HasPricingRecord() {
		ar.skip(uint64(params.PricingRecordSize))
	}
	if ar.err != nil {
		return nil, ar.err
	}

	// Miner transaction prefix
	t.setOffset(MinerTxPrefixOffset, ar.index())

	t.TxVersion = ar.varInt()
	if !params.DeferredUnlockTime {
		t.UnlockTime = ar.varInt()
	}

	numInputs := ar.varInt()
	if ar.err != nil {
		return nil, ar.err
	}
	if numInputs != 1 {
		return nil, violation("miner tx has %d inputs", numInputs)
	}

	t.InputType = ar.u8()
	if ar.err != nil {
		return nil, ar.err
	}
	if t.InputType != chaincfg.InputTypeGen {
		return nil, violation("miner tx input type is %#x", t.InputType)
	}

	t.Height = ar.varInt()
	t.NumOutputs = ar.varInt()
	if ar.err != nil {
		return nil, ar.err
	}
	if params.HasPricingRecord() {
		if t.NumOutputs < 2 {
			return nil, violation("miner tx has %d outputs, want at least 2", t.NumOutputs)
		}
	} else if t.NumOutputs != 1 {
		return nil, violation("miner tx has %d outputs", t.NumOutputs)
	}

	t.Amount = ar.varInt()
	t.OutputType = ar.u8()
	if ar.err != nil {
		return nil, ar.err
	}

	carrot := params.IsCarrot(t.MajorVersion)
	switch {
	case carrot && t.OutputType == chaincfg.OutputTypeCarrot:
	case t.OutputType == chaincfg.OutputTypeKey, t.OutputType == chaincfg.OutputTypeTaggedKey:
	default:
		return nil, violation("miner tx output type %d at major version %d", t.OutputType, t.MajorVersion)
	}

	t.setOffset(EphPublicKeyOffset, ar.index())
	ar.read(t.EphPublicKey[:])

	if carrot {
		ar.read(t.CarrotViewTag[:])
		ar.read(t.JanusAnchor[:])
	}

	if params.HasPricingRecord() {
		if err := t.readAssetOutputs(ar); err != nil {
			return nil, err
		}
	} else if t.OutputType == chaincfg.OutputTypeTaggedKey {
		t.ViewTag = ar.u8()
	}

	if params.DeferredUnlockTime {
		t.UnlockTime = ar.varInt()
	}

	t.ExtraSize = ar.varInt()
	if ar.err != nil {
		return nil, ar.err
	}

	t.setOffset(TxExtraOffset, ar.index())
	extra := ar.span(t.ExtraSize)
	if ar.err != nil {
		return nil, ar.err
	}
	if err := t.parseExtra(extra); err != nil {
		return nil, err
	}

	if params.HasPricingRecord() {
		t.PricingRecordHeight = ar.varInt()
		t.AmountBurnt = ar.varInt()
		t.AmountMinted = ar.varInt()
		if ar.err != nil {
			return nil, ar.err
		}
	}

	prefixEnd := ar.index()
	t.setOffset(MinerTxPrefixEndOffset, prefixEnd)

	if params.IsCheckpointHeight(t.Height) {
		t.Checkpoint = true
		return t, nil
	}

	// RCT signatures, empty in a miner transaction
	rctType := ar.u8()
	if ar.err != nil {
		return nil, ar.err
	}
	if rctType != 0 {
		return nil, violation("miner tx rct type is %d", rctType)
	}
	if ar.index() != prefixEnd+1 || t.blob[prefixEnd] != 0 {
		return nil, violation("miner tx must end with a single zero byte after the prefix")
	}

	t.NumHashes = ar.varInt()
	if ar.err != nil {
		return nil, ar.err
	}
	if !wantHashes {
		return t, nil
	}

	if t.NumHashes > uint64(ar.r.Len()/chainhash.HashSize) {
		return nil, truncated("template declares %d hashes, only %d bytes left", t.NumHashes, ar.r.Len())
	}

	if err := t.readHashes(ar, carrot); err != nil {
		return nil, err
	}

	return t, nil
}

// readAssetOutputs reads the asset type and view tag of the first output and
// every further output of a pricing record chain.
func (t *BlockTemplate) readAssetOutputs(ar *templateReader) error {
	if ar.err != nil {
		return ar.err
	}
	if t.OutputType != chaincfg.OutputTypeKey {
		return violation("asset output type is %d", t.OutputType)
	}

	ar.skip(ar.varInt())
	t.ViewTag = ar.u8()

	for k := uint64(1); k < t.NumOutputs; k++ {
		ar.varInt() // amount

		outputType := ar.u8()
		if ar.err != nil {
			return ar.err
		}
		if outputType != chaincfg.OutputTypeKey {
			return violation("asset output %d type is %d", k, outputType)
		}

		ar.skip(KeySize)
		ar.skip(ar.varInt())
		ar.u8() // view tag
	}

	return ar.err
}

// parseExtra walks the tx extra field and records the offsets of the public
// key, extra nonce and merge mining tag. Repeated tags keep the first offset.
func (t *BlockTemplate) parseExtra(extra []byte) error {
	base, _ := t.Offset(TxExtraOffset)
	r := wire.NewBlobReader(extra)

	for r.Len() > 0 {
		tagOffset := r.Index()
		tag, err := r.ReadVarInt()
		if err != nil {
			return errors.Wrap(err, "tx extra tag")
		}

		switch tag {
		case extraTagPubKey:
			t.setOffset(TxPubKeyOffset, base+r.Index())
			if err := r.Skip(KeySize); err != nil {
				return errors.Wrap(err, "tx extra pubkey")
			}

		case extraTagNonce, extraTagMergeMining:
			size, err := r.ReadVarInt()
			if err != nil {
				return errors.Wrapf(err, "tx extra tag %d size", tag)
			}

			o, dst := TxExtraNonceOffset, &t.TxExtraNonce
			if tag == extraTagMergeMining {
				o, dst = TxExtraMergeMiningTagOffset, &t.TxMergeMiningTag
			}

			first := t.setOffset(o, base+r.Index())
			data, err := r.ReadSpan(size)
			if err != nil {
				return errors.Wrapf(err, "tx extra tag %d", tag)
			}
			if first {
				*dst = data
			}

		default:
			return violation("unsupported tx extra tag %d at offset %d", tag, base+tagOffset)
		}
	}

	return nil
}

// readHashes fills the merkle leaves and builds the tree. FCMP++ blocks put
// the tree layer count and tree root in front of the miner transaction hash:
//
//	0   tree layers followed by 31 zero bytes
//	1   tree root
//	2   miner transaction hash
//	3.. other transaction hashes
//
// Earlier blocks start with the miner transaction hash.
func (t *BlockTemplate) readHashes(ar *templateReader, carrot bool) error {
	if carrot {
		t.CoinbaseIndex = 2
	}

	t.Hashes = make([]chainhash.Hash, t.CoinbaseIndex+int(t.NumHashes)+1)
	t.Hashes[t.CoinbaseIndex] = CalculateMinerTxHash(t.MinerTxPrefix())

	for i := t.CoinbaseIndex + 1; i < len(t.Hashes); i++ {
		ar.read(t.Hashes[i][:])
	}

	if carrot {
		t.FCMPTreeLayers = ar.u8()
		ar.read(t.FCMPTreeRoot[:])

		t.Hashes[0][0] = t.FCMPTreeLayers
		t.Hashes[1] = t.FCMPTreeRoot
	}
	if ar.err != nil {
		t.Hashes = nil
		return ar.err
	}

	root, proof, err := chainhash.BuildMerkleTreeProof(t.Hashes, t.CoinbaseIndex)
	if err != nil {
		return err
	}
	t.RootHash = root
	t.MinerTxProof = proof

	return nil
}
