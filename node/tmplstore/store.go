// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tmplstore archives raw block templates so they can be replayed
// through the parser later.
package tmplstore

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
)

const (
	BackendMemory  = "memory"
	BackendBadger  = "badger"
	BackendLevelDB = "leveldb"
)

var (
	// ErrNotFound is returned when no template is stored under a key.
	ErrNotFound = errors.New("template not found")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown template store backend")
)

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendMemory, BackendBadger, BackendLevelDB}
}

// IsPersistent reports whether backend keeps data on disk.
func IsPersistent(backend string) bool {
	return backend == BackendBadger || backend == BackendLevelDB
}

// Record is an archived template.
type Record struct {
	Coin       string    `json:"coin"`
	Height     uint64    `json:"height"`
	ReceivedAt time.Time `json:"received_at"`
	Blob       []byte    `json:"blob"`
}

// Key returns the content key of the record: the hex SHA-256 of the blob.
func (r *Record) Key() string {
	sum := sha256.Sum256(r.Blob)
	return hex.EncodeToString(sum[:])
}

// Store is an archive of templates keyed by content. Implementations are
// safe for concurrent use.
type Store interface {
	// Put stores rec and returns its key. Storing the same blob twice
	// overwrites the first record.
	Put(rec *Record) (string, error)
	Get(key string) (*Record, error)
	// Keys returns all keys in ascending order.
	Keys() ([]string, error)
	Count() (int, error)
	Close() error
}

// Open opens a store. path is ignored by the memory backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return MemoryStore(), nil
	case BackendBadger:
		return BadgerStore(path)
	case BackendLevelDB:
		return LevelDBStore(path)
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", backend)
	}
}

// Persistent backends share one key layout: a prefix byte followed by the
// raw digest.
const recordPrefix = 0x01

func dbKey(key string) ([]byte, error) {
	raw, err := hex.DecodeString(key)
	if err != nil || len(raw) != sha256.Size {
		return nil, errors.Wrapf(ErrNotFound, "malformed key %q", key)
	}
	return append([]byte{recordPrefix}, raw...), nil
}

func recordKey(rec *Record) []byte {
	sum := sha256.Sum256(rec.Blob)
	return append([]byte{recordPrefix}, sum[:]...)
}

func keyString(dbKey []byte) string {
	return hex.EncodeToString(dbKey[1:])
}

func encodeRecord(rec *Record) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeRecord(data []byte) (*Record, error) {
	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, errors.Wrap(err, "can't decode template record")
	}
	return rec, nil
}
