// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tmplstore

import (
	"github.com/btcsuite/goleveldb/leveldb"
	"github.com/btcsuite/goleveldb/leveldb/opt"
	"github.com/btcsuite/goleveldb/leveldb/util"
	"github.com/pkg/errors"
)

type levelDBStore struct {
	db *leveldb.DB
}

// LevelDBStore opens or creates a leveldb archive in path.
func LevelDBStore(path string) (Store, error) {
	opts := &opt.Options{
		Compression: opt.SnappyCompression,
	}

	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open leveldb store at %s", path)
	}

	log.Debug().Str("path", path).Msg("leveldb template store opened")
	return &levelDBStore{db: db}, nil
}

func (l *levelDBStore) Close() error {
	return l.db.Close()
}

func (l *levelDBStore) Put(rec *Record) (string, error) {
	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}

	key := recordKey(rec)
	if err := l.db.Put(key, data, nil); err != nil {
		return "", errors.Wrap(err, "can't save template")
	}
	return keyString(key), nil
}

func (l *levelDBStore) Get(key string) (*Record, error) {
	k, err := dbKey(key)
	if err != nil {
		return nil, err
	}

	data, err := l.db.Get(k, nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrap(ErrNotFound, key)
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't load template")
	}

	return decodeRecord(data)
}

func (l *levelDBStore) Keys() (res []string, err error) {
	iter := l.db.NewIterator(util.BytesPrefix([]byte{recordPrefix}), nil)
	defer iter.Release()

	for iter.Next() {
		res = append(res, keyString(iter.Key()))
	}
	return res, iter.Error()
}

func (l *levelDBStore) Count() (int, error) {
	keys, err := l.Keys()
	return len(keys), err
}
