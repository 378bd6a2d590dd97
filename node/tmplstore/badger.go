// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tmplstore

import (
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type badgerStore struct {
	db *badger.DB
}

// BadgerStore opens or creates a badger archive in path.
func BadgerStore(path string) (Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{log: log})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open badger store at %s", path)
	}

	log.Debug().Str("path", path).Msg("badger template store opened")
	return &badgerStore{db: db}, nil
}

func (b *badgerStore) Close() error {
	return b.db.Close()
}

func (b *badgerStore) Put(rec *Record) (string, error) {
	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}

	key := recordKey(rec)
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return "", errors.Wrap(err, "can't save template")
	}
	return keyString(key), nil
}

func (b *badgerStore) Get(key string) (*Record, error) {
	k, err := dbKey(key)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrap(ErrNotFound, key)
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't load template")
	}

	return decodeRecord(data)
}

func (b *badgerStore) Keys() (res []string, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{recordPrefix}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			res = append(res, keyString(it.Item().Key()))
		}
		return nil
	})
	return res, err
}

func (b *badgerStore) Count() (int, error) {
	keys, err := b.Keys()
	return len(keys), err
}

// badgerLogger routes badger's own logging into zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	l.log.Error().Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	l.log.Warn().Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (l badgerLogger) Infof(f string, v ...interface{}) {
	l.log.Debug().Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (l badgerLogger) Debugf(f string, v ...interface{}) {
	l.log.Trace().Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}
