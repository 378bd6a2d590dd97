// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tmplstore

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

type memoryStore struct {
	sync.RWMutex
	records map[string]*Record
	closed  bool
}

// MemoryStore returns a store that keeps records in a map.
func MemoryStore() Store {
	return &memoryStore{
		records: make(map[string]*Record),
	}
}

var errClosed = errors.New("template store is closed")

func (d *memoryStore) Put(rec *Record) (string, error) {
	key := rec.Key()
	cp := *rec
	cp.Blob = append([]byte(nil), rec.Blob...)

	d.Lock()
	defer d.Unlock()
	if d.closed {
		return "", errClosed
	}
	d.records[key] = &cp
	return key, nil
}

func (d *memoryStore) Get(key string) (*Record, error) {
	d.RLock()
	defer d.RUnlock()
	if d.closed {
		return nil, errClosed
	}

	rec, ok := d.records[key]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, key)
	}
	cp := *rec
	cp.Blob = append([]byte(nil), rec.Blob...)
	return &cp, nil
}

func (d *memoryStore) Keys() (res []string, err error) {
	d.RLock()
	defer d.RUnlock()
	if d.closed {
		return nil, errClosed
	}

	for key := range d.records {
		res = append(res, key)
	}
	sort.Strings(res)
	return res, nil
}

func (d *memoryStore) Count() (int, error) {
	d.RLock()
	defer d.RUnlock()
	if d.closed {
		return 0, errClosed
	}
	return len(d.records), nil
}

func (d *memoryStore) Close() error {
	d.Lock()
	d.closed = true
	d.records = nil
	d.Unlock()
	return nil
}
