// Package badger implements the omap contract on BadgerDB running in
// in-memory mode.
//
// Badger keeps keys in sorted order natively, so listings and range
// deletions are iterator scans instead of whole-map sorts. The database is
// opened with InMemory(true): nothing touches disk and nothing survives
// Close, matching the single-process memory model of the store.
package badger

import (
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/radosmem/pkg/omap"
	"github.com/marmos91/radosmem/pkg/rados"
)

// Key schema. Locators are length-prefixed so namespaces and object ids
// containing the separator cannot collide:
//
//	o/<len(ns)>/<ns>/<len(oid)>/<oid>/k/<key>   omap entries
//	o/<len(ns)>/<ns>/<len(oid)>/<oid>/h         header blob
const (
	entryTag  = 'k'
	headerTag = 'h'
)

// BadgerStore implements omap.Store on an in-memory BadgerDB.
//
// Thread Safety:
// Badger transactions provide snapshot isolation; no additional locking is
// required here. The engine serializes per-object mutations above this
// layer.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens an in-memory Badger database for omap storage.
func NewBadgerStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

var _ omap.Store = (*BadgerStore)(nil)

func locPrefix(loc rados.Locator) []byte {
	return fmt.Appendf(nil, "o/%d/%s/%d/%s/", len(loc.Namespace), loc.Namespace, len(loc.OID), loc.OID)
}

func entryKey(loc rados.Locator, key string) []byte {
	return append(append(locPrefix(loc), entryTag, '/'), key...)
}

func headerKey(loc rados.Locator) []byte {
	return append(locPrefix(loc), headerTag)
}

func (s *BadgerStore) List(loc rados.Locator, startAfter, prefix string, max uint64) ([]omap.Entry, bool, error) {
	var entries []omap.Entry
	more := false

	err := s.db.View(func(txn *badger.Txn) error {
		scan := entryKey(loc, "")

		opts := badger.DefaultIteratorOptions
		opts.Prefix = scan
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek strictly past the start-after key. Appending a zero byte
		// lands on the first key greater than it.
		seek := scan
		if startAfter != "" {
			seek = append(entryKey(loc, startAfter), 0)
		}

		for it.Seek(seek); it.ValidForPrefix(scan); it.Next() {
			if max == 0 {
				more = true
				return nil
			}
			key := string(it.Item().Key()[len(scan):])
			if prefix != "" && !strings.HasPrefix(key, prefix) {
				continue
			}
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			entries = append(entries, omap.Entry{Key: key, Value: val})
			max--
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("omap list failed: %w", err)
	}
	return entries, more, nil
}

func (s *BadgerStore) GetByKeys(loc rados.Locator, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte)

	err := s.db.View(func(txn *badger.Txn) error {
		for _, k := range keys {
			item, err := txn.Get(entryKey(loc, k))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[k] = val
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("omap get failed: %w", err)
	}
	return out, nil
}

func (s *BadgerStore) Set(loc rados.Locator, vals map[string][]byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for k, v := range vals {
			val := make([]byte, len(v))
			copy(val, v)
			if err := txn.Set(entryKey(loc, k), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("omap set failed: %w", err)
	}
	return nil
}

func (s *BadgerStore) RemoveKeys(loc rados.Locator, keys []string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(entryKey(loc, k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("omap remove keys failed: %w", err)
	}
	return nil
}

func (s *BadgerStore) RemoveRange(loc rados.Locator, begin, end string) error {
	return s.deleteScan(loc, func(key string) bool {
		return key >= begin && key < end
	})
}

func (s *BadgerStore) Clear(loc rados.Locator) error {
	return s.deleteScan(loc, func(string) bool { return true })
}

// deleteScan collects matching entry keys under a read transaction, then
// deletes them in one update. Collect-then-delete avoids mutating the
// iterator's snapshot mid-scan.
func (s *BadgerStore) deleteScan(loc rados.Locator, match func(key string) bool) error {
	scan := entryKey(loc, "")

	var doomed [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = scan
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(scan); it.ValidForPrefix(scan); it.Next() {
			key := it.Item().Key()
			if match(string(key[len(scan):])) {
				doomed = append(doomed, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("omap range scan failed: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, k := range doomed {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("omap range delete failed: %w", err)
	}
	return nil
}

func (s *BadgerStore) Header(loc rados.Locator) ([]byte, error) {
	var header []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(headerKey(loc))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		header, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("omap header read failed: %w", err)
	}
	return header, nil
}

func (s *BadgerStore) SetHeader(loc rados.Locator, header []byte) error {
	val := make([]byte, len(header))
	copy(val, header)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(headerKey(loc), val)
	})
	if err != nil {
		return fmt.Errorf("omap header write failed: %w", err)
	}
	return nil
}

func (s *BadgerStore) Drop(loc rados.Locator) error {
	if err := s.Clear(loc); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(headerKey(loc))
	})
	if err != nil {
		return fmt.Errorf("omap drop failed: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
