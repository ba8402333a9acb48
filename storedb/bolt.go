package storedb

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coreos/bbolt"
)

const dbFilePermission = 0600

var (
	accountBucket = []byte("account")
	balanceKey    = []byte("balance")

	byteOrder = binary.BigEndian
)

// Bolt is the default Store: a single bbolt file holding one account
// bucket with one integer key, updated inside its own transaction on
// every Credit/Debit/Balance call. Modelled on channeldb's DB.Open /
// single-file-per-process convention.
type Bolt struct {
	store *bbolt.DB
	path  string
}

// OpenBolt opens (creating if necessary) the balance store at dbPath,
// seeding a fresh account with opening balance opening.
func OpenBolt(dbPath string, opening int) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("storedb: create db dir: %w", err)
	}

	db, err := bbolt.Open(dbPath, dbFilePermission, nil)
	if err != nil {
		return nil, fmt.Errorf("storedb: open %s: %w", dbPath, err)
	}

	b := &Bolt{store: db, path: dbPath}
	if err := b.ensureInitialized(opening); err != nil {
		db.Close()
		return nil, err
	}

	return b, nil
}

// ensureInitialized creates the account bucket and seeds the balance key
// the first time the database is opened. On subsequent opens the
// existing balance is left untouched, so a restarted node resumes with
// whatever balance it last persisted.
func (b *Bolt) ensureInitialized(opening int) error {
	return b.store.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(accountBucket)
		if err != nil {
			return err
		}
		if bucket.Get(balanceKey) != nil {
			return nil
		}
		return putInt(bucket, balanceKey, opening)
	})
}

// Balance implements Store.
func (b *Bolt) Balance() (int, error) {
	var bal int
	err := b.store.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(accountBucket)
		v, err := getInt(bucket, balanceKey)
		if err != nil {
			return err
		}
		bal = v
		return nil
	})
	return bal, err
}

// Credit implements Store.
func (b *Bolt) Credit(amount int) error {
	return b.store.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(accountBucket)
		bal, err := getInt(bucket, balanceKey)
		if err != nil {
			return err
		}
		return putInt(bucket, balanceKey, bal+amount)
	})
}

// Debit implements Store.
func (b *Bolt) Debit(amount int) error {
	return b.store.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(accountBucket)
		bal, err := getInt(bucket, balanceKey)
		if err != nil {
			return err
		}
		if bal < amount {
			return ErrInsufficientFunds
		}
		return putInt(bucket, balanceKey, bal-amount)
	})
}

// Close implements Store.
func (b *Bolt) Close() error {
	return b.store.Close()
}

func putInt(bucket *bbolt.Bucket, key []byte, v int) error {
	buf := make([]byte, 8)
	byteOrder.PutUint64(buf, uint64(v))
	return bucket.Put(key, buf)
}

func getInt(bucket *bbolt.Bucket, key []byte) (int, error) {
	buf := bucket.Get(key)
	if buf == nil {
		return 0, fmt.Errorf("storedb: key %q not initialized", key)
	}
	return int(byteOrder.Uint64(buf)), nil
}
