// Package store persists the ledger's accounts between CLI invocations.
package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"fixedsale.dev/node/runtime"
)

var (
	bucketAccounts = []byte("accounts_by_pubkey")
	bucketMeta     = []byte("node_meta")
)

type DB struct {
	dir string
	db  *bolt.DB
}

func Open(datadir string) (*DB, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	if err := os.MkdirAll(datadir, 0o750); err != nil {
		return nil, err
	}

	path := filepath.Join(datadir, "ledger.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}

	d := &DB{dir: datadir, db: bdb}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketAccounts, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Dir() string { return d.dir }

// LoadAccounts reads the full committed account set.
func (d *DB) LoadAccounts() (map[runtime.Pubkey]*runtime.Account, error) {
	out := make(map[runtime.Pubkey]*runtime.Account)
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAccounts).ForEach(func(k, v []byte) error {
			if len(k) != 32 {
				return fmt.Errorf("accounts: bad key length %d", len(k))
			}
			var key runtime.Pubkey
			copy(key[:], k)
			acct, err := decodeAccount(v)
			if err != nil {
				return err
			}
			out[key] = acct
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveAccounts replaces the committed account set wholesale. The runtime
// already applied the transaction atomically; this just persists the result.
func (d *DB) SaveAccounts(accounts map[runtime.Pubkey]*runtime.Account) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketAccounts); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketAccounts)
		if err != nil {
			return err
		}
		for key, acct := range accounts {
			if err := b.Put(key[:], encodeAccount(acct)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) PutMeta(key string, val []byte) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put([]byte(key), val)
	})
}

func (d *DB) GetMeta(key string) ([]byte, bool, error) {
	var out []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get([]byte(key))
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

// Layout:
// lamports u64le | owner 32 | executable u8 | data_len u32le | data
func encodeAccount(a *runtime.Account) []byte {
	out := make([]byte, 0, 8+32+1+4+len(a.Data))
	var u64 [8]byte
	binary.LittleEndian.PutUint64(u64[:], a.Lamports)
	out = append(out, u64[:]...)
	out = append(out, a.Owner[:]...)
	if a.Executable {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(a.Data)))
	out = append(out, u32[:]...)
	out = append(out, a.Data...)
	return out
}

func decodeAccount(b []byte) (*runtime.Account, error) {
	if len(b) < 8+32+1+4 {
		return nil, fmt.Errorf("account: truncated")
	}
	a := &runtime.Account{
		Lamports:   binary.LittleEndian.Uint64(b[0:8]),
		Executable: b[40] == 1,
	}
	copy(a.Owner[:], b[8:40])
	dataLen := int(binary.LittleEndian.Uint32(b[41:45]))
	if 45+dataLen != len(b) {
		return nil, fmt.Errorf("account: bad data length")
	}
	a.Data = append([]byte(nil), b[45:]...)
	return a, nil
}
