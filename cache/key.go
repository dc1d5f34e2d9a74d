package cache

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Key builds a cache key by hashing input fields in order.
// Every field is length- or width-delimited so ("ab","c") and ("a","bc") differ.
type Key struct {
	d *xxhash.Digest
}

// NewKey starts a key in the given namespace.
func NewKey(namespace string) *Key {
	k := &Key{d: xxhash.New()}
	return k.String(namespace)
}

func (k *Key) String(s string) *Key {
	k.Int(int64(len(s)))
	_, _ = k.d.WriteString(s)
	return k
}

func (k *Key) Int(v int64) *Key {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, _ = k.d.Write(buf[:])
	return k
}

func (k *Key) Float(v float64) *Key { return k.Int(int64(math.Float64bits(v))) }

// Time hashes a point in time at second precision.
func (k *Key) Time(t time.Time) *Key { return k.Int(t.Unix()) }

func (k *Key) Bool(b bool) *Key {
	if b {
		return k.Int(1)
	}
	return k.Int(0)
}

// Sum returns the 64-bit key.
func (k *Key) Sum() uint64 { return k.d.Sum64() }
