package geohash

import (
	"crypto"
	_ "crypto/md5" // registers crypto.MD5
	"encoding/hex"
	"hash"
	"sync"

	"geohasher/internal/domain"
)

const (
	// DigestSize is the MD5 output size in bytes.
	DigestSize = 16
	// HalfHexLen is the number of hex characters in one half of a digest.
	HalfHexLen = DigestSize * 2 / 2
)

// Digest is a 128-bit MD5 sum of a canonical key.
type Digest [DigestSize]byte

// md5Pool hands out MD5 contexts. A context belongs to exactly one Sum call
// between acquire and release, so concurrent callers never share state.
var md5Pool = sync.Pool{
	New: func() interface{} {
		return crypto.MD5.New()
	},
}

func acquireMD5() (hash.Hash, error) {
	if !crypto.MD5.Available() {
		return nil, domain.ErrEngineInitFailed
	}
	h := md5Pool.Get().(hash.Hash)
	h.Reset()
	return h, nil
}

func releaseMD5(h hash.Hash) {
	if h == nil {
		return
	}
	h.Reset()
	md5Pool.Put(h)
}

// Sum hashes the UTF-8 bytes of key. Safe for concurrent use.
func Sum(key string) (Digest, error) {
	h, err := acquireMD5()
	if err != nil {
		return Digest{}, err
	}
	defer releaseMD5(h)

	h.Write([]byte(key))

	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// Hex returns the 32 lowercase hex characters of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// High returns the first 16 hex characters, which drive the latitude offset.
func (d Digest) High() string {
	return d.Hex()[:HalfHexLen]
}

// Low returns the last 16 hex characters, which drive the longitude offset.
func (d Digest) Low() string {
	return d.Hex()[HalfHexLen:]
}
