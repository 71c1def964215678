package graph

import (
	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash fingerprints data with a fixed-key 64-bit HighwayHash.
func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}

// FuncOf derives the stable identity of a function from its path name. The
// same path always fingerprints to the same Func across runs.
func FuncOf(path string) (Func, error) {
	hash, err := Hash([]byte(path))
	if err != nil {
		return Func{}, err
	}
	return Func{Hash: hash, Name: path}, nil
}
