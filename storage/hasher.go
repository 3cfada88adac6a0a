package storage

import (
	"fmt"
	"slices"
	"sort"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Hasher turns an encoded key into the bytes stored under a map prefix.
type Hasher interface {
	Name() string
	Hash(key []byte) []byte
	// Transparent reports whether the original key can be recovered from
	// the hashed form.
	Transparent() bool
}

type hasher struct {
	name        string
	transparent bool
	hash        func([]byte) []byte
}

func (h hasher) Name() string           { return h.name }
func (h hasher) Hash(key []byte) []byte { return h.hash(key) }
func (h hasher) Transparent() bool      { return h.transparent }

var (
	// Identity stores the encoded key as is.
	Identity Hasher = hasher{"identity", true, func(b []byte) []byte { return slices.Clone(b) }}

	Blake2_128 Hasher = hasher{"blake2_128", false, blake2b128}

	Blake2_256 Hasher = hasher{"blake2_256", false, func(b []byte) []byte {
		sum := blake2b.Sum256(b)
		return sum[:]
	}}

	// Blake2_128Concat appends the key to its 128-bit hash, so entries stay
	// evenly spread and the key remains readable.
	Blake2_128Concat Hasher = hasher{"blake2_128_concat", true, func(b []byte) []byte {
		return append(blake2b128(b), b...)
	}}

	Blake3_256 Hasher = hasher{"blake3_256", false, func(b []byte) []byte {
		sum := blake3.Sum256(b)
		return sum[:]
	}}

	Keccak256 Hasher = hasher{"keccak_256", false, func(b []byte) []byte {
		h := sha3.NewLegacyKeccak256()
		h.Write(b)
		return h.Sum(nil)
	}}
)

var hashers = map[string]Hasher{}

func init() {
	for _, h := range []Hasher{Identity, Blake2_128, Blake2_256, Blake2_128Concat, Blake3_256, Keccak256} {
		hashers[h.Name()] = h
	}
}

// HasherByName returns a built-in hasher.
func HasherByName(name string) (Hasher, error) {
	h, ok := hashers[name]
	if !ok {
		return nil, fmt.Errorf("storage: unknown hasher %q, have %v", name, HasherNames())
	}
	return h, nil
}

// HasherNames lists the built-in hashers in sorted order.
func HasherNames() []string {
	names := make([]string, 0, len(hashers))
	for name := range hashers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func blake2b128(b []byte) []byte {
	h, err := blake2b.New(16, nil)
	if err != nil {
		panic(err)
	}
	h.Write(b)
	return h.Sum(nil)
}
