package cache

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// KeySerializer builds a cache key from a namespace, a method name and the
// call arguments. Equal arguments must always produce equal keys, and every
// key must start with NamespacePrefix(namespace) so PurgePrefix can find it.
type KeySerializer interface {
	SerializeKey(namespace, method string, args ...any) (string, error)
}

// NamespacePrefix is the prefix shared by every key in namespace.
func NamespacePrefix(namespace string) string {
	return namespace + KeySeparator
}

// hashKeySerializer fingerprints arguments with hashstructure, which ignores
// map ordering and normalizes integer widths.
type hashKeySerializer struct{}

// NewDefaultKeySerializer returns the hashstructure based serializer.
// Keys are stable across runs of the same binary.
func NewDefaultKeySerializer() KeySerializer {
	return hashKeySerializer{}
}

func (hashKeySerializer) SerializeKey(namespace, method string, args ...any) (string, error) {
	h, err := hashstructure.Hash(args, hashstructure.FormatV2, nil)
	if err != nil {
		return "", err
	}
	return joinKey(namespace, method, len(args), h), nil
}

// xxhashKeySerializer encodes arguments as msgpack with sorted map keys and
// hashes the bytes with xxhash. The encoding does not depend on Go type
// layout, so keys can be shared by services written against the same wire
// shape.
type xxhashKeySerializer struct{}

// NewXXHashKeySerializer returns the msgpack + xxhash serializer.
func NewXXHashKeySerializer() KeySerializer {
	return xxhashKeySerializer{}
}

func (xxhashKeySerializer) SerializeKey(namespace, method string, args ...any) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(args); err != nil {
		return "", err
	}
	return joinKey(namespace, method, len(args), xxhash.Sum64(buf.Bytes())), nil
}

func joinKey(namespace, method string, argc int, h uint64) string {
	var b strings.Builder
	b.Grow(len(namespace) + len(method) + 24)
	b.WriteString(NamespacePrefix(namespace))
	b.WriteString(method)
	b.WriteString(KeySeparator)
	b.WriteByte('a')
	b.WriteString(strconv.Itoa(argc))
	b.WriteByte('h')
	b.WriteString(strconv.FormatUint(h, 16))
	return b.String()
}
