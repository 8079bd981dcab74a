package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// Algorithm names a content digest function
type Algorithm string

const (
	AlgorithmMD5     Algorithm = "md5"
	AlgorithmSHA256  Algorithm = "sha256"
	AlgorithmBLAKE3  Algorithm = "blake3"
	AlgorithmBLAKE2b Algorithm = "blake2b"
)

// DefaultAlgorithm is used when no algorithm is configured
const DefaultAlgorithm = AlgorithmBLAKE3

// ChunkSize is the size of each streamed read (64KB)
const ChunkSize = 64 * 1024

var chunkPool = sync.Pool{
	New: func() any {
		buf := make([]byte, ChunkSize)
		return &buf
	},
}

// Algorithms returns the supported algorithms
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmBLAKE3, AlgorithmBLAKE2b, AlgorithmSHA256, AlgorithmMD5}
}

func newHasher(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case AlgorithmMD5:
		return md5.New(), nil
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmBLAKE3:
		return blake3.New(), nil
	case AlgorithmBLAKE2b:
		return blake2b.New256(nil)
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", algorithm)
	}
}

// Compute streams reader through the digest in fixed-size chunks and
// returns the hex encoded sum
func Compute(algorithm Algorithm, reader io.Reader) (string, error) {
	hasher, err := newHasher(algorithm)
	if err != nil {
		return "", err
	}

	buf := chunkPool.Get().(*[]byte)
	defer chunkPool.Put(buf)

	if _, err := io.CopyBuffer(hasher, onlyReader{reader}, *buf); err != nil {
		return "", fmt.Errorf("failed to compute %s: %w", algorithm, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ValidateAlgorithm checks if the algorithm is supported
func ValidateAlgorithm(algorithm Algorithm) error {
	switch algorithm {
	case AlgorithmMD5, AlgorithmSHA256, AlgorithmBLAKE3, AlgorithmBLAKE2b:
		return nil
	default:
		return fmt.Errorf("unsupported algorithm: %s", algorithm)
	}
}

// onlyReader hides WriterTo so CopyBuffer always uses the chunk buffer
type onlyReader struct {
	r io.Reader
}

func (o onlyReader) Read(p []byte) (int, error) {
	return o.r.Read(p)
}
