package checksum_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeffanddom/organizex/internal/checksum"
)

func TestCompute(t *testing.T) {
	known := []struct {
		algorithm checksum.Algorithm
		expected  string
	}{
		{checksum.AlgorithmMD5, "5eb63bbbe01eeed093cb22bb8f5acdc3"},
		{checksum.AlgorithmSHA256, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
		{checksum.AlgorithmBLAKE3, "d74981efa70a0c880b8d8c1985d075dbcbf679b99a5f9914e5aaf96b831a9e24"},
	}

	for _, tc := range known {
		t.Run("computes known "+string(tc.algorithm)+" digest", func(t *testing.T) {
			digest, err := checksum.Compute(tc.algorithm, strings.NewReader("hello world"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if digest != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, digest)
			}
		})
	}

	t.Run("computes 256-bit blake2b digest", func(t *testing.T) {
		digest, err := checksum.Compute(checksum.AlgorithmBLAKE2b, strings.NewReader("hello world"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(digest) != 64 {
			t.Errorf("expected 64 hex characters, got %d", len(digest))
		}
	})

	t.Run("chunked reads match a single read", func(t *testing.T) {
		// spans several chunks and ends mid-chunk
		data := bytes.Repeat([]byte("organizex"), checksum.ChunkSize/3)

		whole, err := checksum.Compute(checksum.AlgorithmSHA256, bytes.NewReader(data))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		trickled, err := checksum.Compute(checksum.AlgorithmSHA256, &trickleReader{data: data, step: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if whole != trickled {
			t.Errorf("expected %s, got %s", whole, trickled)
		}
	})

	t.Run("identical content yields identical digests", func(t *testing.T) {
		a, _ := checksum.Compute(checksum.DefaultAlgorithm, strings.NewReader("same bytes"))
		b, _ := checksum.Compute(checksum.DefaultAlgorithm, strings.NewReader("same bytes"))
		c, _ := checksum.Compute(checksum.DefaultAlgorithm, strings.NewReader("other bytes"))
		if a != b {
			t.Error("expected equal digests for equal content")
		}
		if a == c {
			t.Error("expected different digests for different content")
		}
	})

	t.Run("returns error for unsupported algorithm", func(t *testing.T) {
		_, err := checksum.Compute("crc32", strings.NewReader("x"))
		if err == nil {
			t.Fatal("expected error for unsupported algorithm")
		}
		if !strings.Contains(err.Error(), "unsupported algorithm") {
			t.Errorf("unexpected error message: %v", err)
		}
	})
}

func TestValidateAlgorithm(t *testing.T) {
	for _, algorithm := range checksum.Algorithms() {
		if err := checksum.ValidateAlgorithm(algorithm); err != nil {
			t.Errorf("expected %s to be valid, got %v", algorithm, err)
		}
	}

	if err := checksum.ValidateAlgorithm("sha1"); err == nil {
		t.Error("expected sha1 to be rejected")
	}
}

func TestWorkerPool(t *testing.T) {
	ctx := context.Background()

	t.Run("processes single job", func(t *testing.T) {
		pool := checksum.NewWorkerPool(1)
		pool.Start(ctx)
		defer pool.Stop()

		err := pool.Submit(ctx, &checksum.Job{
			Path:      "test.txt",
			Algorithm: checksum.AlgorithmMD5,
			Open: func(context.Context) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("hello world")), nil
			},
		})
		if err != nil {
			t.Fatalf("failed to submit job: %v", err)
		}

		result := <-pool.Results()
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}
		if result.Job.Path != "test.txt" {
			t.Errorf("expected path test.txt, got %s", result.Job.Path)
		}
		if result.Digest != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
			t.Errorf("unexpected digest %s", result.Digest)
		}
	})

	t.Run("returns one result per job", func(t *testing.T) {
		pool := checksum.NewWorkerPool(4)
		pool.Start(ctx)
		defer pool.Stop()

		const jobCount = 10
		go func() {
			for i := 0; i < jobCount; i++ {
				_ = pool.Submit(ctx, &checksum.Job{
					Path:      fmt.Sprintf("file-%d.txt", i),
					Algorithm: checksum.AlgorithmBLAKE3,
					Open: func(context.Context) (io.ReadCloser, error) {
						return io.NopCloser(strings.NewReader("test data")), nil
					},
				})
			}
		}()

		seen := make(map[string]bool)
		for i := 0; i < jobCount; i++ {
			result := <-pool.Results()
			if result.Err != nil {
				t.Errorf("unexpected error: %v", result.Err)
			}
			seen[result.Job.Path] = true
		}
		if len(seen) != jobCount {
			t.Errorf("expected %d distinct results, got %d", jobCount, len(seen))
		}
		totals := pool.Totals()
		if totals.Hashed != jobCount || totals.Failed != 0 {
			t.Errorf("unexpected totals: %+v", totals)
		}
		if totals.Bytes != jobCount*int64(len("test data")) {
			t.Errorf("expected %d bytes hashed, got %d", jobCount*len("test data"), totals.Bytes)
		}
	})

	t.Run("reports open errors", func(t *testing.T) {
		pool := checksum.NewWorkerPool(1)
		pool.Start(ctx)
		defer pool.Stop()

		_ = pool.Submit(ctx, &checksum.Job{
			Path:      "missing.txt",
			Algorithm: checksum.AlgorithmMD5,
			Open: func(context.Context) (io.ReadCloser, error) {
				return nil, os.ErrNotExist
			},
		})

		result := <-pool.Results()
		if result.Err == nil {
			t.Fatal("expected error for failed open")
		}
		if !strings.Contains(result.Err.Error(), "failed to open") {
			t.Errorf("expected 'failed to open' error, got: %v", result.Err)
		}
	})

	t.Run("respects job timeout", func(t *testing.T) {
		pool := checksum.NewWorkerPool(1)
		pool.Start(ctx)
		defer pool.Stop()

		slow := &slowReader{delay: 50 * time.Millisecond, data: bytes.Repeat([]byte("a"), 1024*1024)}
		_ = pool.Submit(ctx, &checksum.Job{
			Path:      "slow.bin",
			Algorithm: checksum.AlgorithmMD5,
			Open: func(context.Context) (io.ReadCloser, error) {
				return io.NopCloser(slow), nil
			},
			Timeout: 10 * time.Millisecond,
		})

		result := <-pool.Results()
		if result.Err == nil {
			t.Fatal("expected timeout error")
		}
		if !strings.Contains(result.Err.Error(), "timeout") {
			t.Errorf("expected timeout error, got: %v", result.Err)
		}
	})

	t.Run("submit honours caller context", func(t *testing.T) {
		pool := checksum.NewWorkerPool(1)
		// not started, so the queue fills up
		defer pool.Stop()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		job := &checksum.Job{Path: "x", Algorithm: checksum.AlgorithmMD5}
		var err error
		for i := 0; i < 3 && err == nil; i++ {
			err = pool.Submit(cancelled, job)
		}
		if err == nil {
			t.Fatal("expected submit to fail once the queue is full")
		}
	})

	t.Run("hashes a real file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.txt")
		if err := os.WriteFile(path, []byte("hello from file"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		pool := checksum.NewWorkerPool(2)
		pool.Start(ctx)
		defer pool.Stop()

		_ = pool.Submit(ctx, &checksum.Job{
			Path:      path,
			Algorithm: checksum.AlgorithmSHA256,
			Open:      func(context.Context) (io.ReadCloser, error) { return os.Open(path) },
		})

		result := <-pool.Results()
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}
		expected, _ := checksum.Compute(checksum.AlgorithmSHA256, strings.NewReader("hello from file"))
		if result.Digest != expected {
			t.Errorf("expected %s, got %s", expected, result.Digest)
		}
	})
}

type trickleReader struct {
	data []byte
	step int
	pos  int
}

func (r *trickleReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.step
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

type slowReader struct {
	delay time.Duration
	data  []byte
	pos   int
}

func (r *slowReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	time.Sleep(r.delay)
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
