package analyzer

import (
	"math"
	"os"

	"github.com/edsrzf/mmap-go"

	"loclens/internal/core/errors"
)

const (
	// mmapThreshold is the size at which files are memory-mapped
	// instead of read into an owned buffer.
	mmapThreshold = 256 * 1024
	// sampleSize is the chunk size used for encoding and language
	// detection. Large files are sampled at the start and the middle.
	sampleSize = 4 * 1024
)

// byteSource is a uniform read-only byte view over a file, backed by
// either an owned buffer (small files) or a read-only memory mapping
// (large files). Later stages are oblivious to which one they got.
//
// A mapped source assumes the file is not truncated or rewritten by
// another process while the scan holds the mapping. That constraint is
// documented, not enforced.
type byteSource struct {
	data   []byte
	mapped mmap.MMap
}

// openSource opens path as a byte source. Mapping failures (including
// address-space exhaustion on hosts that cannot fit the file) surface
// as CodeUnsupportedSize so the caller can skip the file instead of
// aborting the scan.
func openSource(path string, size int64) (*byteSource, error) {
	if size > math.MaxInt {
		return nil, errors.New(errors.CodeUnsupportedSize, "file exceeds addressable size")
	}
	if size < mmapThreshold {
		data, err := os.ReadFile(path)
		if err != nil {
			wrapped := errors.Wrap(err, errors.CodeUnreadableFile, "read file")
			return nil, errors.AddContext(wrapped, errors.CtxOperation, "read")
		}
		return &byteSource{data: data}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeUnreadableFile, "open file")
		return nil, errors.AddContext(wrapped, errors.CtxOperation, "open")
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeUnsupportedSize, "memory-map file")
		return nil, errors.AddContext(wrapped, errors.CtxOperation, "mmap")
	}
	return &byteSource{data: m, mapped: m}, nil
}

// Bytes returns the file content. The slice is invalid after Close for
// mapped sources.
func (s *byteSource) Bytes() []byte { return s.data }

// Close releases the mapping, if any. Buffered sources are a no-op.
func (s *byteSource) Close() error {
	if s.mapped != nil {
		m := s.mapped
		s.mapped = nil
		s.data = nil
		return m.Unmap()
	}
	return nil
}

// sample returns detection bytes: the first sampleSize bytes plus, for
// larger files, sampleSize bytes from an even-aligned middle offset so
// UTF-16 code units stay aligned.
func (s *byteSource) sample() []byte {
	data := s.data
	if len(data) <= sampleSize {
		return data
	}
	mid := (len(data) - sampleSize) / 2
	if mid%2 == 1 {
		mid--
	}
	end := mid + sampleSize
	if end > len(data) {
		end = len(data)
	}
	out := make([]byte, 0, sampleSize*2)
	out = append(out, data[:sampleSize]...)
	out = append(out, data[mid:end]...)
	return out
}
