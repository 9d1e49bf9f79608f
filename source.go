package nufx

import (
	"bytes"
	"io"
)

// source is the byte-range abstraction every parser in this package reads
// through. It is deliberately narrower than io.ReaderAt: callers never need
// to read past size, so the one bounds check every read needs lives here
// instead of being repeated at every call site.
type source struct {
	ra     io.ReaderAt
	size   int64
	closer io.Closer // nil for in-memory sources
}

// OpenReaderAt builds a source over an arbitrarily large archive backed by
// an io.ReaderAt, such as an os.File. size is the number of archive bytes
// reachable from ra, starting at offset 0. When ra also implements
// io.Closer, Archive.Close closes it.
func OpenReaderAt(ra io.ReaderAt, size int64) *source {
	closer, _ := ra.(io.Closer)
	return &source{ra: ra, size: size, closer: closer}
}

// OpenBytes builds a source over an in-memory archive. The slice is not
// copied; callers must not mutate it while the returned Archive is in use.
func OpenBytes(b []byte) *source {
	return OpenReaderAt(bytes.NewReader(b), int64(len(b)))
}

func (s *source) Size() int64 { return s.size }

// readAt reads exactly len(p) bytes starting at off, failing if the read
// would run past size, and returning io.ErrUnexpectedEOF (rather than
// io.EOF) on a short read, since every caller in this package is asking
// for a fixed-size structure it already knows must be present.
func (s *source) readAt(p []byte, off int64) error {
	if off < 0 || off > s.size || int64(len(p)) > s.size-off {
		return io.ErrUnexpectedEOF
	}
	n, err := s.ra.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// slice reads n bytes at off into a freshly allocated buffer.
func (s *source) slice(off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := s.readAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// close releases the underlying io.Closer, if any. A no-op for in-memory
// sources built with OpenBytes.
func (s *source) close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
