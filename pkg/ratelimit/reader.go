package ratelimit

import (
	"context"
	"io"
)

// Reader throttles an io.Reader through a Limiter
type Reader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *Limiter
}

// NewReader wraps reader. With a nil limiter reader is returned unchanged.
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{ctx: ctx, reader: reader, limiter: limiter}
}

// Read reserves tokens for at most one bucket of data before reading
func (r *Reader) Read(p []byte) (int, error) {
	want := int64(len(p))
	if want > r.limiter.Burst() {
		want = r.limiter.Burst()
	}
	if err := r.limiter.Wait(r.ctx, want); err != nil {
		return 0, err
	}

	n, err := r.reader.Read(p[:want])
	r.limiter.refund(want - int64(n))
	return n, err
}

// ReadCloser is a Reader that closes the wrapped stream
type ReadCloser struct {
	Reader
	closer io.Closer
}

// NewReadCloser wraps rc. With a nil limiter rc is returned unchanged.
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &ReadCloser{
		Reader: Reader{ctx: ctx, reader: rc, limiter: limiter},
		closer: rc,
	}
}

// Close closes the wrapped stream
func (rc *ReadCloser) Close() error {
	return rc.closer.Close()
}
