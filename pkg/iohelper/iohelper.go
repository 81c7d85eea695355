// Package iohelper reads HTTP response bodies with a size cap and releases
// them so keep-alive connections return to the pool.
package iohelper

import (
	"io"
	"log/slog"
)

const (
	// SmallMaxBodySize is enough for JSON login responses (8KB)
	SmallMaxBodySize int64 = 8 * 1024

	// DefaultMaxBodySize caps any single body read (1MB)
	DefaultMaxBodySize int64 = 1024 * 1024

	// drainLimit bounds how much is discarded before closing
	drainLimit int64 = 64 * 1024
)

// ReadBody reads at most maxSize bytes from r. A nil reader yields an empty
// slice. Bytes beyond the limit are left unread.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyDefault is ReadBody with DefaultMaxBodySize.
func ReadBodyDefault(r io.Reader) ([]byte, error) {
	return ReadBody(r, DefaultMaxBodySize)
}

// ReadBodyOrLog reads with DefaultMaxBodySize and logs a failed read at debug
// level. The partial body read so far is returned either way.
func ReadBodyOrLog(r io.Reader, logger *slog.Logger) []byte {
	data, err := ReadBodyDefault(r)
	if err != nil && logger != nil {
		logger.Debug("body read failed", slog.String("error", err.Error()))
	}
	return data
}

// DrainAndClose discards what is left of r (up to 64KB) and closes it when
// it is an io.ReadCloser. It always returns nil so it can be deferred.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, drainLimit))
	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
