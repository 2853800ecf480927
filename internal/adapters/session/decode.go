package session

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// decodeBody undoes Content-Encoding. The transport leaves bodies compressed
// whenever Accept-Encoding was set by hand, which every session does.
func decodeBody(encoding string, raw []byte, limit int64) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "br":
		return readCapped(brotli.NewReader(bytes.NewReader(raw)), limit)
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return readCapped(zr, limit)
	case "deflate":
		// "deflate" is zlib-wrapped on paper; plenty of servers send raw deflate.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer zr.Close()
			return readCapped(zr, limit)
		}
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		return readCapped(fr, limit)
	default:
		return raw, nil
	}
}

// readCapped reads all of r, failing with ErrBodyTooLarge past limit bytes.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, ErrBodyTooLarge
	}
	return b, nil
}
