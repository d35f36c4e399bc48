package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// CompressionConfig tunes response compression.
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, that gets compressed.
	MinSize int
	// Level is a gzip level from 1 to 9.
	Level int
}

// DefaultCompressionConfig compresses bodies of 1 KiB and more at level 6.
// Geometry and thumbnail bodies are mostly digits and compress well.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{MinSize: 1024, Level: 6}
}

// NewCompressionMiddleware gzips JSON and HTML responses for clients that
// accept it.
func NewCompressionMiddleware(config CompressionConfig) (func(http.Handler) http.Handler, error) {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(config.MinSize),
		gzhttp.CompressionLevel(config.Level),
		gzhttp.ContentTypes([]string{"application/json", "text/html"}),
	)
	if err != nil {
		return nil, err
	}
	return func(next http.Handler) http.Handler { return wrapper(next) }, nil
}

// CompressionMiddleware applies the default configuration.
func CompressionMiddleware(next http.Handler) http.Handler {
	mw, err := NewCompressionMiddleware(DefaultCompressionConfig())
	if err != nil {
		return gzhttp.GzipHandler(next)
	}
	return mw(next)
}
