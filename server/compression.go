package server

import (
	"compress/gzip"
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/esime/ielec/config"
)

// alreadyCompressed are response types gzip cannot shrink: PDF streams are
// deflated by the writer and PNG is deflated by definition.
var alreadyCompressed = []string{"application/pdf", "image/png"}

// newCompressionHandler wraps h with gzip compression of JSON, CSV, HTML
// and text responses. It returns h unchanged when compression is off.
func newCompressionHandler(h http.Handler, cfg config.CompressionConfig) http.Handler {
	if !cfg.Enabled || cfg.Level == "none" {
		return h
	}

	level := gzip.DefaultCompression
	switch cfg.Level {
	case "fastest":
		level = gzip.BestSpeed
	case "best":
		level = gzip.BestCompression
	}

	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(cfg.MinSize),
		gzhttp.CompressionLevel(level),
		gzhttp.ExceptContentTypes(alreadyCompressed),
	)
	if err != nil {
		return h
	}
	return wrapper(h)
}
