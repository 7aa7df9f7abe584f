package engine

import (
	"bytes"
	"io"
	"log/slog"

	"golang.org/x/net/html/charset"
)

// DecodeBody returns the page body as UTF-8 text, honouring the charset in
// Content-Type or a <meta> declaration. The portal serves ISO-8859-1. If
// conversion fails the raw bytes are used unchanged.
func DecodeBody(p *Page) string {
	contentType := p.Header.Get("Content-Type")
	r, err := charset.NewReader(bytes.NewReader(p.Body), contentType)
	if err != nil {
		slog.Debug("charset detection failed, using raw body",
			"content_type", contentType, "error", err)
		return string(p.Body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		slog.Debug("charset conversion failed, using raw body",
			"content_type", contentType, "error", err)
		return string(p.Body)
	}
	return string(decoded)
}
