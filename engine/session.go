package engine

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
)

// maxBody caps how much of a decoded response body is read into memory.
var maxBody int64 = 10 << 20

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"

// Options configures a Session.
type Options struct {
	Timeout     time.Duration
	InsecureTLS bool
	UserAgent   string

	// Host, if set, is sent as the Host header on every request.
	Host string
}

// Session is the transport resource of a single fetch attempt. It holds a
// cookie jar so the portal's session cookie survives the redirect hop, and
// two clients over the same transport: one that stops at the first
// response and one that follows redirects. Close it when the attempt ends.
type Session struct {
	opts      Options
	transport *http.Transport
	direct    *http.Client
	follow    *http.Client
}

// NewSession creates a Session with a Chrome-like TLS fingerprint.
func NewSession(opts Options) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("engine: cookie jar: %w", err)
	}

	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr, opts.InsecureTLS)
		},
		ForceAttemptHTTP2: false,
	}

	return &Session{
		opts:      opts,
		transport: transport,
		direct: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   opts.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		follow: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}, nil
}

// Get issues a GET with the portal's browser headers. With followRedirects
// false a 3xx response is returned as-is.
func (s *Session) Get(ctx context.Context, rawURL string, followRedirects bool) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("engine: build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", s.opts.UserAgent)
	// Set explicitly so the transport keeps Content-Length and leaves
	// decompression to decodeContent.
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	if s.opts.Host != "" {
		req.Host = s.opts.Host
	}

	client := s.direct
	if followRedirects {
		client = s.follow
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "do request", URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	wire := &countingReader{r: resp.Body}
	content, err := decodeContent(resp.Header.Get("Content-Encoding"), wire)
	if err != nil {
		return nil, &TransportError{Op: "decode body", URL: rawURL, Err: err}
	}
	defer content.Close()

	body, err := io.ReadAll(io.LimitReader(content, maxBody+1))
	if err != nil {
		return nil, &TransportError{Op: "read body", URL: rawURL, Err: err}
	}
	if int64(len(body)) > maxBody {
		slog.Warn("response body truncated", "url", rawURL, "limit", maxBody)
		body = body[:maxBody]
	}

	return &Page{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
		Bytes:      transferredBytes(resp.Header, wire.n),
	}, nil
}

// decodeContent wraps r according to the Content-Encoding header.
func decodeContent(encoding string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		return gzip.NewReader(r)
	case "deflate":
		return zlib.NewReader(r)
	default:
		return io.NopCloser(r), nil
	}
}

// countingReader counts the bytes read off the wire, before decoding.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Close releases the session's pooled connections.
func (s *Session) Close() {
	s.transport.CloseIdleConnections()
}

// transferredBytes prefers the declared Content-Length and falls back to
// the number of encoded bytes actually read.
func transferredBytes(h http.Header, wireLen int64) int64 {
	if v := h.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return wireLen
}

// chromeHTTP1Spec builds a Chrome ClientHello with ALPN limited to
// http/1.1, since http.Transport cannot speak h2 over a utls connection.
// A fresh spec is built per dial because utls mutates extensions in place.
func chromeHTTP1Spec() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return &spec, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via utls.
func dialTLSChrome(ctx context.Context, network, addr string, insecure bool) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 30 * time.Second}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	cfg := &tls.Config{ServerName: host, InsecureSkipVerify: insecure}

	spec, err := chromeHTTP1Spec()
	if err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("engine: build tls spec: %w", err)
	}
	tlsConn := tls.UClient(rawConn, cfg, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(spec); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("engine: apply tls spec: %w", err)
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
