// Package http provides the standard sacamantecas.Retriever. It fetches
// catalogue pages over http(s) and file URIs, decodes them to UTF-8 and
// follows at most one meta-refresh hop. It does not execute JavaScript;
// catalogues that render their records client-side need the rod retriever
// instead.
package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DervishD/sacamantecas"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 20 * time.Second

// DefaultMaxBodySize caps how many body bytes are read per response.
const DefaultMaxBodySize = 10 << 20

// fallbackCharset is assumed when neither the response headers nor the
// markup declare one.
const fallbackCharset = "utf-8"

// Old catalogues declare charsets and redirections in the markup rather
// than in the protocol. The attribute values must be double-quoted, which
// is how every catalogue in the wild writes them.
var (
	metaContentTypeRe = regexp.MustCompile(`(?i)<meta\s+http-equiv="content-type".*?charset="([^"]+)"`)
	metaCharsetRe     = regexp.MustCompile(`(?i)<meta\s+charset="([^"]+)"`)
	metaRefreshRe     = regexp.MustCompile(`(?i)<meta\s+http-equiv="refresh"\s+content="(?:[^;]+;\s*)?url=([^"]+)"`)
)

// UserAgent returns the default User-Agent header, identifying the
// application and platform to catalogue operators.
func UserAgent() string {
	return fmt.Sprintf("sacamantecas/%s +%s (%s/%s)",
		sacamantecas.Version, sacamantecas.Repository, runtime.GOOS, runtime.GOARCH)
}

// Ensure Retriever implements sacamantecas.Retriever at compile time.
var _ sacamantecas.Retriever = (*Retriever)(nil)

// Retriever retrieves catalogue pages with plain HTTP requests.
type Retriever struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithTimeout sets the per-request timeout.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(r *Retriever) {
		r.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Retriever) {
		r.userAgent = ua
	}
}

// WithMaxBodySize caps the number of body bytes read per response.
func WithMaxBodySize(n int64) Option {
	return func(r *Retriever) {
		r.maxBodySize = n
	}
}

// WithClient replaces the underlying HTTP client. Replacement clients do
// not get the file:// transport or the timeout option applied.
func WithClient(c *http.Client) Option {
	return func(r *Retriever) {
		r.client = c
	}
}

// NewRetriever creates a Retriever. Its client serves file:// URIs from
// the local filesystem in addition to http and https.
func NewRetriever(opts ...Option) *Retriever {
	r := &Retriever{
		timeout:     DefaultTimeout,
		userAgent:   UserAgent(),
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
		transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
		r.client = &http.Client{
			Timeout:   r.timeout,
			Transport: transport,
		}
	}

	return r
}

// Retrieve fetches uri, decodes the body and follows at most one
// meta-refresh hop.
func (r *Retriever) Retrieve(ctx context.Context, uri string) (*sacamantecas.Document, error) {
	finalURI, charsetName, content, err := r.fetch(ctx, uri)
	if err != nil {
		return nil, err
	}

	if target, ok := refreshTarget(content, finalURI); ok {
		finalURI, charsetName, content, err = r.fetch(ctx, target)
		if err != nil {
			return nil, err
		}
	}

	return &sacamantecas.Document{
		SourceURI: uri,
		URI:       finalURI,
		Charset:   charsetName,
		Content:   content,
		Retrieved: time.Now(),
	}, nil
}

// fetch performs one GET and returns the final URI, the canonical charset
// name and the decoded body.
func (r *Retriever) fetch(ctx context.Context, uri string) (string, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", "", "", sacamantecas.Errorf(sacamantecas.ERETRIEVAL, "invalid URI %q: %v", uri, err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", "", "", sacamantecas.Errorf(sacamantecas.ERETRIEVAL, "cannot retrieve %q: %v", uri, err)
	}
	defer resp.Body.Close()

	// The client follows protocol redirects on its own; keep where it
	// ended up.
	finalURI := resp.Request.URL.String()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", "", sacamantecas.Errorf(sacamantecas.ERETRIEVAL, "HTTP %d for %q", resp.StatusCode, uri)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBodySize))
	if err != nil {
		return "", "", "", sacamantecas.Errorf(sacamantecas.ERETRIEVAL, "cannot read %q: %v", uri, err)
	}

	content, canonical, err := decode(raw, detectCharset(resp.Header.Get("Content-Type"), raw), uri)
	if err != nil {
		return "", "", "", err
	}
	return finalURI, canonical, content, nil
}

// detectCharset determines the charset label of a response: the
// Content-Type header parameter wins, then the markup's own declarations,
// then the UTF-8 fallback.
func detectCharset(contentType string, body []byte) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if cs := params["charset"]; cs != "" {
			return cs
		}
	}
	if m := metaContentTypeRe.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	if m := metaCharsetRe.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	return fallbackCharset
}

// decode converts raw to UTF-8 text according to label.
// Returns EDECODE for unknown labels and undecodable bodies.
func decode(raw []byte, label, uri string) (string, string, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", "", sacamantecas.Errorf(sacamantecas.EDECODE, "unsupported charset %q for %q", label, uri)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = label
	}

	// The x/text UTF-8 decoder substitutes ill-formed sequences instead
	// of failing, so garbage input has to be rejected up front.
	if canonical == "utf-8" {
		if !utf8.Valid(raw) {
			return "", "", sacamantecas.Errorf(sacamantecas.EDECODE, "cannot decode %q as %q: invalid byte sequence", uri, canonical)
		}
		return string(raw), canonical, nil
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", sacamantecas.Errorf(sacamantecas.EDECODE, "cannot decode %q as %q: %v", uri, canonical, err)
	}
	return string(decoded), canonical, nil
}

// refreshTarget extracts a meta-refresh destination from content.
// The target inherits the scheme and host of base when it names none; a
// bare path replaces the original path wholesale.
func refreshTarget(content, base string) (string, bool) {
	m := metaRefreshRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	target, err := url.Parse(strings.TrimSpace(m[1]))
	if err != nil {
		return "", false
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	if target.Scheme == "" {
		target.Scheme = baseURL.Scheme
	}
	if target.Host == "" {
		target.Host = baseURL.Host
	}
	return target.String(), true
}

// Close releases resources. The default client only holds idle
// connections.
func (r *Retriever) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
