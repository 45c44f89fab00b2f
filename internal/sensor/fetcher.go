package sensor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/anniversary-cards/internal/config"
)

var (
	// ErrUnauthorized is returned when the source answers 401 or 403.
	ErrUnauthorized = errors.New(config.ErrSourceAuth)

	// ErrTooLarge is returned while reading a body past the size limit.
	ErrTooLarge = errors.New(config.ErrSourceTooLarge)
)

// Request names one remote source: a CardDAV address book or a Home Assistant state
// dump.
type Request struct {
	URL string

	// User and Password enable basic auth.
	User     string
	Password string

	// Token enables bearer auth and takes precedence over basic auth.
	Token string

	// Accept is sent as the Accept header when set.
	Accept string
}

// Fetcher downloads a source document.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (io.ReadCloser, error)
}

// HTTPFetcher implements Fetcher over HTTP(S).
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewHTTPFetcher creates a fetcher with the default timeout and size limit.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

// Fetch opens the source. Reading the returned body past MaxBytes fails with
// ErrTooLarge.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (io.ReadCloser, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Query strings and user info may carry secrets.
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)
	log.DebugContext(ctx, config.MsgFetchStart)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSourceRequest, err)
	}
	httpReq.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if req.Accept != "" {
		httpReq.Header.Set(config.HeaderAccept, req.Accept)
	}
	switch {
	case req.Token != "":
		httpReq.Header.Set(config.HeaderAuthorization, config.BearerPrefix+req.Token)
	case req.User != "" || req.Password != "":
		httpReq.SetBasicAuth(req.User, req.Password)
	}

	resp, err := f.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSourceNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: %s", config.ErrSourceStatus, resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	if resp.ContentLength > limit {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	log.Info(config.MsgFetchBody, slog.Int64(config.LogKeySizeBytes, resp.ContentLength))
	return &cappedBody{body: resp.Body, remaining: limit}, nil
}

// cappedBody reads at most remaining bytes and reports ErrTooLarge when the body
// continues past them.
type cappedBody struct {
	body      io.ReadCloser
	remaining int64
}

func (c *cappedBody) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		var extra [1]byte
		n, err := c.body.Read(extra[:])
		if n > 0 {
			return 0, ErrTooLarge
		}
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.body.Read(p)
	c.remaining -= int64(n)
	return n, err
}

func (c *cappedBody) Close() error { return c.body.Close() }
