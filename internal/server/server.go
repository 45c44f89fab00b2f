// Package server exposes the calendar feed, the rendered card views, the push
// channel and the metrics endpoint over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/widget"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// CardSource is the read side of a board.
type CardSource interface {
	Info() []widget.CardInfo
	View(id string) (v widget.View, found, rendered bool)
}

// Server serves the calendar feed and, when configured, the card API, the push
// channel and the metrics.
type Server struct {
	// cache is read on every request and written once per sync.
	cache atomic.Pointer[cacheItem]

	Port     string
	BindAddr string

	cards   CardSource
	push    http.Handler
	metrics http.Handler
	log     *slog.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithBindAddr sets the listen address. The default is the loopback interface.
func WithBindAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.BindAddr = addr
		}
	}
}

// WithCards enables the card API.
func WithCards(src CardSource) Option { return func(s *Server) { s.cards = src } }

// WithPush mounts the WebSocket handler.
func WithPush(h http.Handler) Option { return func(s *Server) { s.push = h } }

// WithMetrics mounts the metrics handler.
func WithMetrics(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

// New creates a server listening on port once started.
func New(port string, opts ...Option) *Server {
	s := &Server{
		Port:     port,
		BindAddr: config.LocalhostBindAddr,
		log:      slog.With(config.LogKeyComponent, config.CompServer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendarRequest)

	if s.cards != nil {
		mux.HandleFunc(http.MethodGet+" "+config.RouteCards, s.handleCards)
		mux.HandleFunc(http.MethodGet+" "+config.RouteCard, s.handleCard)
	}
	if s.push != nil {
		mux.Handle(config.RouteWS, s.push)
	}
	if s.metrics != nil {
		mux.Handle(http.MethodGet+" "+config.RouteMetrics, s.metrics)
	}
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         s.BindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		s.log.Info(config.MsgServerListen, config.LogKeyPort, s.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info(config.MsgServerStop)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served calendar.
func (s *Server) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	s.log.Debug(config.MsgCacheUpdated,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *Server) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if notModified(r, item) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			s.log.Error(config.ErrWriteResp, config.LogKeyError, err)
		}
	}
}

func notModified(r *http.Request, item *cacheItem) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == item.etag
	}
	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, item.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}

func (s *Server) handleCards(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.cards.Info())
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	v, found, rendered := s.cards.View(r.PathValue(config.PathValueID))
	switch {
	case !found:
		http.Error(w, config.HTTPMsgCardNotFound, http.StatusNotFound)
	case !rendered:
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgNotRendered, http.StatusServiceUnavailable)
	default:
		s.writeJSON(w, v)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error(config.ErrRenderEncode, config.LogKeyError, err)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	if _, err := w.Write(data); err != nil {
		s.log.Error(config.ErrWriteResp, config.LogKeyError, err)
	}
}
