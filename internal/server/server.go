// Package server exposes the voice ordering engine over HTTP: a /session
// websocket endpoint for kiosk front ends, Prometheus metrics on /metrics,
// and health probes.
//
// Each websocket connection gets its own order store, echo filter and
// dialog engine; the intent source and menu catalog are shared across
// sessions.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dawoncafe/orderintent/internal/config"
	"github.com/dawoncafe/orderintent/internal/dialog"
	"github.com/dawoncafe/orderintent/internal/echo"
	"github.com/dawoncafe/orderintent/internal/health"
	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/internal/observe"
	"github.com/dawoncafe/orderintent/pkg/intent"
	"github.com/dawoncafe/orderintent/pkg/order"
)

const shutdownTimeout = 10 * time.Second

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithMetrics sets the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// Server serves kiosk sessions over websocket.
type Server struct {
	cfg     *config.Config
	catalog *menu.Catalog
	source  intent.Source
	metrics *observe.Metrics
	log     *slog.Logger
	handler http.Handler
}

// New builds a Server over the shared catalog and intent source.
func New(cfg *config.Config, catalog *menu.Catalog, source intent.Source, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		catalog: catalog,
		source:  source,
		metrics: observe.DefaultMetrics(),
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /session", s.handleSession)
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(
		health.Checker{Name: "catalog", Check: s.checkCatalog},
		health.Checker{Name: "classifier", Optional: true, Check: s.checkClassifier},
	).Register(mux)
	s.handler = mux

	return s
}

// Handler returns the HTTP handler, for mounting in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains connections gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server: listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) checkCatalog(context.Context) error {
	if len(s.catalog.Items()) == 0 {
		return errors.New("empty catalog")
	}
	return nil
}

// readinessUtterance is a canonical order the classifier stack must always
// understand. It exercises the full pipeline: mis-hearing correction, item
// matching and, when configured, the cloud source with its rule fallback.
const readinessUtterance = "아이스 아메리카노 한 잔 주세요"

func (s *Server) checkClassifier(ctx context.Context) error {
	res, err := s.source.Classify(ctx, intent.Request{Transcript: readinessUtterance})
	if err != nil {
		return fmt.Errorf("classify canonical utterance: %w", err)
	}
	if res.Type != intent.AddItem && res.Type != intent.MultiAction {
		return fmt.Errorf("canonical utterance classified as %s", res.Type)
	}
	return nil
}

// handleSession upgrades the request and runs one kiosk session until the
// client disconnects.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("server: websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session aborted")

	ctx := r.Context()
	s.metrics.ActiveSessions.Add(ctx, 1)
	defer s.metrics.ActiveSessions.Add(ctx, -1)

	store := order.NewMemStore()
	sess := &session{
		conn:  conn,
		store: store,
		log:   s.log,
		ctx:   ctx,
	}
	sess.engine = dialog.New(s.catalog, store, s.source,
		dialog.WithEvents(sess),
		dialog.WithSpeaker(sess),
		dialog.WithEchoFilter(s.newEchoFilter()),
		dialog.WithMetrics(s.metrics),
		dialog.WithLogger(s.log),
	)

	s.log.Info("server: session opened", "remote", r.RemoteAddr)
	err = s.serveSession(ctx, sess)

	switch {
	case err == nil || errors.Is(err, context.Canceled):
		conn.Close(websocket.StatusNormalClosure, "")
	case websocket.CloseStatus(err) != -1:
		// Client closed the socket.
	default:
		s.log.Warn("server: session ended with error", "remote", r.RemoteAddr, "error", err)
	}
	s.log.Info("server: session closed", "remote", r.RemoteAddr)
}

// serveSession runs the frame read loop.
func (s *Server) serveSession(ctx context.Context, sess *session) error {
	for {
		var f clientFrame
		if err := wsjson.Read(ctx, sess.conn, &f); err != nil {
			return err
		}

		switch f.Type {
		case frameTranscript:
			if err := sess.engine.HandleSpeechResult(ctx, f.Text, f.Final); err != nil {
				s.log.Error("server: transcript handling failed", "error", err)
			}
			if f.Final {
				sess.pushOrder()
			}

		case frameTTSDone:
			sess.engine.PlaybackFinished()

		case frameTemperature:
			t := menu.Temperature(f.Value)
			if !t.IsSet() {
				sess.write(serverFrame{Type: frameError, Text: "unknown temperature " + f.Value})
				continue
			}
			sess.engine.HandleTemperatureSelect(ctx, t)
			sess.pushOrder()

		case frameReset:
			sess.engine.Reset(ctx)
			sess.pushOrder()

		default:
			sess.write(serverFrame{Type: frameError, Text: "unknown frame type " + f.Type})
		}
	}
}

// newEchoFilter builds a per-session echo filter from the config, keeping
// the filter's defaults for unset values.
func (s *Server) newEchoFilter() *echo.Filter {
	var opts []echo.Option
	if s.cfg.Echo.Window > 0 {
		opts = append(opts, echo.WithWindow(s.cfg.Echo.Window))
	}
	if s.cfg.Echo.MinLength > 0 {
		opts = append(opts, echo.WithMinLength(s.cfg.Echo.MinLength))
	}
	if s.cfg.Echo.CoverageRatio > 0 {
		opts = append(opts, echo.WithCoverageRatio(s.cfg.Echo.CoverageRatio))
	}
	if s.cfg.Echo.MatchRatio > 0 {
		opts = append(opts, echo.WithMatchRatio(s.cfg.Echo.MatchRatio))
	}
	opts = append(opts, echo.WithLogger(s.log))
	return echo.New(opts...)
}
