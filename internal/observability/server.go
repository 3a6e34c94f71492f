package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Gatherer is what Handler exposes. It defaults to the prometheus default
// gatherer, matching Registry.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Handler serves the codec collectors in the prometheus exposition format.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// NewRouter returns the metrics routes: /metrics and /health.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), ObserveRequests(log.Logger))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(Handler()))
	return router
}

// MetricsServer serves NewRouter on a TCP listener.
type MetricsServer struct {
	srv *http.Server
	ln  net.Listener
}

// ServeMetrics listens on addr and serves in the background until Close.
// addr may use port 0; Addr reports the bound address.
func ServeMetrics(addr string) (*MetricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &MetricsServer{
		srv: &http.Server{Handler: NewRouter(), ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", s.Addr()).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", s.Addr()).Msg("metrics server listening")
	return s, nil
}

func (s *MetricsServer) Addr() string {
	return s.ln.Addr().String()
}

func (s *MetricsServer) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
