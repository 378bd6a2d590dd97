package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// IMetric metric reader
type IMetric interface {
	Read()
}

// IMetricManager metric manager
type IMetricManager interface {
	Add(metrics ...IMetric)
	Registry() *prometheus.Registry
	Handler() http.Handler
	Listen(ctx context.Context, route string, port uint16) error
}

// metricsManager polls the added metrics on a fixed interval and serves
// everything registered on its registry.
type metricsManager struct {
	mu       sync.Mutex
	metrics  []IMetric
	interval time.Duration
	registry *prometheus.Registry
	logger   zerolog.Logger
}

// Metrics creates metric instance. The collector runs until ctx is done.
func Metrics(ctx context.Context, interval time.Duration, logger zerolog.Logger) IMetricManager {
	res := &metricsManager{
		interval: interval,
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}

	go res.collector(ctx)
	return res
}

func (m *metricsManager) Add(metrics ...IMetric) {
	m.mu.Lock()
	m.metrics = append(m.metrics, metrics...)
	m.mu.Unlock()
}

func (m *metricsManager) Registry() *prometheus.Registry { return m.registry }

func (m *metricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metricsManager) collector(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.readAll()
		}
	}
}

func (m *metricsManager) readAll() {
	m.mu.Lock()
	metrics := append([]IMetric(nil), m.metrics...)
	m.mu.Unlock()

	for _, v := range metrics {
		v.Read()
	}
}

// Listen serves the registry on route until ctx is done.
func (m *metricsManager) Listen(ctx context.Context, route string, port uint16) error {
	mux := http.NewServeMux()
	mux.Handle(route, m.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			m.logger.Error().Err(err).Msg("can't stop metrics server")
		}
	}()

	m.logger.Info().Str("addr", srv.Addr).Str("route", route).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
