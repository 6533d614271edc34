package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplist/core/internal/domain/entities"
	"github.com/shoplist/core/internal/ports"
)

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() error {
	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	if err := registerAll(s.registry, requestsTotal, requestDuration); err != nil {
		return err
	}

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(time.Since(start).Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))

	return nil
}

func registerAll(registry *prometheus.Registry, collectors ...prometheus.Collector) error {
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return nil
}

// instrumentedRepository counts item mutations by operation and outcome
type instrumentedRepository struct {
	ports.ItemRepository
	mutations *prometheus.CounterVec
}

func newInstrumentedRepository(repo ports.ItemRepository, registry *prometheus.Registry) (*instrumentedRepository, error) {
	mutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoplist",
			Name:      "items_mutations_total",
			Help:      "Total number of item mutations",
		},
		[]string{"op", "result"},
	)

	if err := registerAll(registry, mutations); err != nil {
		return nil, err
	}

	return &instrumentedRepository{ItemRepository: repo, mutations: mutations}, nil
}

func (r *instrumentedRepository) Create(ctx context.Context, item *entities.Item) error {
	err := r.ItemRepository.Create(ctx, item)
	r.observe("create", err)
	return err
}

func (r *instrumentedRepository) Update(ctx context.Context, id string, mutate func(*entities.Item) error) (*entities.Item, error) {
	item, err := r.ItemRepository.Update(ctx, id, mutate)
	r.observe("update", err)
	return item, err
}

func (r *instrumentedRepository) Delete(ctx context.Context, id string) error {
	err := r.ItemRepository.Delete(ctx, id)
	r.observe("delete", err)
	return err
}

func (r *instrumentedRepository) observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrItemNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	r.mutations.WithLabelValues(op, result).Inc()
}
