package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/umapsgd"
	promcollector "github.com/hupe1980/umapsgd/metrics/prometheus"
)

// serveMetrics exposes run metrics on addr until the returned stop function
// is called. An empty addr disables the endpoint and yields a nil collector.
func (c *CLI) serveMetrics(ctx context.Context, addr string) (umapsgd.MetricsCollector, func(), error) {
	if addr == "" {
		return nil, func() {}, nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mc := promcollector.NewCollector(reg)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.Error("metrics server failed", "error", err)
		}
	}()
	c.Logger.Info("serving metrics", "addr", "http://"+ln.Addr().String()+"/metrics")

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return mc, stop, nil
}
