package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

const namespace = "gravsim"

// Tick is what the simulation reports after every tick.
type Tick struct {
	Duration     time.Duration
	Bodies       int
	TrailEntries int
	Segments     int
	Stale        int
	Degenerate   int
	Reloaded     bool
}

// Collectors holds the Prometheus instruments of one simulation.
type Collectors struct {
	Registry *prometheus.Registry

	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	bodies       prometheus.Gauge
	trailEntries prometheus.Gauge
	segments     prometheus.Gauge
	stale        prometheus.Counter
	degenerate   prometheus.Counter
	reloads      prometheus.Counter
	placed       prometheus.Counter
}

func NewCollectors() *Collectors {
	c := &Collectors{
		Registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Number of simulation ticks executed.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one tick.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bodies",
			Help:      "Live bodies in the world.",
		}),
		trailEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trail_cache_entries",
			Help:      "Bodies tracked by the trail cache.",
		}),
		segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trail_segments",
			Help:      "Timed line segments awaiting expiry.",
		}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_writebacks_total",
			Help:      "Accelerations dropped because their body was gone.",
		}),
		degenerate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_pairs_total",
			Help:      "Pair interactions skipped or zeroed as non-finite.",
		}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_reloads_total",
			Help:      "Scene instantiations.",
		}),
		placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placed_bodies_total",
			Help:      "Bodies placed by the operator.",
		}),
	}
	c.Registry.MustRegister(
		c.ticks, c.tickDuration, c.bodies, c.trailEntries, c.segments,
		c.stale, c.degenerate, c.reloads, c.placed,
		collectors.NewGoCollector(),
	)
	return c
}

func (c *Collectors) Observe(t Tick) {
	c.ticks.Inc()
	c.tickDuration.Observe(t.Duration.Seconds())
	c.bodies.Set(float64(t.Bodies))
	c.trailEntries.Set(float64(t.TrailEntries))
	c.segments.Set(float64(t.Segments))
	c.stale.Add(float64(t.Stale))
	c.degenerate.Add(float64(t.Degenerate))
	if t.Reloaded {
		c.reloads.Inc()
	}
}

func (c *Collectors) Placed() { c.placed.Inc() }

// Handler routes /metrics for reg and a /healthz liveness check.
func Handler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

// Listen serves Handler on addr in the background until ctx is done. It is
// the only place the server address is logged.
func Listen(ctx context.Context, addr string, reg *prometheus.Registry) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		klog.InfoS("serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.ErrorS(err, "metrics server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdown)
	}()
	return server
}
