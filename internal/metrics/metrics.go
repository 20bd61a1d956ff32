package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// Registry holds every TomeClicker metric. It is separate from the default
	// registry so tests can gather it without Go runtime noise.
	Registry = prometheus.NewRegistry()

	clicks = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tome_clicks_total",
			Help: "Total number of clicks, crits included.",
		},
	)
	purchases = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tome_upgrade_purchases_total",
			Help: "Upgrade purchase attempts, partitioned by upgrade and outcome.",
		},
		[]string{"upgrade", "outcome"},
	)
	completions = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tome_action_completions_total",
			Help: "Idle action completions, partitioned by kind and crit.",
		},
		[]string{"kind", "crit"},
	)
	expGained = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tome_exp_gained_total",
			Help: "EXP credited, partitioned by source.",
		},
		[]string{"source"},
	)
	imports = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tome_save_imports_total",
			Help: "Save imports, partitioned by detected format and result.",
		},
		[]string{"format", "result"},
	)
	unlocks = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tome_story_unlocks_total",
			Help: "Story entries unlocked, partitioned by chapter.",
		},
		[]string{"chapter"},
	)
)

func IncClick() { clicks.Inc() }

// IncPurchase records a purchase attempt. outcome is "ok" or a refusal reason.
func IncPurchase(upgradeID, outcome string) {
	purchases.WithLabelValues(upgradeID, outcome).Inc()
}

func IncCompletion(kind string, crit bool) {
	c := "false"
	if crit {
		c = "true"
	}
	completions.WithLabelValues(kind, c).Inc()
}

// AddExp records EXP credited from source (click, idle, reflection).
func AddExp(source string, amount float64) {
	if amount > 0 {
		expGained.WithLabelValues(source).Add(amount)
	}
}

func IncImport(format, result string) {
	imports.WithLabelValues(format, result).Inc()
}

func IncUnlock(chapter string) {
	unlocks.WithLabelValues(chapter).Inc()
}

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	log := logger.Named("Metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting metrics server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Metrics server shutdown failed", zap.Error(err))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
