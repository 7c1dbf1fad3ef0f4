package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storyloom"

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	NodeVisits       *prometheus.CounterVec
	InventoryChanges *prometheus.CounterVec
	PersistOps       *prometheus.CounterVec
	PersistDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Registering twice on the same registry returns the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_visits_total",
				Help:      "Total number of node entries by node and navigation kind",
			},
			[]string{"node_id", "via"},
		),
		InventoryChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inventory_changes_total",
				Help:      "Inventory mutations by item and direction",
			},
			[]string{"item_id", "direction"},
		),
		PersistOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_operations_total",
				Help:      "Storage writes by operation and status",
			},
			[]string{"op", "status"},
		),
		PersistDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "persist_duration_seconds",
				Help:      "Duration of storage writes in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"op"},
		),
	}

	if reg == nil {
		return m, nil
	}
	var err error
	if m.NodeVisits, err = register(reg, m.NodeVisits); err != nil {
		return nil, err
	}
	if m.InventoryChanges, err = register(reg, m.InventoryChanges); err != nil {
		return nil, err
	}
	if m.PersistOps, err = register(reg, m.PersistOps); err != nil {
		return nil, err
	}
	if m.PersistDuration, err = register(reg, m.PersistDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, returning the already registered collector of the
// same description instead when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.To, string(e.Via)).Inc()
		},
		OnInventory: func(_ context.Context, e *domain.InventoryEvent) {
			direction := "add"
			if e.Delta < 0 {
				direction = "remove"
			}
			m.InventoryChanges.WithLabelValues(e.ItemID, direction).Inc()
		},
		OnPersist: func(_ context.Context, e *domain.PersistEvent) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.PersistOps.WithLabelValues(e.Op, status).Inc()
			m.PersistDuration.WithLabelValues(e.Op).Observe(e.Duration.Seconds())
		},
	}
}

// LogHooks returns lifecycle hooks that emit one structured log line per event.
// Persist failures are logged at Error, everything else at Debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "from", e.From, "to", e.To, "via", e.Via)
		},
		OnInventory: func(ctx context.Context, e *domain.InventoryEvent) {
			logger.DebugContext(ctx, "inventory", "item_id", e.ItemID, "delta", e.Delta)
		},
		OnPersist: func(ctx context.Context, e *domain.PersistEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "persist", "op", e.Op, "key", e.Key, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "persist", "op", e.Op, "key", e.Key, "duration", e.Duration)
		},
	}
}

// Chain combines hooks so every non-nil callback runs, in order.
func Chain(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		h := h
		if h.OnNodeEnter != nil {
			prev := out.OnNodeEnter
			out.OnNodeEnter = func(ctx context.Context, e *domain.NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNodeEnter(ctx, e)
			}
		}
		if h.OnInventory != nil {
			prev := out.OnInventory
			out.OnInventory = func(ctx context.Context, e *domain.InventoryEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnInventory(ctx, e)
			}
		}
		if h.OnPersist != nil {
			prev := out.OnPersist
			out.OnPersist = func(ctx context.Context, e *domain.PersistEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnPersist(ctx, e)
			}
		}
	}
	return out
}
