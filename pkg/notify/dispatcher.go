package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tenantportal/pkg/metrics"
)

// Dispatcher runs each send in its own goroutine, detached from the request
// context and bounded by timeout. Failures are logged and counted only.
type Dispatcher struct {
	n       Notifier
	prefix  string
	timeout time.Duration
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func NewDispatcher(n Notifier, prefix string, timeout time.Duration, log *zap.SugaredLogger, m *metrics.Metrics) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{n: n, prefix: prefix, timeout: timeout, log: log, metrics: m}
}

// Event sends name with the configured prefix (e.g. flow_viewed -> portal_flow_viewed).
func (d *Dispatcher) Event(ctx context.Context, identity, name string, data map[string]any) {
	full := d.prefix + name
	d.run(ctx, "event", identity, full, func(ctx context.Context) error {
		return d.n.SendEvent(ctx, identity, full, data)
	})
}

func (d *Dispatcher) Transactional(ctx context.Context, identity, templateID string, data map[string]any) {
	d.run(ctx, "transactional", identity, templateID, func(ctx context.Context) error {
		return d.n.SendTransactional(ctx, identity, templateID, data)
	})
}

func (d *Dispatcher) Identify(ctx context.Context, identity string, attrs map[string]any) {
	d.run(ctx, "identify", identity, "", func(ctx context.Context) error {
		return d.n.Identify(ctx, identity, attrs)
	})
}

// Wait blocks until in-flight sends finish.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) run(ctx context.Context, typ, identity, name string, send func(context.Context) error) {
	if identity == "" {
		d.log.Warnw("notify skipped: empty identity", "type", typ, "name", name)
		return
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				d.log.Errorw("notify panic", "type", typ, "name", name, "err", rec)
			}
		}()
		sctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		err := send(sctx)
		d.metrics.Notification(typ, err)
		if err != nil {
			d.log.Warnw("notify failed", "type", typ, "name", name, "to", identity, "err", err)
			return
		}
		d.log.Debugw("notify sent", "type", typ, "name", name, "to", identity)
	}()
}
