// Package access decides what a portal actor may see: single items, listing
// filters and page-builder widget queries all go through one Engine so the
// three paths cannot disagree.
package access

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
	"go.uber.org/zap"

	"tenantportal/pkg/content"
	"tenantportal/pkg/metrics"
	"tenantportal/pkg/tenants"
)

var ErrAccessDenied = errors.New("access denied")

//go:embed policy.rego
var policySource string

// EventSender is the fire-and-forget notification side of the engine.
type EventSender interface {
	Event(ctx context.Context, identity, name string, data map[string]any)
}

type Engine struct {
	tenants  tenants.Provider
	events   EventSender
	query    rego.PreparedEvalQuery
	builders map[content.Kind]filterBuilder
	widgets  *WidgetBindings
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
}

// NewEngine compiles the visibility policy once; widgets may be nil for the default bindings.
func NewEngine(ctx context.Context, prov tenants.Provider, events EventSender, widgets *WidgetBindings, log *zap.SugaredLogger, m *metrics.Metrics) (*Engine, error) {
	q, err := rego.New(
		rego.Query("data.portal.access.allow"),
		rego.Module("policy.rego", policySource),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare access policy: %w", err)
	}
	if widgets == nil {
		widgets = DefaultWidgetBindings()
	}
	e := &Engine{tenants: prov, events: events, query: q, widgets: widgets, log: log, metrics: m}
	e.builders = map[content.Kind]filterBuilder{
		content.KindFlow:     assignedFilter(content.KindFlow),
		content.KindResource: assignedFilter(content.KindResource),
		content.KindRep:      assignedFilter(content.KindRep),
		content.KindPost:     postFilter,
	}
	return e, nil
}

// CanViewItem fails closed: lookup or evaluation errors deny.
func (e *Engine) CanViewItem(ctx context.Context, a Actor, it content.Item) bool {
	allowed, err := e.evaluate(ctx, a, it)
	if err != nil {
		e.log.Warnw("access evaluation failed", "item_id", it.ID, "kind", it.Kind, "actor", a.Role, "err", err)
		allowed = false
	}
	e.metrics.Access(string(it.Kind), allowed)
	return allowed
}

// Authorize is CanViewItem as an error for handlers.
func (e *Engine) Authorize(ctx context.Context, a Actor, it content.Item) error {
	if !e.CanViewItem(ctx, a, it) {
		return ErrAccessDenied
	}
	return nil
}

func (e *Engine) evaluate(ctx context.Context, a Actor, it content.Item) (bool, error) {
	if a.Role == RoleAnonymous || a.Role == "" {
		return false, nil
	}
	assigned := []content.ID{}
	if a.Role == RoleMember && it.Kind.Assigned() {
		t, err := e.tenants.TenantByID(ctx, a.TenantID)
		if err != nil {
			return false, err
		}
		if ids := t.Assigned(it.Kind); ids != nil {
			assigned = ids
		}
	}
	allowedTenants := it.AllowedTenants
	if allowedTenants == nil {
		allowedTenants = []string{}
	}
	input := map[string]any{
		"actor": map[string]any{"role": string(a.Role), "tenant_id": a.TenantID},
		"item": map[string]any{
			"id":              it.ID,
			"kind":            string(it.Kind),
			"assigned":        it.Kind.Assigned(),
			"allowed_tenants": allowedTenants,
		},
		"tenant": map[string]any{"assigned_ids": assigned},
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}
	if len(rs) != 1 || len(rs[0].Expressions) != 1 {
		return false, fmt.Errorf("unexpected policy result: %v", rs)
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy result is %T, want bool", rs[0].Expressions[0].Value)
	}
	return allowed, nil
}
