package access

import (
	"context"
	"strconv"

	"tenantportal/pkg/content"
	"tenantportal/pkg/reqscope"
)

const filterMark = "access-filter"

// FilterSpec is the restriction a listing must apply. Unrestricted specs
// carry no clause.
type FilterSpec struct {
	Kind         content.Kind
	Unrestricted bool
	Clause       content.Clause
}

func matchNothing(kind content.Kind) FilterSpec {
	return FilterSpec{Kind: kind, Clause: content.Clause{Op: content.OpMatchNone}}
}

type filterBuilder func(ctx context.Context, e *Engine, a Actor) FilterSpec

// assignedFilter restricts to the tenant's ordered assignment list for kind.
func assignedFilter(kind content.Kind) filterBuilder {
	return func(ctx context.Context, e *Engine, a Actor) FilterSpec {
		t, err := e.tenants.TenantByID(ctx, a.TenantID)
		if err != nil {
			e.log.Warnw("filter: tenant lookup failed", "tenant_id", a.TenantID, "err", err)
			return matchNothing(kind)
		}
		ids := t.Assigned(kind)
		if len(ids) == 0 {
			return matchNothing(kind)
		}
		return FilterSpec{Kind: kind, Clause: content.Clause{Op: content.OpIDsOrdered, IDs: append([]content.ID(nil), ids...)}}
	}
}

func postFilter(_ context.Context, _ *Engine, a Actor) FilterSpec {
	return FilterSpec{Kind: content.KindPost, Clause: content.Clause{Op: content.OpTenantVisible, TenantID: a.TenantID}}
}

// FilterCollection returns the listing restriction for kind.
func (e *Engine) FilterCollection(ctx context.Context, a Actor, kind content.Kind) FilterSpec {
	switch a.Role {
	case RoleAdministrator:
		return FilterSpec{Kind: kind, Unrestricted: true}
	case RoleMember:
		if build, ok := e.builders[kind]; ok {
			return build(ctx, e, a)
		}
	}
	return matchNothing(kind)
}

// FilterQuery applies the actor's restriction to q. A query is filtered at
// most once however many integration points call this for it.
func (e *Engine) FilterQuery(ctx context.Context, a Actor, q *content.Query) {
	if !q.Mark(filterMark) {
		return
	}
	spec := e.FilterCollection(ctx, a, q.Kind)
	if spec.Unrestricted {
		return
	}
	q.AddClause(spec.Clause)
}

// TrackView emits flow_viewed for members, once per item per request.
func (e *Engine) TrackView(ctx context.Context, a Actor, it content.Item) {
	if a.Role != RoleMember || it.Kind != content.KindFlow || e.events == nil {
		return
	}
	if !reqscope.Once(ctx, "flow_viewed:"+strconv.FormatInt(it.ID, 10)) {
		return
	}
	e.events.Event(ctx, a.Email, "flow_viewed", map[string]any{
		"item_id":    it.ID,
		"item_title": it.Title,
	})
}
