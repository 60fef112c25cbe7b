package access

import (
	"context"

	"tenantportal/internal/session"
)

type Role string

const (
	RoleAnonymous     Role = "anonymous"
	RoleMember        Role = "member"
	RoleAdministrator Role = "administrator"
)

// Actor is who is asking. Members carry their validated session.
type Actor struct {
	Role       Role
	Email      string
	TenantID   string
	TenantName string
}

func Anonymous() Actor { return Actor{Role: RoleAnonymous} }

func Member(d session.Data) Actor {
	return Actor{Role: RoleMember, Email: d.Email, TenantID: d.TenantID, TenantName: d.TenantName}
}

func Administrator(email string) Actor { return Actor{Role: RoleAdministrator, Email: email} }

func (a Actor) Authenticated() bool { return a.Role == RoleMember || a.Role == RoleAdministrator }

type ctxActorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxActorKey{}, a)
}

// ActorFrom returns the request's actor, anonymous when none was attached.
func ActorFrom(ctx context.Context) Actor {
	if a, ok := ctx.Value(ctxActorKey{}).(Actor); ok {
		return a
	}
	return Anonymous()
}
