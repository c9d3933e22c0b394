package app

import (
	"context"
	"strings"
)

// Surface names the host surface that issued an operation.
type Surface string

// SurfaceTUI and related constants define known surfaces.
const (
	SurfaceTUI  Surface = "tui"
	SurfaceCLI  Surface = "cli"
	SurfaceHTTP Surface = "http"
	SurfaceMCP  Surface = "mcp"
)

// Actor carries caller identity for persistence attribution.
type Actor struct {
	Name    string
	Surface Surface
}

// Label renders the actor as "name@surface".
func (a Actor) Label() string {
	switch {
	case a.Name == "" && a.Surface == "":
		return ""
	case a.Name == "":
		return string(a.Surface)
	case a.Surface == "":
		return a.Name
	default:
		return a.Name + "@" + string(a.Surface)
	}
}

// WithActor attaches a normalized actor to context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, normalizeActor(actor))
}

// ActorFromContext returns the actor when present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	if !ok {
		return Actor{}, false
	}
	actor = normalizeActor(actor)
	if actor.Name == "" && actor.Surface == "" {
		return Actor{}, false
	}
	return actor, true
}

// actorContextKey stores context keys for actor values.
type actorContextKey struct{}

func normalizeActor(actor Actor) Actor {
	actor.Name = strings.TrimSpace(actor.Name)
	actor.Surface = Surface(strings.ToLower(strings.TrimSpace(string(actor.Surface))))
	switch actor.Surface {
	case "", SurfaceTUI, SurfaceCLI, SurfaceHTTP, SurfaceMCP:
	default:
		actor.Surface = SurfaceCLI
	}
	return actor
}
