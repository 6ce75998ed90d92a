package ai

import (
	"strings"

	"go.uber.org/zap"

	"github.com/rgault/duskfall/internal/game/combat"
	"github.com/rgault/duskfall/internal/game/rng"
)

// scriptPrefix marks a behavior tag as script-driven: "script:<hook>" routes
// the decision to a Lua hook named <hook>.
const scriptPrefix = "script:"

// ScriptCaller evaluates a scripted behavior hook. Implemented by the
// scripting package; using a local interface avoids a dependency on the Lua
// runtime here.
type ScriptCaller interface {
	// DecideBehavior runs the named hook against a snapshot of the combat
	// state. ok is false when the hook is missing or failed, in which case
	// the caller falls back to the built-in policies.
	DecideBehavior(hook string, s *combat.State, actor *combat.Combatant) (a combat.Action, ok bool)
}

// Router dispatches decisions to scripted behaviors when a combatant carries
// a script tag, falling back to the built-in policy set.
type Router struct {
	scripts ScriptCaller
	logger  *zap.Logger
}

// NewRouter creates a Router. scripts may be nil to disable scripted
// behaviors; a nil logger disables logging.
func NewRouter(scripts ScriptCaller, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{scripts: scripts, logger: logger}
}

// Decide produces an action for actor. Script failures degrade to the
// default aggressive policy rather than stalling combat.
func (r *Router) Decide(s *combat.State, actor *combat.Combatant, src rng.Source) combat.Action {
	if hook, isScript := strings.CutPrefix(actor.Behavior, scriptPrefix); isScript && r.scripts != nil {
		if a, ok := r.scripts.DecideBehavior(hook, s, actor); ok {
			return a
		}
		r.logger.Warn("scripted behavior failed, falling back to aggressive",
			zap.String("combatant", actor.ID),
			zap.String("hook", hook),
		)
	}
	return Decide(s, actor, src)
}
