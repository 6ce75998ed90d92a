package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/rgault/duskfall/internal/game/combat"
)

// BehaviorManager owns one sandboxed VM holding every loaded behavior script
// and dispatches decision hooks into it. It implements ai.ScriptCaller.
//
// A hook is a Lua global function taking (actor, foes) tables and returning
// either the string "defend" or a table {action="attack", target="<id>"}.
type BehaviorManager struct {
	mu     sync.Mutex
	state  *lua.LState
	logger *zap.Logger
}

// NewBehaviorManager creates an empty BehaviorManager. A nil logger disables
// logging.
func NewBehaviorManager(logger *zap.Logger) *BehaviorManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BehaviorManager{logger: logger}
}

// LoadDirectory builds a fresh sandboxed VM and executes every *.lua file in
// dir in lexicographic order, replacing any previously loaded scripts.
//
// Precondition: dir must be a readable directory.
// Postcondition: On success all hooks defined by the scripts are callable;
// on error the previous VM (if any) is kept.
func (m *BehaviorManager) LoadDirectory(dir string, instLimit int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading behavior dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	L := newSandboxedState(instLimit)
	for _, path := range files {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.mu.Unlock()
	return nil
}

// LoadString executes a script from source against the current VM, creating
// one if needed. Intended for tests and embedded defaults.
func (m *BehaviorManager) LoadString(src string, instLimit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		m.state = newSandboxedState(instLimit)
	}
	if err := m.state.DoString(src); err != nil {
		return fmt.Errorf("scripting: loading inline script: %w", err)
	}
	return nil
}

// Close releases the VM.
func (m *BehaviorManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

// DecideBehavior runs the named hook against a snapshot of the combat state.
// ok is false when no VM is loaded, the hook is undefined, the script raised
// a runtime error, or the returned value does not describe a valid action;
// the AI router then falls back to the built-in policies. Lua errors are
// logged at Warn and never propagated.
func (m *BehaviorManager) DecideBehavior(hook string, s *combat.State, actor *combat.Combatant) (combat.Action, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		return combat.Action{}, false
	}
	fn := m.state.GetGlobal(hook)
	if fn == lua.LNil {
		return combat.Action{}, false
	}

	actorTbl := m.combatantTable(actor)
	foes := s.LivingOpponents(actor)
	foesTbl := m.state.NewTable()
	for _, f := range foes {
		foesTbl.Append(m.combatantTable(f))
	}

	if err := m.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, actorTbl, foesTbl); err != nil {
		m.logger.Warn("scripting: behavior hook error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return combat.Action{}, false
	}
	ret := m.state.Get(-1)
	m.state.Pop(1)

	return parseDecision(ret, s, actor)
}

// combatantTable builds the read-only Lua view of one combatant.
func (m *BehaviorManager) combatantTable(c *combat.Combatant) *lua.LTable {
	t := m.state.NewTable()
	m.state.SetField(t, "id", lua.LString(c.ID))
	m.state.SetField(t, "name", lua.LString(c.Name))
	m.state.SetField(t, "kind", lua.LString(c.Kind.String()))
	m.state.SetField(t, "hp", lua.LNumber(c.HP))
	m.state.SetField(t, "max_hp", lua.LNumber(c.Stats.MaxHP))
	m.state.SetField(t, "attack", lua.LNumber(c.EffectiveAttack()))
	m.state.SetField(t, "defense", lua.LNumber(c.EffectiveDefense()))
	m.state.SetField(t, "speed", lua.LNumber(c.EffectiveSpeed()))
	return t
}

// parseDecision converts a hook return value into an Action. "defend" (or a
// table with action="defend") defends; a table with action="attack" and a
// target id attacks, provided the target is a living opponent of actor.
func parseDecision(v lua.LValue, s *combat.State, actor *combat.Combatant) (combat.Action, bool) {
	defendAction := combat.Action{Type: combat.ActionDefend, ActorID: actor.ID}

	switch val := v.(type) {
	case lua.LString:
		if string(val) == "defend" {
			return defendAction, true
		}
		return combat.Action{}, false
	case *lua.LTable:
		action := lua.LVAsString(val.RawGetString("action"))
		switch action {
		case "defend":
			return defendAction, true
		case "attack":
			targetID := lua.LVAsString(val.RawGetString("target"))
			target := s.Combatant(targetID)
			if target == nil || !target.Alive || !actor.Opposes(target) {
				return combat.Action{}, false
			}
			return combat.Action{
				Type:     combat.ActionAttack,
				ActorID:  actor.ID,
				TargetID: targetID,
			}, true
		}
		return combat.Action{}, false
	default:
		return combat.Action{}, false
	}
}
