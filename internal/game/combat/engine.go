package combat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rgault/duskfall/internal/game/damage"
	"github.com/rgault/duskfall/internal/game/effect"
	"github.com/rgault/duskfall/internal/game/encounter"
	"github.com/rgault/duskfall/internal/game/rng"
)

// DefaultItemHeal is the placeholder heal applied by item use when no item
// effect table is wired in.
const DefaultItemHeal = 30

// defendValue is the percent damage reduction recorded on a defending effect.
const defendValue = 50

// Tuning holds the engine's numeric knobs. Zero values fall back to the
// package defaults.
type Tuning struct {
	// VarianceFactor overrides damage.DefaultVarianceFactor.
	VarianceFactor float64
	// CritMultiplier is the fallback multiplier for combatants whose stat
	// block leaves it unset.
	CritMultiplier float64
	// LogCapacity bounds the combat log.
	LogCapacity int
	// ItemHeal overrides DefaultItemHeal for the placeholder item path.
	ItemHeal int
}

// ItemEffects resolves an item id to its heal amount. Item effect tables live
// outside the combat core; the engine only consumes this lookup.
type ItemEffects interface {
	// HealAmount returns the HP restored by using itemID.
	HealAmount(itemID string) int
}

// fixedHeal is the placeholder ItemEffects: every item heals the same amount.
type fixedHeal struct {
	amount int
}

func (f fixedHeal) HealAmount(string) int { return f.amount }

// TypeEffectiveness returns the type multiplier for an attack; 1 is neutral.
type TypeEffectiveness func(attacker, target *Combatant) float64

// Engine resolves encounters. All operations are synchronous functions from
// (state, action, samples) to (new state, result); the engine itself holds
// only configuration, never combat state.
type Engine struct {
	tuning  Tuning
	items   ItemEffects
	typeEff TypeEffectiveness
	logger  *zap.Logger
}

// NewEngine creates an Engine with the given tuning. A nil logger disables
// logging.
//
// Postcondition: Returns a non-nil Engine with placeholder item effects and
// neutral type effectiveness.
func NewEngine(tuning Tuning, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	itemHeal := tuning.ItemHeal
	if itemHeal <= 0 {
		itemHeal = DefaultItemHeal
	}
	return &Engine{
		tuning:  tuning,
		items:   fixedHeal{amount: itemHeal},
		typeEff: func(_, _ *Combatant) float64 { return 1 },
		logger:  logger,
	}
}

// SetItemEffects replaces the placeholder item-effect lookup.
//
// Precondition: items must not be nil.
func (e *Engine) SetItemEffects(items ItemEffects) {
	e.items = items
}

// SetTypeEffectiveness replaces the neutral type-effectiveness function.
//
// Precondition: fn must not be nil and must return > 0 for all inputs.
func (e *Engine) SetTypeEffectiveness(fn TypeEffectiveness) {
	e.typeEff = fn
}

// Start builds the initial combat state for enc: the player from ctx, then
// allies, then each enemy entry expanded count times with disambiguated
// display names. Round is 1 and the phase is initializing; call Begin to
// enter the first turn.
//
// Precondition: enc and ctx should have passed Validate.
// Postcondition: Returns a state whose turn order covers every living
// combatant, or an error naming the missing enemy template.
func (e *Engine) Start(enc *encounter.Encounter, templates map[string]*encounter.EnemyTemplate, ctx encounter.InitContext) (*State, error) {
	playerHP := ctx.CurrentHP
	if playerHP <= 0 || playerHP > ctx.PlayerStats.MaxHP {
		playerHP = ctx.PlayerStats.MaxHP
	}
	player := &Combatant{
		ID:       "player",
		Name:     ctx.PlayerName,
		Kind:     KindPlayer,
		IsPlayer: true,
		Stats:    ctx.PlayerStats,
		HP:       playerHP,
		WeaponID: ctx.WeaponID,
		Alive:    true,
		Fatigue:  ctx.Fatigue,
	}
	combatants := []*Combatant{player}

	for _, a := range ctx.Allies {
		combatants = append(combatants, &Combatant{
			ID:       a.ID,
			Name:     a.Name,
			Kind:     KindAlly,
			Stats:    a.Stats,
			HP:       a.Stats.MaxHP,
			WeaponID: a.WeaponID,
			Alive:    true,
			Behavior: a.Behavior,
		})
	}

	// Monotonic per-combat counter keeps instance ids unique without
	// leaning on clock resolution.
	instance := 0
	for _, entry := range enc.Enemies {
		tmpl, ok := templates[entry.EnemyID]
		if !ok {
			return nil, fmt.Errorf("combat: encounter %q references unknown enemy template %q", enc.ID, entry.EnemyID)
		}
		for i := 0; i < entry.Count; i++ {
			instance++
			name := tmpl.Name
			if entry.Count > 1 {
				name = fmt.Sprintf("%s %d", tmpl.Name, i+1)
			}
			combatants = append(combatants, &Combatant{
				ID:           fmt.Sprintf("enemy-%d", instance),
				DefinitionID: tmpl.ID,
				Name:         name,
				Kind:         KindEnemy,
				Stats:        tmpl.Stats,
				HP:           tmpl.Stats.MaxHP,
				WeaponID:     tmpl.WeaponID,
				Alive:        true,
				Behavior:     tmpl.Behavior,
				XPReward:     tmpl.XPReward,
				GoldReward:   tmpl.GoldReward,
				LootTableID:  tmpl.LootTableID,
			})
		}
	}

	s := &State{
		ID:          uuid.New().String(),
		EncounterID: enc.ID,
		Phase:       PhaseInitializing,
		Combatants:  combatants,
		TurnOrder:   ComputeTurnOrder(combatants),
		Round:       1,
		Log:         NewLog(e.tuning.LogCapacity),
		CanFlee:     enc.CanFlee,
		IsBoss:      enc.IsBoss,
		Rewards:     enc.Rewards,
	}
	e.logger.Info("combat started",
		zap.String("combat_id", s.ID),
		zap.String("encounter_id", enc.ID),
		zap.Int("combatants", len(combatants)),
	)
	return s, nil
}

// Begin transitions an initializing state to the first actor's turn phase.
// Any other phase is returned unchanged (cloned).
func (e *Engine) Begin(s *State) *State {
	ns := s.Clone()
	if ns.Phase != PhaseInitializing {
		return ns
	}
	if actor := ns.CurrentCombatant(); actor != nil {
		ns.Phase = phaseFor(actor.Kind)
	}
	e.checkOutcome(ns)
	return ns
}

// ProcessAction validates and dispatches one action against a clone of s.
//
// Sample consumption order for an attack: hit roll, crit roll, variance.
// Flee consumes one sample. Defend, item, and skill consume none.
//
// Postcondition: s is unchanged; the returned state carries the appended
// result and any terminal phase transition. A failure result mutates nothing
// except that a combat miss or failed flee marks the actor as having acted.
func (e *Engine) ProcessAction(s *State, a Action, src rng.Source) (*State, Result) {
	ns := s.Clone()
	res := e.dispatch(ns, a, src)
	ns.Log.Append(res)
	e.checkOutcome(ns)
	e.logger.Debug("action processed",
		zap.String("combat_id", ns.ID),
		zap.String("actor", a.ActorID),
		zap.String("action", a.Type.String()),
		zap.Bool("success", res.Success),
		zap.String("phase", ns.Phase.String()),
	)
	return ns, res
}

func (e *Engine) dispatch(ns *State, a Action, src rng.Source) Result {
	if ns.Phase.Terminal() {
		return failure("the battle is already over")
	}
	actor := ns.Combatant(a.ActorID)
	if actor == nil {
		return failure(fmt.Sprintf("combatant %q not found", a.ActorID))
	}
	if !actor.Alive {
		return failure(fmt.Sprintf("%s is down and cannot act", actor.Name))
	}

	switch a.Type {
	case ActionAttack:
		return e.resolveAttack(ns, actor, a, src)
	case ActionDefend:
		return e.resolveDefend(actor)
	case ActionItem:
		return e.resolveItem(actor, a)
	case ActionFlee:
		return e.resolveFlee(ns, actor, src)
	case ActionSkill:
		return failure(fmt.Sprintf("%s has no usable skills", actor.Name))
	default:
		return failure(fmt.Sprintf("unsupported action type %q", a.Type))
	}
}

func (e *Engine) resolveAttack(ns *State, actor *Combatant, a Action, src rng.Source) Result {
	target := ns.Combatant(a.TargetID)
	if target == nil || !target.Alive {
		return failure(fmt.Sprintf("%s has no valid target", actor.Name))
	}

	hitChance := damage.HitChance(actor.EffectiveAccuracy(), target.Stats.Evasion, 0)
	if !damage.RollHit(hitChance, src.Float64()) {
		actor.HasActed = true
		return Result{
			Dodged:    true,
			Message:   fmt.Sprintf("%s attacks %s but misses.", actor.Name, target.Name),
			Timestamp: time.Now(),
		}
	}

	crit := damage.RollCrit(actor.Stats.CritChance, src.Float64())
	defending := target.IsDefending()
	critMult := actor.Stats.CritMultiplier
	if critMult == 0 {
		critMult = e.tuning.CritMultiplier
	}
	dmg := damage.Resolve(damage.Input{
		Attack:          actor.EffectiveAttack(),
		Defense:         target.EffectiveDefense(),
		VarianceSample:  src.Float64(),
		VarianceFactor:  e.tuning.VarianceFactor,
		Crit:            crit,
		CritMultiplier:  critMult,
		Fatigue:         actor.Fatigue,
		TypeMultiplier:  e.typeEff(actor, target),
		TargetDefending: defending,
	})

	target.ApplyDamage(dmg)
	actor.HasActed = true

	verb := "hits"
	if crit {
		verb = "critically hits"
	}
	msg := fmt.Sprintf("%s %s %s for %d damage.", actor.Name, verb, target.Name, dmg)
	if !target.Alive {
		msg += fmt.Sprintf(" %s falls!", target.Name)
	}
	return Result{
		Success:   true,
		Damage:    dmg,
		Crit:      crit,
		Blocked:   defending,
		Message:   msg,
		Timestamp: time.Now(),
	}
}

func (e *Engine) resolveDefend(actor *Combatant) Result {
	applied := effect.Effect{
		Type:           effect.Defending,
		TurnsRemaining: 1,
		Value:          defendValue,
		SourceID:       actor.ID,
	}
	actor.Effects = append(actor.Effects, applied)
	actor.HasActed = true
	return Result{
		Success:       true,
		EffectApplied: &applied,
		Message:       fmt.Sprintf("%s takes a defensive stance.", actor.Name),
		Timestamp:     time.Now(),
	}
}

func (e *Engine) resolveItem(actor *Combatant, a Action) Result {
	if a.ItemID == "" {
		return failure(fmt.Sprintf("%s fumbles for an item but has none selected", actor.Name))
	}
	amount := e.items.HealAmount(a.ItemID)
	applied := damage.Heal(actor.HP, actor.Stats.MaxHP, amount)
	actor.ApplyHeal(applied)
	actor.HasActed = true
	return Result{
		Success:   true,
		Heal:      applied,
		Message:   fmt.Sprintf("%s uses %s and recovers %d HP.", actor.Name, a.ItemID, applied),
		Timestamp: time.Now(),
	}
}

func (e *Engine) resolveFlee(ns *State, actor *Combatant, src rng.Source) Result {
	if !ns.CanFlee {
		return failure("there is no escape from this battle")
	}

	opponents := ns.LivingOpponents(actor)
	var avgSpeed float64
	if len(opponents) > 0 {
		for _, o := range opponents {
			avgSpeed += o.EffectiveSpeed()
		}
		avgSpeed /= float64(len(opponents))
	}

	chance := damage.FleeChance(actor.EffectiveSpeed(), avgSpeed)
	if damage.RollHit(chance, src.Float64()) {
		ns.Phase = PhaseFled
		return Result{
			Success:   true,
			Fled:      true,
			Message:   fmt.Sprintf("%s escapes the battle!", actor.Name),
			Timestamp: time.Now(),
		}
	}
	actor.HasActed = true
	return Result{
		Message:   fmt.Sprintf("%s tries to flee but cannot get away.", actor.Name),
		Timestamp: time.Now(),
	}
}

// AdvanceTurn moves a clone of s to the next living combatant in turn order.
// Wrapping past the end of the order starts a new round: the round counter
// increments, status effects tick, and turn order is recomputed before the
// new round's first turn. The new actor's has-acted flag is cleared and the
// phase is set from its faction.
//
// Postcondition: s is unchanged. The returned state is terminal, or its
// CurrentCombatant is living with HasActed false.
func (e *Engine) AdvanceTurn(s *State) *State {
	ns := s.Clone()
	if ns.Phase.Terminal() {
		return ns
	}

	idx := ns.CurrentTurnIndex
	// Two full passes bound the scan: one over the stale order, one over
	// the recomputed order after the round tick.
	for tries := 0; tries <= 2*len(ns.TurnOrder)+2; tries++ {
		idx++
		if idx >= len(ns.TurnOrder) {
			e.startRound(ns)
			if ns.Phase.Terminal() || len(ns.TurnOrder) == 0 {
				return ns
			}
			idx = 0
		}
		if actor := ns.Combatant(ns.TurnOrder[idx]); actor != nil && actor.Alive {
			ns.CurrentTurnIndex = idx
			actor.HasActed = false
			ns.Phase = phaseFor(actor.Kind)
			return ns
		}
	}
	return ns
}

// startRound increments the round, ticks status effects on every living
// combatant, and recomputes turn order.
func (e *Engine) startRound(ns *State) {
	ns.Round++
	e.tickEffects(ns)
	ns.TurnOrder = ComputeTurnOrder(ns.Combatants)
	ns.CurrentTurnIndex = 0
	e.checkOutcome(ns)
	e.logger.Debug("round started",
		zap.String("combat_id", ns.ID),
		zap.Int("round", ns.Round),
		zap.Int("alive", len(ns.TurnOrder)),
	)
}

// tickEffects applies damage-over-time for every living combatant, then
// decrements effect durations. A combatant can die mid-pass; its remaining
// effects stop ticking.
func (e *Engine) tickEffects(ns *State) {
	for _, c := range ns.Combatants {
		if !c.Alive || len(c.Effects) == 0 {
			continue
		}
		for _, eff := range c.Effects {
			if !c.Alive {
				break
			}
			dmg := damage.OverTime(eff.Type, eff.Value, float64(c.Stats.MaxHP))
			if dmg <= 0 {
				continue
			}
			c.ApplyDamage(dmg)
			msg := fmt.Sprintf("%s suffers %d %s damage.", c.Name, dmg, eff.Type)
			if !c.Alive {
				msg += fmt.Sprintf(" %s falls!", c.Name)
			}
			ns.Log.Append(Result{
				Success:   true,
				Damage:    dmg,
				Message:   msg,
				Timestamp: time.Now(),
			})
		}
		if c.Alive {
			c.Effects = effect.TickDurations(c.Effects)
		}
	}
}

// checkOutcome sets a terminal phase when the encounter is decided: defeat
// when the player is absent or dead, victory when every enemy is dead. It is
// a pure read of combatant state apart from the phase write and never leaves
// an existing terminal phase.
func (e *Engine) checkOutcome(ns *State) {
	if ns.Phase.Terminal() {
		return
	}
	player := ns.Player()
	if player == nil || !player.Alive {
		ns.Phase = PhaseDefeat
		e.logger.Info("combat ended", zap.String("combat_id", ns.ID), zap.String("outcome", "defeat"))
		return
	}
	for _, c := range ns.Combatants {
		if c.Kind == KindEnemy && c.Alive {
			return
		}
	}
	ns.Phase = PhaseVictory
	e.logger.Info("combat ended", zap.String("combat_id", ns.ID), zap.String("outcome", "victory"))
}

// failure builds a non-throwing failure result. Apart from the acted flag on
// misses and failed flees (set by the dispatch paths, not here), failures
// never mutate state.
func failure(msg string) Result {
	return Result{Message: msg, Timestamp: time.Now()}
}
