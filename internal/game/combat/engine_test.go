package combat_test

import (
	"strings"
	"testing"

	"github.com/rgault/duskfall/internal/game/combat"
	"github.com/rgault/duskfall/internal/game/effect"
	"github.com/rgault/duskfall/internal/game/encounter"
	"github.com/rgault/duskfall/internal/game/rng"
)

// testSetup builds a one-wolf encounter with a faster player.
// Player: attack 10, defense 5, speed 12, accuracy 80, evasion 5.
// Wolf: attack 8, defense 4, speed 8, accuracy 75, evasion 10, 30 HP.
func testSetup() (*encounter.Encounter, map[string]*encounter.EnemyTemplate, encounter.InitContext) {
	wolf := &encounter.EnemyTemplate{
		ID:   "wolf",
		Name: "Wolf",
		Stats: encounter.Stats{
			MaxHP: 30, Attack: 8, Defense: 4, Speed: 8,
			Accuracy: 75, Evasion: 10,
		},
		Behavior:   "aggressive",
		XPReward:   15,
		GoldReward: 5,
	}
	enc := &encounter.Encounter{
		ID:      "wolf-den",
		Name:    "Wolf Den",
		Enemies: []encounter.EnemyEntry{{EnemyID: "wolf", Count: 1}},
		CanFlee: true,
		Rewards: encounter.Rewards{
			XP:   20,
			Gold: 10,
			Items: []encounter.ItemDrop{
				{ItemID: "wolf-pelt", Quantity: 1, Chance: 0.5},
			},
		},
	}
	ctx := encounter.InitContext{
		PlayerName: "Rook",
		PlayerStats: encounter.Stats{
			MaxHP: 50, Attack: 10, Defense: 5, Speed: 12,
			Accuracy: 80, Evasion: 5,
		},
	}
	return enc, map[string]*encounter.EnemyTemplate{"wolf": wolf}, ctx
}

func startCombat(t *testing.T) (*combat.Engine, *combat.State) {
	t.Helper()
	enc, templates, ctx := testSetup()
	eng := combat.NewEngine(combat.Tuning{}, nil)
	s, err := eng.Start(enc, templates, ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return eng, eng.Begin(s)
}

func TestStartBuildsRoster(t *testing.T) {
	enc, templates, ctx := testSetup()
	enc.Enemies = []encounter.EnemyEntry{{EnemyID: "wolf", Count: 2}}
	ctx.CurrentHP = 35

	eng := combat.NewEngine(combat.Tuning{}, nil)
	s, err := eng.Start(enc, templates, ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if s.Phase != combat.PhaseInitializing {
		t.Errorf("Phase = %v, want initializing", s.Phase)
	}
	if s.Round != 1 {
		t.Errorf("Round = %d, want 1", s.Round)
	}
	if len(s.Combatants) != 3 {
		t.Fatalf("len(Combatants) = %d, want 3", len(s.Combatants))
	}

	player := s.Player()
	if player == nil || player.ID != "player" {
		t.Fatalf("Player() = %+v, want id player", player)
	}
	if player.HP != 35 {
		t.Errorf("player HP = %d, want 35 from context", player.HP)
	}

	first := s.Combatant("enemy-1")
	second := s.Combatant("enemy-2")
	if first == nil || second == nil {
		t.Fatal("expected enemy-1 and enemy-2 in roster")
	}
	if first.Name != "Wolf 1" || second.Name != "Wolf 2" {
		t.Errorf("enemy names = %q, %q, want Wolf 1, Wolf 2", first.Name, second.Name)
	}
	if first.DefinitionID != "wolf" {
		t.Errorf("enemy DefinitionID = %q, want wolf", first.DefinitionID)
	}
	if len(s.TurnOrder) != 3 {
		t.Errorf("len(TurnOrder) = %d, want 3", len(s.TurnOrder))
	}
}

func TestStartRejectsUnknownTemplate(t *testing.T) {
	enc, templates, ctx := testSetup()
	enc.Enemies = []encounter.EnemyEntry{{EnemyID: "dragon", Count: 1}}

	eng := combat.NewEngine(combat.Tuning{}, nil)
	if _, err := eng.Start(enc, templates, ctx); err == nil {
		t.Fatal("expected error for unknown enemy template")
	}
}

func TestStartClampsInvalidCurrentHP(t *testing.T) {
	enc, templates, ctx := testSetup()
	ctx.CurrentHP = 999

	eng := combat.NewEngine(combat.Tuning{}, nil)
	s, err := eng.Start(enc, templates, ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := s.Player().HP; got != 50 {
		t.Errorf("player HP = %d, want full 50 for out-of-range context HP", got)
	}
}

func TestBeginEntersFirstTurn(t *testing.T) {
	enc, templates, ctx := testSetup()
	eng := combat.NewEngine(combat.Tuning{}, nil)
	s, err := eng.Start(enc, templates, ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	begun := eng.Begin(s)
	if s.Phase != combat.PhaseInitializing {
		t.Error("Begin mutated its input state")
	}
	if begun.Phase != combat.PhasePlayerTurn {
		t.Errorf("Phase = %v, want player_turn for fastest player", begun.Phase)
	}
	if actor := begun.CurrentCombatant(); actor == nil || !actor.IsPlayer {
		t.Errorf("CurrentCombatant = %+v, want player", actor)
	}
}

func TestAttackHitDamagesTarget(t *testing.T) {
	eng, s := startCombat(t)

	// Hit chance 80-10 = 70: 0.5 hits, no crit roll matters at 0% crit,
	// variance 0.5 is neutral. Base damage floor(10 - 4*0.5) = 8.
	src := rng.NewSequence(0.5, 0.99, 0.5)
	ns, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionAttack, ActorID: "player", TargetID: "enemy-1",
	}, src)

	if !res.Success {
		t.Fatalf("attack failed: %s", res.Message)
	}
	if res.Damage != 8 {
		t.Errorf("Damage = %d, want 8", res.Damage)
	}
	if got := ns.Combatant("enemy-1").HP; got != 22 {
		t.Errorf("enemy HP = %d, want 22", got)
	}
	if got := s.Combatant("enemy-1").HP; got != 30 {
		t.Errorf("input state enemy HP = %d, want untouched 30", got)
	}
	if !ns.Combatant("player").HasActed {
		t.Error("attacker should be marked as having acted")
	}
	if ns.Log.Len() != 1 {
		t.Errorf("Log.Len = %d, want 1", ns.Log.Len())
	}
}

func TestAttackMissConsumesTurn(t *testing.T) {
	eng, s := startCombat(t)

	src := rng.NewSequence(0.9) // 90 >= 70, miss
	ns, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionAttack, ActorID: "player", TargetID: "enemy-1",
	}, src)

	if res.Success {
		t.Error("miss must not be a success")
	}
	if !res.Dodged {
		t.Error("miss must set Dodged")
	}
	if got := ns.Combatant("enemy-1").HP; got != 30 {
		t.Errorf("enemy HP = %d, want unchanged 30", got)
	}
	if !ns.Combatant("player").HasActed {
		t.Error("a miss still consumes the turn")
	}
	if src.Consumed() != 1 {
		t.Errorf("samples consumed = %d, want 1 for a miss", src.Consumed())
	}
}

func TestAttackAgainstDefenderIsReduced(t *testing.T) {
	eng, s := startCombat(t)

	defended, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionDefend, ActorID: "enemy-1",
	}, rng.NewSequence())
	if !res.Success || res.EffectApplied == nil || res.EffectApplied.Type != effect.Defending {
		t.Fatalf("defend result = %+v, want applied defending effect", res)
	}

	// Defense 4 scales to floor(4*1.5) = 6: base floor(10-3) = 7, then the
	// defend reduction floor(7*0.5) = 3.
	src := rng.NewSequence(0.5, 0.99, 0.5)
	_, res = eng.ProcessAction(defended, combat.Action{
		Type: combat.ActionAttack, ActorID: "player", TargetID: "enemy-1",
	}, src)

	if !res.Success {
		t.Fatalf("attack failed: %s", res.Message)
	}
	if !res.Blocked {
		t.Error("Blocked should be set against a defending target")
	}
	if res.Damage != 3 {
		t.Errorf("Damage = %d, want 3", res.Damage)
	}
}

func TestCriticalHit(t *testing.T) {
	enc, templates, ctx := testSetup()
	ctx.PlayerStats.CritChance = 50
	ctx.PlayerStats.CritMultiplier = 2

	eng := combat.NewEngine(combat.Tuning{}, nil)
	s, err := eng.Start(enc, templates, ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	s = eng.Begin(s)

	// Hit at 0.5, crit at 0.25 (25 < 50), neutral variance: 8 * 2 = 16.
	src := rng.NewSequence(0.5, 0.25, 0.5)
	_, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionAttack, ActorID: "player", TargetID: "enemy-1",
	}, src)

	if !res.Crit {
		t.Fatal("expected a critical hit")
	}
	if res.Damage != 16 {
		t.Errorf("Damage = %d, want 16", res.Damage)
	}
	if !strings.Contains(res.Message, "critically") {
		t.Errorf("Message = %q, want critical narration", res.Message)
	}
}

func TestKillingBlowEndsCombat(t *testing.T) {
	eng, s := startCombat(t)
	s.Combatant("enemy-1").HP = 5

	src := rng.NewSequence(0.5, 0.99, 0.5)
	ns, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionAttack, ActorID: "player", TargetID: "enemy-1",
	}, src)

	if enemy := ns.Combatant("enemy-1"); enemy.Alive || enemy.HP != 0 {
		t.Errorf("enemy = HP %d alive %v, want dead at 0", enemy.HP, enemy.Alive)
	}
	if !strings.Contains(res.Message, "falls") {
		t.Errorf("Message = %q, want kill narration", res.Message)
	}
	if ns.Phase != combat.PhaseVictory {
		t.Errorf("Phase = %v, want victory", ns.Phase)
	}
}

func TestItemHealsAndCaps(t *testing.T) {
	eng, s := startCombat(t)
	s.Combatant("player").HP = 40

	ns, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionItem, ActorID: "player", ItemID: "potion",
	}, rng.NewSequence())

	if !res.Success {
		t.Fatalf("item use failed: %s", res.Message)
	}
	// Placeholder heal is 30 but only 10 HP is missing.
	if res.Heal != 10 {
		t.Errorf("Heal = %d, want capped 10", res.Heal)
	}
	if got := ns.Combatant("player").HP; got != 50 {
		t.Errorf("player HP = %d, want 50", got)
	}
}

func TestItemWithoutIDFails(t *testing.T) {
	eng, s := startCombat(t)
	ns, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionItem, ActorID: "player",
	}, rng.NewSequence())
	if res.Success {
		t.Error("item use without an item id must fail")
	}
	if ns.Combatant("player").HasActed {
		t.Error("a rejected action must not consume the turn")
	}
}

func TestFleeSuccess(t *testing.T) {
	eng, s := startCombat(t)

	// Flee chance 40 + (12-8)*2 = 48: 0.4 escapes.
	src := rng.NewSequence(0.4)
	ns, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionFlee, ActorID: "player",
	}, src)

	if !res.Fled || !res.Success {
		t.Fatalf("result = %+v, want successful flee", res)
	}
	if ns.Phase != combat.PhaseFled {
		t.Errorf("Phase = %v, want fled", ns.Phase)
	}
	if src.Consumed() != 1 {
		t.Errorf("samples consumed = %d, want 1", src.Consumed())
	}
}

func TestFleeFailureConsumesTurn(t *testing.T) {
	eng, s := startCombat(t)

	src := rng.NewSequence(0.9) // 90 >= 48
	ns, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionFlee, ActorID: "player",
	}, src)

	if res.Fled || res.Success {
		t.Fatalf("result = %+v, want failed flee", res)
	}
	if ns.Phase.Terminal() {
		t.Errorf("Phase = %v, want non-terminal", ns.Phase)
	}
	if !ns.Combatant("player").HasActed {
		t.Error("a failed flee still consumes the turn")
	}
}

func TestFleeBlockedByEncounter(t *testing.T) {
	enc, templates, ctx := testSetup()
	enc.CanFlee = false
	eng := combat.NewEngine(combat.Tuning{}, nil)
	s, err := eng.Start(enc, templates, ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	s = eng.Begin(s)

	src := rng.NewSequence(0.0)
	ns, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionFlee, ActorID: "player",
	}, src)

	if res.Success {
		t.Error("flee must fail when the encounter forbids it")
	}
	if ns.Combatant("player").HasActed {
		t.Error("a rejected flee must not consume the turn")
	}
	if src.Consumed() != 0 {
		t.Errorf("samples consumed = %d, want 0 for a rejected flee", src.Consumed())
	}
}

func TestTerminalPhaseAbsorbs(t *testing.T) {
	eng, s := startCombat(t)
	s.Phase = combat.PhaseVictory

	ns, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionAttack, ActorID: "player", TargetID: "enemy-1",
	}, rng.NewSequence(0.0, 0.0, 0.5))
	if res.Success {
		t.Error("actions in a terminal phase must fail")
	}
	if ns.Phase != combat.PhaseVictory {
		t.Errorf("Phase = %v, want victory preserved", ns.Phase)
	}

	adv := eng.AdvanceTurn(ns)
	if adv.Phase != combat.PhaseVictory || adv.Round != ns.Round {
		t.Error("AdvanceTurn must be a no-op in a terminal phase")
	}
}

func TestDeadActorCannotAct(t *testing.T) {
	eng, s := startCombat(t)
	enemy := s.Combatant("enemy-1")
	enemy.HP = 0
	enemy.Alive = false
	s.Phase = combat.PhaseEnemyTurn

	_, res := eng.ProcessAction(s, combat.Action{
		Type: combat.ActionAttack, ActorID: "enemy-1", TargetID: "player",
	}, rng.NewSequence(0.0, 0.0, 0.5))
	if res.Success {
		t.Error("a dead combatant must not act")
	}
}

func TestAdvanceTurnMovesToEnemy(t *testing.T) {
	eng, s := startCombat(t)
	s.Combatant("player").HasActed = true

	ns := eng.AdvanceTurn(s)
	if ns.Phase != combat.PhaseEnemyTurn {
		t.Errorf("Phase = %v, want enemy_turn", ns.Phase)
	}
	actor := ns.CurrentCombatant()
	if actor == nil || actor.ID != "enemy-1" {
		t.Fatalf("CurrentCombatant = %+v, want enemy-1", actor)
	}
	if actor.HasActed {
		t.Error("new actor's HasActed must be cleared")
	}
	if ns.Round != 1 {
		t.Errorf("Round = %d, want 1 before wrap", ns.Round)
	}
}

func TestAdvanceTurnWrapStartsNewRound(t *testing.T) {
	eng, s := startCombat(t)

	s = eng.AdvanceTurn(s) // enemy's turn
	s = eng.AdvanceTurn(s) // wraps: round 2, player again

	if s.Round != 2 {
		t.Errorf("Round = %d, want 2 after wrap", s.Round)
	}
	if s.Phase != combat.PhasePlayerTurn {
		t.Errorf("Phase = %v, want player_turn", s.Phase)
	}
	if actor := s.CurrentCombatant(); actor == nil || !actor.IsPlayer {
		t.Errorf("CurrentCombatant = %+v, want player", actor)
	}
}

func TestAdvanceTurnSkipsDead(t *testing.T) {
	enc, templates, ctx := testSetup()
	enc.Enemies = []encounter.EnemyEntry{{EnemyID: "wolf", Count: 2}}
	eng := combat.NewEngine(combat.Tuning{}, nil)
	s, err := eng.Start(enc, templates, ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	s = eng.Begin(s)

	first := s.Combatant("enemy-1")
	first.HP = 0
	first.Alive = false

	ns := eng.AdvanceTurn(s)
	if actor := ns.CurrentCombatant(); actor == nil || actor.ID != "enemy-2" {
		t.Fatalf("CurrentCombatant = %+v, want enemy-2 after skipping the dead", actor)
	}
}

func TestRoundTickAppliesPoison(t *testing.T) {
	eng, s := startCombat(t)
	enemy := s.Combatant("enemy-1")
	enemy.Effects = append(enemy.Effects, effect.Effect{
		Type: effect.Poisoned, TurnsRemaining: 2, Value: 5,
	})

	s = eng.AdvanceTurn(s) // enemy's turn
	s = eng.AdvanceTurn(s) // wrap: round 2 ticks the poison

	enemy = s.Combatant("enemy-1")
	if enemy.HP != 25 {
		t.Errorf("enemy HP = %d, want 25 after one poison tick", enemy.HP)
	}
	if len(enemy.Effects) != 1 || enemy.Effects[0].TurnsRemaining != 1 {
		t.Fatalf("Effects = %+v, want one poison with 1 turn left", enemy.Effects)
	}

	s = eng.AdvanceTurn(s)
	s = eng.AdvanceTurn(s) // round 3: final tick, effect expires

	enemy = s.Combatant("enemy-1")
	if enemy.HP != 20 {
		t.Errorf("enemy HP = %d, want 20 after second tick", enemy.HP)
	}
	if len(enemy.Effects) != 0 {
		t.Errorf("Effects = %+v, want expired", enemy.Effects)
	}
}

func TestRoundTickCanDefeatPlayer(t *testing.T) {
	eng, s := startCombat(t)
	player := s.Combatant("player")
	player.HP = 3
	player.Effects = append(player.Effects, effect.Effect{
		Type: effect.Poisoned, TurnsRemaining: 3, Value: 10,
	})

	s = eng.AdvanceTurn(s)
	s = eng.AdvanceTurn(s) // wrap kills the player during the tick

	if s.Phase != combat.PhaseDefeat {
		t.Errorf("Phase = %v, want defeat", s.Phase)
	}
	if p := s.Player(); p.Alive || p.HP != 0 {
		t.Errorf("player = HP %d alive %v, want dead at 0", p.HP, p.Alive)
	}
}

func TestStunnedCombatantLosesSpeed(t *testing.T) {
	eng, s := startCombat(t)
	player := s.Combatant("player")
	player.Effects = append(player.Effects, effect.Effect{
		Type: effect.Stunned, TurnsRemaining: 2,
	})

	s = eng.AdvanceTurn(s)
	s = eng.AdvanceTurn(s) // round 2 recomputes order with the stun active

	// Player speed drops to 0, so the wolf now goes first.
	if actor := s.CurrentCombatant(); actor == nil || actor.ID != "enemy-1" {
		t.Errorf("CurrentCombatant = %+v, want enemy-1 first while player is stunned", actor)
	}
}
