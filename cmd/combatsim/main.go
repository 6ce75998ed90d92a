// Package main provides the combat simulator binary: it loads enemy and
// encounter content, runs one encounter with an AI-driven player, and prints
// the battle narration. With -report it persists the outcome to PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rgault/duskfall/internal/config"
	"github.com/rgault/duskfall/internal/game/ai"
	"github.com/rgault/duskfall/internal/game/combat"
	"github.com/rgault/duskfall/internal/game/encounter"
	"github.com/rgault/duskfall/internal/game/rng"
	"github.com/rgault/duskfall/internal/observability"
	"github.com/rgault/duskfall/internal/scripting"
	"github.com/rgault/duskfall/internal/storage/postgres"
)

// maxRounds bounds a simulated battle so two walls never grind forever.
const maxRounds = 200

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	enemiesDir := flag.String("enemies-dir", "content/enemies", "path to enemy template YAML directory")
	encountersDir := flag.String("encounters-dir", "content/encounters", "path to encounter YAML directory")
	behaviorsDir := flag.String("behaviors-dir", "content/behaviors", "directory of Lua behavior scripts; empty = scripting disabled")
	encounterID := flag.String("encounter", "", "encounter id to run (required)")
	playerName := flag.String("player", "Wanderer", "player display name")
	seed := flag.Uint64("seed", 0, "deterministic seed; 0 = crypto randomness")
	report := flag.Bool("report", false, "persist the battle report to PostgreSQL")
	flag.Parse()

	if *encounterID == "" {
		log.Fatal("missing -encounter: which encounter to simulate")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	templates, err := encounter.LoadTemplates(*enemiesDir)
	if err != nil {
		logger.Fatal("loading enemy templates", zap.Error(err))
	}
	encounters, err := encounter.LoadEncounters(*encountersDir)
	if err != nil {
		logger.Fatal("loading encounters", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("enemy_templates", len(templates)),
		zap.Int("encounters", len(encounters)),
	)

	enc, ok := encounters[*encounterID]
	if !ok {
		logger.Fatal("unknown encounter", zap.String("encounter_id", *encounterID))
	}

	var scriptCaller ai.ScriptCaller
	if *behaviorsDir != "" {
		behaviors := scripting.NewBehaviorManager(logger)
		if err := behaviors.LoadDirectory(*behaviorsDir, cfg.Combat.ScriptInstructionLimit); err != nil {
			logger.Warn("loading behavior scripts, continuing without them", zap.Error(err))
		} else {
			defer behaviors.Close()
			scriptCaller = behaviors
		}
	}
	router := ai.NewRouter(scriptCaller, logger)

	var src rng.Source
	if *seed != 0 {
		src = rng.NewSeeded(*seed)
		logger.Info("deterministic mode", zap.Uint64("seed", *seed))
	} else {
		src = rng.NewCryptoSource()
	}

	eng := combat.NewEngine(combat.Tuning{
		VarianceFactor: cfg.Combat.VarianceFactor,
		CritMultiplier: cfg.Combat.CritMultiplier,
		LogCapacity:    cfg.Combat.LogCapacity,
		ItemHeal:       cfg.Combat.ItemHeal,
	}, logger)

	ctx := encounter.InitContext{
		PlayerName: *playerName,
		PlayerStats: encounter.Stats{
			MaxHP: 60, Attack: 12, Defense: 6, Speed: 10,
			Accuracy: 85, Evasion: 8, CritChance: 10,
		},
	}
	if err := ctx.Validate(); err != nil {
		logger.Fatal("invalid player context", zap.Error(err))
	}

	state, err := eng.Start(enc, templates, ctx)
	if err != nil {
		logger.Fatal("starting combat", zap.Error(err))
	}
	state = eng.Begin(state)

	fmt.Printf("=== %s ===\n", enc.Name)
	state = runBattle(eng, router, state, src)

	rewards := eng.ComputeRewards(state, src)
	printOutcome(state, rewards)

	if *report {
		persistReport(cfg, logger, state, rewards)
	}

	logger.Info("simulation finished",
		zap.String("outcome", state.Phase.String()),
		zap.Int("rounds", state.Round),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// runBattle drives every turn with the AI router until a terminal phase or
// the round cap. The player is driven like any other combatant, using the
// aggressive policy.
func runBattle(eng *combat.Engine, router *ai.Router, state *combat.State, src rng.Source) *combat.State {
	for !state.Phase.Terminal() && state.Round <= maxRounds {
		actor := state.CurrentCombatant()
		if actor == nil {
			break
		}

		action := router.Decide(state, actor, src)
		if ok, reason := combat.IsActionValid(state, action); !ok {
			fmt.Printf("  (%s: %s)\n", actor.Name, reason)
			state = eng.AdvanceTurn(state)
			continue
		}

		var res combat.Result
		state, res = eng.ProcessAction(state, action, src)
		fmt.Printf("  [round %d] %s\n", state.Round, res.Message)

		if !state.Phase.Terminal() {
			state = eng.AdvanceTurn(state)
		}
	}
	return state
}

func printOutcome(state *combat.State, rewards combat.RewardSummary) {
	fmt.Printf("\nOutcome: %s after %d round(s)\n", state.Phase, state.Round)
	if state.Phase != combat.PhaseVictory {
		return
	}
	fmt.Printf("Rewards: %d XP, %d gold\n", rewards.XP, rewards.Gold)
	for _, drop := range rewards.Loot {
		fmt.Printf("  loot: %s x%d\n", drop.ItemID, drop.Quantity)
	}
}

func persistReport(cfg config.Config, logger *zap.Logger, state *combat.State, rewards combat.RewardSummary) {
	if err := cfg.ValidateDatabase(); err != nil {
		logger.Fatal("database config", zap.Error(err))
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(dbCtx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	repo := postgres.NewReportRepository(pool.DB())
	saved, err := repo.Create(dbCtx, postgres.NewReport(state, rewards))
	if err != nil {
		logger.Fatal("saving battle report", zap.Error(err))
	}
	fmt.Fprintf(os.Stdout, "battle report saved (id=%d)\n", saved.ID)
}
