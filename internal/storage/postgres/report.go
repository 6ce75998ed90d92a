package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rgault/duskfall/internal/game/combat"
)

// ErrReportNotFound is returned when a battle report lookup yields no rows.
var ErrReportNotFound = errors.New("battle report not found")

// BattleReport is the persisted summary of one finished encounter.
type BattleReport struct {
	ID          int64
	CombatID    string
	EncounterID string
	PlayerName  string
	// Outcome is the terminal phase label: "victory", "defeat", or "fled".
	Outcome string
	Rounds  int
	XP      int
	Gold    int
	Loot    []combat.LootDrop
	// LogTail holds the retained combat log messages, oldest first.
	LogTail   []string
	CreatedAt time.Time
}

// NewReport summarizes a terminal combat state and its rewards into a
// BattleReport ready for insertion.
//
// Precondition: s.Phase must be terminal.
func NewReport(s *combat.State, rewards combat.RewardSummary) BattleReport {
	var tail []string
	for _, r := range s.Log.Entries() {
		tail = append(tail, r.Message)
	}
	var playerName string
	if p := s.Player(); p != nil {
		playerName = p.Name
	}
	return BattleReport{
		CombatID:    s.ID,
		EncounterID: s.EncounterID,
		PlayerName:  playerName,
		Outcome:     s.Phase.String(),
		Rounds:      s.Round,
		XP:          rewards.XP,
		Gold:        rewards.Gold,
		Loot:        rewards.Loot,
		LogTail:     tail,
	}
}

// ReportRepository provides battle-report persistence operations.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new battle report and returns it with ID and CreatedAt set.
//
// Precondition: r.CombatID and r.EncounterID must be non-empty.
func (r *ReportRepository) Create(ctx context.Context, report BattleReport) (*BattleReport, error) {
	lootJSON, err := json.Marshal(report.Loot)
	if err != nil {
		return nil, fmt.Errorf("marshalling loot: %w", err)
	}
	logJSON, err := json.Marshal(report.LogTail)
	if err != nil {
		return nil, fmt.Errorf("marshalling log tail: %w", err)
	}

	out := report
	err = r.db.QueryRow(ctx, `
		INSERT INTO battle_reports
			(combat_id, encounter_id, player_name, outcome, rounds, xp, gold, loot, log_tail)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`,
		report.CombatID, report.EncounterID, report.PlayerName, report.Outcome,
		report.Rounds, report.XP, report.Gold, lootJSON, logJSON,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting battle report: %w", err)
	}
	return &out, nil
}

// GetByCombatID returns the report for a combat session id.
//
// Postcondition: Returns ErrReportNotFound when no report exists.
func (r *ReportRepository) GetByCombatID(ctx context.Context, combatID string) (*BattleReport, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, combat_id, encounter_id, player_name, outcome, rounds, xp, gold, loot, log_tail, created_at
		FROM battle_reports WHERE combat_id = $1`,
		combatID,
	)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("querying battle report: %w", err)
	}
	return report, nil
}

// ListByEncounter returns up to limit reports for the encounter, newest first.
//
// Precondition: limit must be >= 1.
func (r *ReportRepository) ListByEncounter(ctx context.Context, encounterID string, limit int) ([]*BattleReport, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, combat_id, encounter_id, player_name, outcome, rounds, xp, gold, loot, log_tail, created_at
		FROM battle_reports WHERE encounter_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		encounterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle reports: %w", err)
	}
	defer rows.Close()

	var out []*BattleReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning battle report: %w", err)
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle reports: %w", err)
	}
	return out, nil
}

// scanReport reads one report row, decoding the JSON columns.
func scanReport(row pgx.Row) (*BattleReport, error) {
	var report BattleReport
	var lootJSON, logJSON []byte
	if err := row.Scan(
		&report.ID, &report.CombatID, &report.EncounterID, &report.PlayerName,
		&report.Outcome, &report.Rounds, &report.XP, &report.Gold,
		&lootJSON, &logJSON, &report.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lootJSON, &report.Loot); err != nil {
		return nil, fmt.Errorf("unmarshalling loot: %w", err)
	}
	if err := json.Unmarshal(logJSON, &report.LogTail); err != nil {
		return nil, fmt.Errorf("unmarshalling log tail: %w", err)
	}
	return &report, nil
}
