package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

// ErrCombatNotFound is returned when a combat result lookup yields no rows.
var ErrCombatNotFound = errors.New("combat result not found")

// ErrCombatExists is returned when a result with the same combat id was already saved.
var ErrCombatExists = errors.New("combat result already exists")

// CombatRecord is one persisted combat outcome.
type CombatRecord struct {
	Result      combat.Result
	DungeonTier int
	Seed        uint64
	CreatedAt   time.Time
}

// LootRow is one stored loot item in generation order.
type LootRow struct {
	Position int
	Item     *inventory.Item
	Granted  bool
}

// lootRows flattens a result's loot, marking items that did not fit in the backpack.
func lootRows(res combat.Result) []LootRow {
	left := make(map[string]bool, len(res.Ungranted))
	for _, it := range res.Ungranted {
		left[it.ID] = true
	}
	rows := make([]LootRow, 0, len(res.Loot))
	for i, it := range res.Loot {
		rows = append(rows, LootRow{Position: i, Item: it, Granted: !left[it.ID]})
	}
	return rows
}

// CombatResultRepository persists finished combats and their loot.
type CombatResultRepository struct {
	db *pgxpool.Pool
}

// NewCombatResultRepository creates a CombatResultRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCombatResultRepository(db *pgxpool.Pool) *CombatResultRepository {
	return &CombatResultRepository{db: db}
}

// Save stores rec and its loot in one transaction.
//
// Precondition: rec.Result.CombatID must be a UUID string.
// Postcondition: Returns ErrCombatExists if the combat id was already saved; on any
// error nothing is stored.
func (r *CombatResultRepository) Save(ctx context.Context, rec CombatRecord) (time.Time, error) {
	res := rec.Result
	penalties, err := json.Marshal(nonNil(res.Penalties))
	if err != nil {
		return time.Time{}, fmt.Errorf("encoding penalties: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var created time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO combat_results
		   (id, outcome, dungeon_tier, seed, turns_elapsed, experience, levels_gained,
		    gold, total_damage_dealt, total_damage_taken, penalties)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		res.CombatID, string(res.Outcome), rec.DungeonTier, int64(rec.Seed), res.TurnsElapsed,
		res.Experience, res.LevelsGained, res.Gold, res.TotalDamageDealt, res.TotalDamageTaken, penalties,
	).Scan(&created)
	if err != nil {
		if isDuplicateKeyError(err) {
			return time.Time{}, ErrCombatExists
		}
		return time.Time{}, fmt.Errorf("inserting combat result: %w", err)
	}

	batch := &pgx.Batch{}
	for _, row := range lootRows(res) {
		data, err := json.Marshal(row.Item)
		if err != nil {
			return time.Time{}, fmt.Errorf("encoding item %s: %w", row.Item.ID, err)
		}
		batch.Queue(
			`INSERT INTO combat_loot
			   (combat_id, position, item_id, template_id, name, item_type, rarity, level, granted, item)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			res.CombatID, row.Position, row.Item.ID, row.Item.TemplateID, row.Item.Name,
			string(row.Item.Type), string(row.Item.Rarity), row.Item.Level, row.Granted, data,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return time.Time{}, fmt.Errorf("inserting loot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return time.Time{}, fmt.Errorf("committing combat result: %w", err)
	}
	return created, nil
}

// Get loads the combat with id, including its loot.
//
// Postcondition: Returns ErrCombatNotFound if no such combat was saved.
func (r *CombatResultRepository) Get(ctx context.Context, id string) (CombatRecord, error) {
	var (
		rec       CombatRecord
		outcome   string
		seed      int64
		penalties []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT id::text, outcome, dungeon_tier, seed, turns_elapsed, experience, levels_gained,
		        gold, total_damage_dealt, total_damage_taken, penalties, created_at
		 FROM combat_results WHERE id = $1`,
		id,
	).Scan(&rec.Result.CombatID, &outcome, &rec.DungeonTier, &seed, &rec.Result.TurnsElapsed,
		&rec.Result.Experience, &rec.Result.LevelsGained, &rec.Result.Gold,
		&rec.Result.TotalDamageDealt, &rec.Result.TotalDamageTaken, &penalties, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CombatRecord{}, ErrCombatNotFound
		}
		return CombatRecord{}, fmt.Errorf("querying combat result: %w", err)
	}
	rec.Result.Outcome = combat.Outcome(outcome)
	rec.Seed = uint64(seed)
	if err := json.Unmarshal(penalties, &rec.Result.Penalties); err != nil {
		return CombatRecord{}, fmt.Errorf("decoding penalties: %w", err)
	}
	if len(rec.Result.Penalties) == 0 {
		rec.Result.Penalties = nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT item, granted FROM combat_loot WHERE combat_id = $1 ORDER BY position`, id)
	if err != nil {
		return CombatRecord{}, fmt.Errorf("querying loot: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			data    []byte
			granted bool
		)
		if err := rows.Scan(&data, &granted); err != nil {
			return CombatRecord{}, fmt.Errorf("scanning loot: %w", err)
		}
		it := &inventory.Item{}
		if err := json.Unmarshal(data, it); err != nil {
			return CombatRecord{}, fmt.Errorf("decoding loot item: %w", err)
		}
		rec.Result.Loot = append(rec.Result.Loot, it)
		if !granted {
			rec.Result.Ungranted = append(rec.Result.Ungranted, it)
		}
	}
	if err := rows.Err(); err != nil {
		return CombatRecord{}, fmt.Errorf("iterating loot: %w", err)
	}
	return rec, nil
}

// OutcomeCounts returns how many saved combats ended in each outcome.
func (r *CombatResultRepository) OutcomeCounts(ctx context.Context) (map[combat.Outcome]int, error) {
	rows, err := r.db.Query(ctx, `SELECT outcome, COUNT(*) FROM combat_results GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("querying outcome counts: %w", err)
	}
	defer rows.Close()
	out := make(map[combat.Outcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning outcome count: %w", err)
		}
		out[combat.Outcome(outcome)] = n
	}
	return out, rows.Err()
}

func nonNil(p []combat.Penalty) []combat.Penalty {
	if p == nil {
		return []combat.Penalty{}
	}
	return p
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
