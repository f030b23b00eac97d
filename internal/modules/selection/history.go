package selection

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// HistorySchema holds the selection-history table. Lives in the cache
// database: history is a convenience record, losing it is acceptable.
const HistorySchema = `
CREATE TABLE IF NOT EXISTS selection_history (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	flow_m3h REAL NOT NULL,
	head_m REAL NOT NULL,
	pump_type TEXT NOT NULL DEFAULT '',
	payload BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_selection_history_created_at
	ON selection_history(created_at);
`

// InitHistorySchema creates the history table if needed.
func InitHistorySchema(db *sql.DB) error {
	if _, err := db.Exec(HistorySchema); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// HistoryEntry is one stored selection run.
type HistoryEntry struct {
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"createdAt"`
	Duty      domain.DutyRequirement  `json:"duty"`
	Result    *domain.SelectionResult `json:"result"`
}

// historyPayload is the msgpack-encoded portion of a row. The duty rides in
// the blob next to the result so the indexed columns stay query-only.
type historyPayload struct {
	Duty   domain.DutyRequirement  `msgpack:"duty"`
	Result *domain.SelectionResult `msgpack:"result"`
}

// HistoryRepository persists selection runs.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Store saves a completed run and returns its generated id.
func (r *HistoryRepository) Store(duty domain.DutyRequirement, result *domain.SelectionResult) (string, error) {
	blob, err := msgpack.Marshal(historyPayload{Duty: duty, Result: result})
	if err != nil {
		return "", fmt.Errorf("failed to encode selection result: %w", err)
	}

	id := uuid.New().String()
	_, err = r.db.Exec(`
		INSERT INTO selection_history (id, created_at, flow_m3h, head_m, pump_type, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, time.Now().Unix(), duty.FlowM3H, duty.HeadM, string(duty.PumpType), blob)
	if err != nil {
		return "", fmt.Errorf("failed to store selection history: %w", err)
	}
	return id, nil
}

// Get loads one run by id. Returns sql.ErrNoRows when the id is unknown.
func (r *HistoryRepository) Get(id string) (*HistoryEntry, error) {
	row := r.db.QueryRow(`
		SELECT id, created_at, payload FROM selection_history WHERE id = ?`, id)

	var entry HistoryEntry
	var createdAt int64
	var blob []byte
	if err := row.Scan(&entry.ID, &createdAt, &blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load selection history: %w", err)
	}

	var payload historyPayload
	if err := msgpack.Unmarshal(blob, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode selection history %s: %w", id, err)
	}

	entry.CreatedAt = time.Unix(createdAt, 0)
	entry.Duty = payload.Duty
	entry.Result = payload.Result
	return &entry, nil
}

// Recent returns the latest runs, newest first, without payloads decoded
// beyond the duty summary columns. limit <= 0 defaults to 20.
func (r *HistoryRepository) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, created_at, flow_m3h, head_m, pump_type
		FROM selection_history
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list selection history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var createdAt int64
		var pumpType string
		if err := rows.Scan(&entry.ID, &createdAt, &entry.Duty.FlowM3H, &entry.Duty.HeadM, &pumpType); err != nil {
			return nil, fmt.Errorf("failed to scan selection history row: %w", err)
		}
		entry.CreatedAt = time.Unix(createdAt, 0)
		entry.Duty.PumpType = catalog.PumpType(pumpType)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Purge removes runs created before the cutoff and reports how many went.
func (r *HistoryRepository) Purge(before time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM selection_history WHERE created_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge selection history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged history rows: %w", err)
	}
	return n, nil
}
