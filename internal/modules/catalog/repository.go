package catalog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles pump catalog database operations
type Repository struct {
	catalogDB *sql.DB // catalog.db - pump_models, performance_curves, performance_points
	log       zerolog.Logger
}

// NewRepository creates a new catalog repository
func NewRepository(catalogDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		catalogDB: catalogDB,
		log:       log.With().Str("repo", "catalog").Logger(),
	}
}

// GetAllModels returns every pump model with nested curves and points,
// ordered by model id. The returned slice is a fresh snapshot: callers may
// hold it for the duration of an evaluation without further synchronization.
func (r *Repository) GetAllModels() ([]PumpModel, error) {
	rows, err := r.catalogDB.Query(
		"SELECT id, name, pump_type FROM pump_models ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pump models: %w", err)
	}
	defer rows.Close()

	var models []PumpModel
	for rows.Next() {
		var m PumpModel
		var pumpType string
		if err := rows.Scan(&m.ID, &m.Name, &pumpType); err != nil {
			return nil, fmt.Errorf("failed to scan pump model: %w", err)
		}
		m.Type = PumpType(pumpType)
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pump models: %w", err)
	}

	for i := range models {
		curves, err := r.getCurves(models[i].ID)
		if err != nil {
			return nil, err
		}
		models[i].Curves = curves
	}

	return models, nil
}

// GetModel returns a pump model by id, or nil when not found
func (r *Repository) GetModel(id string) (*PumpModel, error) {
	row := r.catalogDB.QueryRow(
		"SELECT id, name, pump_type FROM pump_models WHERE id = ?",
		strings.TrimSpace(id))

	var m PumpModel
	var pumpType string
	if err := row.Scan(&m.ID, &m.Name, &pumpType); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Model not found
		}
		return nil, fmt.Errorf("failed to query pump model: %w", err)
	}
	m.Type = PumpType(pumpType)

	curves, err := r.getCurves(m.ID)
	if err != nil {
		return nil, err
	}
	m.Curves = curves

	return &m, nil
}

// getCurves loads the curves of one pump, points included, in stored order
func (r *Repository) getCurves(pumpID string) ([]PerformanceCurve, error) {
	rows, err := r.catalogDB.Query(`
		SELECT id, impeller_diameter_mm, speed_rpm, bep_flow_m3h, bep_head_m, bep_efficiency_pct
		FROM performance_curves WHERE pump_id = ? ORDER BY position`, pumpID)
	if err != nil {
		return nil, fmt.Errorf("failed to query curves for pump %s: %w", pumpID, err)
	}
	defer rows.Close()

	var curves []PerformanceCurve
	for rows.Next() {
		var c PerformanceCurve
		if err := rows.Scan(&c.ID, &c.ImpellerDiameterMM, &c.SpeedRPM,
			&c.BEP.FlowM3H, &c.BEP.HeadM, &c.BEP.EfficiencyPct); err != nil {
			return nil, fmt.Errorf("failed to scan curve: %w", err)
		}
		curves = append(curves, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate curves: %w", err)
	}

	for i := range curves {
		points, err := r.getPoints(curves[i].ID)
		if err != nil {
			return nil, err
		}
		curves[i].Points = points
	}

	return curves, nil
}

func (r *Repository) getPoints(curveID string) ([]PerformancePoint, error) {
	rows, err := r.catalogDB.Query(`
		SELECT flow_m3h, head_m, efficiency_pct, power_kw, suction_head_m
		FROM performance_points WHERE curve_id = ? ORDER BY position`, curveID)
	if err != nil {
		return nil, fmt.Errorf("failed to query points for curve %s: %w", curveID, err)
	}
	defer rows.Close()

	var points []PerformancePoint
	for rows.Next() {
		var p PerformancePoint
		if err := rows.Scan(&p.FlowM3H, &p.HeadM, &p.EfficiencyPct, &p.PowerKW, &p.SuctionHeadM); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate points: %w", err)
	}

	return points, nil
}

// SaveModel inserts or replaces a pump model with all curves and points.
// The whole write happens in one transaction so readers never observe a
// half-written model.
func (r *Repository) SaveModel(m *PumpModel) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid pump model: %w", err)
	}

	tx, err := r.catalogDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	// Replace any existing rows for this model; cascades remove curves/points
	if _, err := tx.Exec("DELETE FROM pump_models WHERE id = ?", m.ID); err != nil {
		return fmt.Errorf("failed to delete existing pump model %s: %w", m.ID, err)
	}

	if _, err := tx.Exec(
		"INSERT INTO pump_models (id, name, pump_type, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		m.ID, m.Name, string(m.Type), now, now); err != nil {
		return fmt.Errorf("failed to insert pump model %s: %w", m.ID, err)
	}

	for ci, c := range m.Curves {
		if _, err := tx.Exec(`
			INSERT INTO performance_curves
				(id, pump_id, position, impeller_diameter_mm, speed_rpm, bep_flow_m3h, bep_head_m, bep_efficiency_pct)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, m.ID, ci, c.ImpellerDiameterMM, c.SpeedRPM,
			c.BEP.FlowM3H, c.BEP.HeadM, c.BEP.EfficiencyPct); err != nil {
			return fmt.Errorf("failed to insert curve %s: %w", c.ID, err)
		}

		for pi, p := range c.Points {
			if _, err := tx.Exec(`
				INSERT INTO performance_points
					(curve_id, position, flow_m3h, head_m, efficiency_pct, power_kw, suction_head_m)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				c.ID, pi, p.FlowM3H, p.HeadM, p.EfficiencyPct, p.PowerKW, p.SuctionHeadM); err != nil {
				return fmt.Errorf("failed to insert point %d of curve %s: %w", pi, c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pump model %s: %w", m.ID, err)
	}

	return nil
}

// DeleteModel removes a pump model and its curves. Returns whether a row existed.
func (r *Repository) DeleteModel(id string) (bool, error) {
	res, err := r.catalogDB.Exec("DELETE FROM pump_models WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete pump model %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// Count returns the number of pump models in the catalog
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.catalogDB.QueryRow("SELECT COUNT(*) FROM pump_models").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pump models: %w", err)
	}
	return n, nil
}
