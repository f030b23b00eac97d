package catalog

import "database/sql"

// CatalogSchema defines the catalog.db tables. Curves and points are stored
// relationally so individual series can be queried; the repository rebuilds
// the nested model structs on read.
const CatalogSchema = `
CREATE TABLE IF NOT EXISTS pump_models (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    pump_type TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS performance_curves (
    id TEXT PRIMARY KEY,
    pump_id TEXT NOT NULL REFERENCES pump_models(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    impeller_diameter_mm REAL NOT NULL,
    speed_rpm REAL NOT NULL,
    bep_flow_m3h REAL NOT NULL,
    bep_head_m REAL NOT NULL,
    bep_efficiency_pct REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS performance_points (
    curve_id TEXT NOT NULL REFERENCES performance_curves(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    flow_m3h REAL NOT NULL,
    head_m REAL NOT NULL,
    efficiency_pct REAL NOT NULL,
    power_kw REAL NOT NULL,
    suction_head_m REAL NOT NULL,
    PRIMARY KEY (curve_id, position)
);

CREATE INDEX IF NOT EXISTS idx_curves_pump ON performance_curves(pump_id, position);
CREATE INDEX IF NOT EXISTS idx_points_curve ON performance_points(curve_id, position);
`

// InitSchema ensures the catalog tables exist in catalog.db
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(CatalogSchema)
	return err
}
