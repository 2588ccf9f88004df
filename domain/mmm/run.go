package mmm

import "time"

// RunRecord is the ledger entry for one pipeline run
type RunRecord struct {
	RunID       string    `db:"run_id"`
	Seed        int64     `db:"seed"`
	Samples     int       `db:"samples"`
	MissingMode string    `db:"missing_mode"`
	OutputPath  string    `db:"output_path"`
	Format      string    `db:"format"`
	Fingerprint string    `db:"fingerprint"`
	RSquared    float64   `db:"r_squared"`
	AdjRSquared float64   `db:"adj_r_squared"`
	HolidayCoef float64   `db:"holiday_coef"`
	CreatedAt   time.Time `db:"created_at"`
}
