package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ziprates/internal/metrics"
)

// PostgresPoolStorage backs Storage with a pgx connection pool. It is the
// driver the worker uses: pool sessions make the advisory locks real
// cross-instance locks.
type PostgresPoolStorage struct {
	pool *pgxpool.Pool
}

func OpenPostgresPool(ctx context.Context, dsn string) (*PostgresPoolStorage, error) {
	if dsn == "" {
		dsn = "postgres://localhost:5432/ziprates?sslmode=disable"
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PostgresPoolStorage{pool: pool}, nil
}

func (s *PostgresPoolStorage) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresPoolStorage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ReportPoolMetrics pushes current pool counters into the metrics gauges.
func (s *PostgresPoolStorage) ReportPoolMetrics() {
	st := s.pool.Stat()
	metrics.DBPoolTotalConns.WithLabelValues("postgrespool").Set(float64(st.TotalConns()))
	metrics.DBPoolIdleConns.WithLabelValues("postgrespool").Set(float64(st.IdleConns()))
	metrics.DBPoolAcquiredConns.WithLabelValues("postgrespool").Set(float64(st.AcquiredConns()))
}

func (s *PostgresPoolStorage) GetDatasetSnapshot(ctx context.Context, kind string) (*DatasetSnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, source_path, row_count, payload, fetched_at
		FROM dataset_snapshots
		WHERE kind=$1
		ORDER BY id DESC
		LIMIT 1
	`, kind)

	snap := DatasetSnapshot{Kind: kind}
	if err := row.Scan(&snap.ID, &snap.SourcePath, &snap.RowCount, &snap.Payload, &snap.FetchedAt); err != nil {
		return nil, nil
	}
	return &snap, nil
}

func (s *PostgresPoolStorage) SaveDatasetSnapshot(ctx context.Context, snap DatasetSnapshot) error {
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO dataset_snapshots (kind, source_path, row_count, payload, fetched_at)
		VALUES ($1,$2,$3,$4,$5)
	`, snap.Kind, snap.SourcePath, snap.RowCount, snap.Payload, snap.FetchedAt)
	return err
}

func (s *PostgresPoolStorage) ListDatasetSnapshots(ctx context.Context) ([]DatasetSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kind, source_path, row_count, fetched_at
		FROM dataset_snapshots
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DatasetSnapshot
	for rows.Next() {
		var snap DatasetSnapshot
		if err := rows.Scan(&snap.ID, &snap.Kind, &snap.SourcePath, &snap.RowCount, &snap.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *PostgresPoolStorage) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	row := s.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key=$1`, key)
	if err := row.Scan(&value); err != nil {
		return "", nil
	}
	return value, nil
}

func (s *PostgresPoolStorage) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at
	`, key, value, time.Now())
	return err
}

func (s *PostgresPoolStorage) GetScheduledJob(ctx context.Context, name string) (*ScheduledJob, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT last_run_at, last_duration_ms, last_success, last_error
		FROM scheduled_jobs WHERE name=$1
	`, name)

	job := ScheduledJob{Name: name}
	if err := row.Scan(&job.LastRunAt, &job.LastDurationMs, &job.LastSuccess, &job.LastError); err != nil {
		return nil, nil
	}
	return &job, nil
}

func (s *PostgresPoolStorage) UpdateScheduledJob(ctx context.Context, job ScheduledJob) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scheduled_jobs (name, last_run_at, last_duration_ms, last_success, last_error)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (name) DO UPDATE SET
			last_run_at=EXCLUDED.last_run_at,
			last_duration_ms=EXCLUDED.last_duration_ms,
			last_success=EXCLUDED.last_success,
			last_error=EXCLUDED.last_error
	`, job.Name, job.LastRunAt, job.LastDurationMs, job.LastSuccess, job.LastError)
	return err
}

func (s *PostgresPoolStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, created_at, updated_at
		FROM users WHERE username=$1
	`, username)

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, nil
	}
	return &u, nil
}

func (s *PostgresPoolStorage) CreateUser(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	return err
}

func (s *PostgresPoolStorage) CreateToken(ctx context.Context, t Token) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tokens (id, user_id, name, token_hash, role, created_at, expires_at, last_used_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, t.ID, t.UserID, t.Name, t.TokenHash, t.Role, t.CreatedAt, t.ExpiresAt, t.LastUsedAt)
	return err
}

func (s *PostgresPoolStorage) GetTokenByHash(ctx context.Context, hash string) (*Token, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, token_hash, role, created_at, expires_at, last_used_at
		FROM tokens WHERE token_hash=$1
	`, hash)

	var t Token
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.TokenHash, &t.Role, &t.CreatedAt, &t.ExpiresAt, &t.LastUsedAt); err != nil {
		return nil, nil
	}
	return &t, nil
}

func (s *PostgresPoolStorage) UpdateTokenLastUsed(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE tokens SET last_used_at=$1 WHERE id=$2`, time.Now(), id)
	return err
}

func (s *PostgresPoolStorage) LoadCasbinRules(ctx context.Context) ([]CasbinRule, error) {
	rows, err := s.pool.Query(ctx, `SELECT ptype, v0, v1, v2, v3, v4, v5 FROM casbin_rules`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CasbinRule
	for rows.Next() {
		var r CasbinRule
		if err := rows.Scan(&r.PType, &r.V0, &r.V1, &r.V2, &r.V3, &r.V4, &r.V5); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresPoolStorage) AddCasbinRule(ctx context.Context, r CasbinRule) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO casbin_rules (ptype, v0, v1, v2, v3, v4, v5)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, r.PType, r.V0, r.V1, r.V2, r.V3, r.V4, r.V5)
	return err
}

func (s *PostgresPoolStorage) RemoveCasbinRule(ctx context.Context, r CasbinRule) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM casbin_rules WHERE ptype=$1 AND v0=$2 AND v1=$3 AND v2=$4
	`, r.PType, r.V0, r.V1, r.V2)
	return err
}

func (s *PostgresPoolStorage) AcquireAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	if err := s.pool.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *PostgresPoolStorage) ReleaseAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	if err := s.pool.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, key).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
