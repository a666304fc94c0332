package storage

import "context"

// Storage abstracts persistence for dataset snapshots, settings, scheduled
// job bookkeeping and the auth tables. Lookup results are never stored;
// only parsed source datasets are, so restarts do not require the CSVs.
type Storage interface {
	// Dataset snapshots. Get returns the latest snapshot per kind, nil
	// when none exists.
	GetDatasetSnapshot(ctx context.Context, kind string) (*DatasetSnapshot, error)
	SaveDatasetSnapshot(ctx context.Context, snap DatasetSnapshot) error
	ListDatasetSnapshots(ctx context.Context) ([]DatasetSnapshot, error)

	// Settings (worker interval overrides and similar).
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Scheduled job bookkeeping.
	GetScheduledJob(ctx context.Context, name string) (*ScheduledJob, error)
	UpdateScheduledJob(ctx context.Context, job ScheduledJob) error

	// Users and API tokens.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, u User) error
	CreateToken(ctx context.Context, t Token) error
	GetTokenByHash(ctx context.Context, hash string) (*Token, error)
	UpdateTokenLastUsed(ctx context.Context, id string) error

	// Casbin policy rules.
	LoadCasbinRules(ctx context.Context) ([]CasbinRule, error)
	AddCasbinRule(ctx context.Context, r CasbinRule) error
	RemoveCasbinRule(ctx context.Context, r CasbinRule) error

	// Advisory locks so multi-instance workers run a job once. Memory and
	// sqlite backends always grant the lock (single instance).
	AcquireAdvisoryLock(ctx context.Context, key int64) (bool, error)
	ReleaseAdvisoryLock(ctx context.Context, key int64) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}
