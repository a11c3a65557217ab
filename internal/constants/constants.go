package constants

import "time"

const (
	PlayerRefreshTTL = 5 * time.Minute
	ClanRefreshTTL   = 10 * time.Minute
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// Cards revealed per "show more" step.
	ResultsPerPage = 15

	// Pattern widget covers the most recent games only.
	PatternGames = 5
)

const (
	TagMinLen = 3
	TagMaxLen = 12
)
