// Package store persists disclosure records and ranking runs behind a
// driver-agnostic interface with SQLite and Postgres backends.
package store

import (
	"context"

	"github.com/sells-group/climate-rank/internal/model"
)

// Store is the persistence interface for the ranking pipeline.
type Store interface {
	// Records
	SaveRecords(ctx context.Context, records []model.DisclosureRecord) error
	LoadRecords(ctx context.Context) ([]model.DisclosureRecord, error)

	// Rankings
	SaveRanking(ctx context.Context, ranking *model.Ranking) (string, error)
	GetRanking(ctx context.Context, id string) (*model.Ranking, error)
	ListRankings(ctx context.Context, limit int) ([]model.RankingSummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
