package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/climate-rank/internal/db"
	"github.com/sells-group/climate-rank/internal/model"
)

// PostgresStore implements Store over a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to the given database URL and returns a ready store.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Tests hand in a pgxmock pool.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS disclosure_records (
	entity_id   TEXT NOT NULL,
	period      INTEGER NOT NULL,
	scope1      DOUBLE PRECISION,
	scope2      DOUBLE PRECISION,
	credibility JSONB,
	assured     BOOLEAN NOT NULL DEFAULT FALSE,
	targets     JSONB,
	PRIMARY KEY (entity_id, period)
);

CREATE TABLE IF NOT EXISTS rankings (
	id           UUID PRIMARY KEY,
	profile      TEXT NOT NULL,
	config_hash  TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS ranking_entries (
	ranking_id UUID NOT NULL REFERENCES rankings(id),
	position   INTEGER NOT NULL,
	entity_id  TEXT NOT NULL,
	overall    DOUBLE PRECISION NOT NULL,
	tier       TEXT NOT NULL,
	components JSONB NOT NULL,
	warnings   JSONB,
	PRIMARY KEY (ranking_id, position)
);

CREATE INDEX IF NOT EXISTS idx_rankings_profile ON rankings(profile);
CREATE INDEX IF NOT EXISTS idx_ranking_entries_entity ON ranking_entries(entity_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// recordColumns matches the disclosure_records schema for bulk loads.
var recordColumns = []string{"entity_id", "period", "scope1", "scope2", "credibility", "assured", "targets"}

func (s *PostgresStore) SaveRecords(ctx context.Context, records []model.DisclosureRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		credJSON, targetsJSON, err := encodeRecordJSON(r)
		if err != nil {
			return err
		}
		rows = append(rows, []any{r.EntityID, r.Period, r.Scope1, r.Scope2, credJSON, r.Assured, targetsJSON})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "disclosure_records",
		Columns:      recordColumns,
		ConflictKeys: []string{"entity_id", "period"},
	}, rows)
	return eris.Wrap(err, "postgres: save records")
}

func (s *PostgresStore) LoadRecords(ctx context.Context) ([]model.DisclosureRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT entity_id, period, scope1, scope2, credibility, assured, targets
		FROM disclosure_records
		ORDER BY entity_id, period
	`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query records")
	}
	defer rows.Close()

	var records []model.DisclosureRecord
	for rows.Next() {
		var r model.DisclosureRecord
		var credJSON, targetsJSON *string
		if err := rows.Scan(&r.EntityID, &r.Period, &r.Scope1, &r.Scope2, &credJSON, &r.Assured, &targetsJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		if err := decodeRecordJSON(&r, deref(credJSON), deref(targetsJSON)); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate records")
	}
	return records, nil
}

func (s *PostgresStore) SaveRanking(ctx context.Context, ranking *model.Ranking) (string, error) {
	id := uuid.New().String()
	generatedAt := ranking.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO rankings (id, profile, config_hash, generated_at)
		VALUES ($1, $2, $3, $4)
	`, id, ranking.Profile, ranking.ConfigHash, generatedAt)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert ranking")
	}

	for pos, score := range ranking.Scores {
		componentsJSON, warningsJSON, err := encodeScoreJSON(score)
		if err != nil {
			return "", err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO ranking_entries (ranking_id, position, entity_id, overall, tier, components, warnings)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, id, pos+1, score.EntityID, score.Overall, string(score.Tier), componentsJSON, warningsJSON)
		if err != nil {
			return "", eris.Wrapf(err, "postgres: insert entry %s", score.EntityID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", eris.Wrap(err, "postgres: commit ranking")
	}
	return id, nil
}

func (s *PostgresStore) GetRanking(ctx context.Context, id string) (*model.Ranking, error) {
	ranking := &model.Ranking{ID: id}
	err := s.pool.QueryRow(ctx, `
		SELECT profile, config_hash, generated_at FROM rankings WHERE id = $1
	`, id).Scan(&ranking.Profile, &ranking.ConfigHash, &ranking.GeneratedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Errorf("postgres: ranking %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get ranking %s", id)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT entity_id, overall, tier, components, warnings
		FROM ranking_entries
		WHERE ranking_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query entries %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var score model.CompositeScore
		var tier, componentsJSON string
		var warningsJSON *string
		if err := rows.Scan(&score.EntityID, &score.Overall, &tier, &componentsJSON, &warningsJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entry")
		}
		score.Tier = model.Tier(tier)
		if err := decodeScoreJSON(&score, componentsJSON, deref(warningsJSON)); err != nil {
			return nil, err
		}
		ranking.Scores = append(ranking.Scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate entries")
	}
	return ranking, nil
}

func (s *PostgresStore) ListRankings(ctx context.Context, limit int) ([]model.RankingSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.profile, r.config_hash, r.generated_at,
		       (SELECT COUNT(*) FROM ranking_entries e WHERE e.ranking_id = r.id)
		FROM rankings r
		ORDER BY r.generated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list rankings")
	}
	defer rows.Close()

	var summaries []model.RankingSummary
	for rows.Next() {
		var s model.RankingSummary
		if err := rows.Scan(&s.ID, &s.Profile, &s.ConfigHash, &s.GeneratedAt, &s.Entities); err != nil {
			return nil, eris.Wrap(err, "postgres: scan summary")
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate summaries")
	}
	return summaries, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
