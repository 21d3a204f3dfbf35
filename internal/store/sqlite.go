package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/climate-rank/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS disclosure_records (
	entity_id   TEXT NOT NULL,
	period      INTEGER NOT NULL,
	scope1      REAL,
	scope2      REAL,
	credibility TEXT,
	assured     INTEGER NOT NULL DEFAULT 0,
	targets     TEXT,
	PRIMARY KEY (entity_id, period)
);

CREATE TABLE IF NOT EXISTS rankings (
	id           TEXT PRIMARY KEY,
	profile      TEXT NOT NULL,
	config_hash  TEXT NOT NULL,
	generated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS ranking_entries (
	ranking_id TEXT NOT NULL REFERENCES rankings(id),
	position   INTEGER NOT NULL,
	entity_id  TEXT NOT NULL,
	overall    REAL NOT NULL,
	tier       TEXT NOT NULL,
	components TEXT NOT NULL,
	warnings   TEXT,
	PRIMARY KEY (ranking_id, position)
);

CREATE INDEX IF NOT EXISTS idx_rankings_profile ON rankings(profile);
CREATE INDEX IF NOT EXISTS idx_ranking_entries_entity ON ranking_entries(entity_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRecords(ctx context.Context, records []model.DisclosureRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range records {
		credJSON, targetsJSON, err := encodeRecordJSON(r)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO disclosure_records
				(entity_id, period, scope1, scope2, credibility, assured, targets)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.EntityID, r.Period, r.Scope1, r.Scope2, credJSON, r.Assured, targetsJSON)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert record %s/%d", r.EntityID, r.Period)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit records")
}

func (s *SQLiteStore) LoadRecords(ctx context.Context) ([]model.DisclosureRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_id, period, scope1, scope2, credibility, assured, targets
		FROM disclosure_records
		ORDER BY entity_id, period
	`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query records")
	}
	defer rows.Close()

	var records []model.DisclosureRecord
	for rows.Next() {
		var r model.DisclosureRecord
		var credJSON, targetsJSON sql.NullString
		if err := rows.Scan(&r.EntityID, &r.Period, &r.Scope1, &r.Scope2, &credJSON, &r.Assured, &targetsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		if err := decodeRecordJSON(&r, credJSON.String, targetsJSON.String); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate records")
	}
	return records, nil
}

func (s *SQLiteStore) SaveRanking(ctx context.Context, ranking *model.Ranking) (string, error) {
	id := uuid.New().String()
	generatedAt := ranking.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rankings (id, profile, config_hash, generated_at)
		VALUES (?, ?, ?, ?)
	`, id, ranking.Profile, ranking.ConfigHash, generatedAt)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert ranking")
	}

	for pos, score := range ranking.Scores {
		componentsJSON, warningsJSON, err := encodeScoreJSON(score)
		if err != nil {
			return "", err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ranking_entries (ranking_id, position, entity_id, overall, tier, components, warnings)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, pos+1, score.EntityID, score.Overall, string(score.Tier), componentsJSON, warningsJSON)
		if err != nil {
			return "", eris.Wrapf(err, "sqlite: insert entry %s", score.EntityID)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: commit ranking")
	}
	return id, nil
}

func (s *SQLiteStore) GetRanking(ctx context.Context, id string) (*model.Ranking, error) {
	ranking := &model.Ranking{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT profile, config_hash, generated_at FROM rankings WHERE id = ?
	`, id).Scan(&ranking.Profile, &ranking.ConfigHash, &ranking.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: ranking %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get ranking %s", id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_id, overall, tier, components, warnings
		FROM ranking_entries
		WHERE ranking_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query entries %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var score model.CompositeScore
		var tier string
		var componentsJSON string
		var warningsJSON sql.NullString
		if err := rows.Scan(&score.EntityID, &score.Overall, &tier, &componentsJSON, &warningsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entry")
		}
		score.Tier = model.Tier(tier)
		if err := decodeScoreJSON(&score, componentsJSON, warningsJSON.String); err != nil {
			return nil, err
		}
		ranking.Scores = append(ranking.Scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate entries")
	}
	return ranking, nil
}

func (s *SQLiteStore) ListRankings(ctx context.Context, limit int) ([]model.RankingSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.profile, r.config_hash, r.generated_at,
		       (SELECT COUNT(*) FROM ranking_entries e WHERE e.ranking_id = r.id)
		FROM rankings r
		ORDER BY r.generated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list rankings")
	}
	defer rows.Close()

	var summaries []model.RankingSummary
	for rows.Next() {
		var s model.RankingSummary
		if err := rows.Scan(&s.ID, &s.Profile, &s.ConfigHash, &s.GeneratedAt, &s.Entities); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan summary")
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate summaries")
	}
	return summaries, nil
}
