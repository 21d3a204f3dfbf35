package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/climate-rank/internal/ingest"
	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "climate-rank.db"
		}
		st, err := store.NewSQLite(path)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// readRecordsFile loads disclosure records from a CSV, JSON, or XLSX file,
// dispatching on the file extension.
func readRecordsFile(path string) ([]model.DisclosureRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := openFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close() //nolint:errcheck
		return ingest.ReadCSV(f)
	case ".json":
		f, err := openFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close() //nolint:errcheck
		return ingest.ReadJSON(f)
	case ".xlsx":
		return ingest.ReadXLSX(path)
	default:
		return nil, eris.Errorf("unsupported input format %q (want .csv, .json, or .xlsx)", filepath.Ext(path))
	}
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	return f, nil
}
