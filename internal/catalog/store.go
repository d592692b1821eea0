// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists exported item catalogs in SQLite and serves
// lookups and full-text queries over them.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dkoval/itemharvest/internal/persist"
	"github.com/dkoval/itemharvest/internal/wiki"
	"github.com/dkoval/itemharvest/pkg/types"
)

const dbFile = "catalog.db"

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the catalog database at dir/catalog.db and
// creates the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := persist.EnsureDirectory(cfg.Directory); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", cfg.Directory+"/"+dbFile+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Directory, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS items (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			category TEXT NOT NULL,
			title TEXT,
			name TEXT,
			cost INTEGER,
			passive TEXT,
			active TEXT,
			disassemble INTEGER,
			bonus TEXT,
			abilities TEXT,
			recipe TEXT,
			UNIQUE(id, category)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='items_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE items_fts USING fts5(name, passive, active, content=items, content_rowid=rowid)`,
			`CREATE TRIGGER items_ai AFTER INSERT ON items BEGIN
				INSERT INTO items_fts(rowid, name, passive, active)
				VALUES (new.rowid, new.name, new.passive, new.active);
			END`,
			`CREATE TRIGGER items_ad AFTER DELETE ON items BEGIN
				INSERT INTO items_fts(items_fts, rowid, name, passive, active)
				VALUES('delete', old.rowid, old.name, old.passive, old.active);
			END`,
			`CREATE TRIGGER items_au AFTER UPDATE ON items BEGIN
				INSERT INTO items_fts(items_fts, rowid, name, passive, active)
				VALUES('delete', old.rowid, old.name, old.passive, old.active);
				INSERT INTO items_fts(rowid, name, passive, active)
				VALUES (new.rowid, new.name, new.passive, new.active);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a catalog indexing run.
type IngestSummary struct {
	Categories int
	Items      int
}

// Ingest reads an exported catalog JSON file and populates the database.
// Re-ingesting a category replaces its previous rows.
func (s *Store) Ingest(ctx context.Context, path string, w io.Writer) (IngestSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var export wiki.Export
	if err := json.Unmarshal(data, &export); err != nil {
		return IngestSummary{}, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	names := make([]string, 0, len(export))
	for name := range export {
		names = append(names, name)
	}
	sort.Strings(names)

	var summary IngestSummary
	for _, name := range names {
		n, err := s.ingestCategory(ctx, name, export[name])
		if err != nil {
			return summary, fmt.Errorf("indexing category %q: %w", name, err)
		}
		fmt.Fprintf(w, "indexed %q (%d items)\n", name, n)
		summary.Categories++
		summary.Items += n
	}

	fmt.Fprintf(w, "\nindexed: %d categories, %d items\n", summary.Categories, summary.Items)
	return summary, nil
}

func (s *Store) ingestCategory(ctx context.Context, category string, items []*types.Item) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE category = ?`, category); err != nil {
		return 0, fmt.Errorf("deleting old items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO items (id, category, title, name, cost, passive, active, disassemble, bonus, abilities, recipe)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, item := range items {
		var (
			cost        any
			passive     string
			active      string
			disassemble any
			bonusJSON   any
			abilityJSON any
			recipeJSON  any
		)
		if item.Cost != nil {
			cost = *item.Cost
		}
		if d := item.Detail; d != nil {
			passive = d.Passive
			active = d.Active
			if d.Disassemble != nil {
				disassemble = *d.Disassemble
			}
			if d.Bonus != nil {
				b, _ := json.Marshal(d.Bonus)
				bonusJSON = string(b)
			}
			if d.Abilities != nil {
				b, _ := json.Marshal(d.Abilities)
				abilityJSON = string(b)
			}
			if d.Recipe != nil {
				b, _ := json.Marshal(d.Recipe)
				recipeJSON = string(b)
			}
		}

		_, err := stmt.ExecContext(ctx,
			item.ID, category, item.Title, item.Name, cost,
			passive, active, disassemble, bonusJSON, abilityJSON, recipeJSON,
		)
		if err != nil {
			return count, fmt.Errorf("inserting item %s: %w", item.ID, err)
		}
		count++
	}

	return count, tx.Commit()
}
