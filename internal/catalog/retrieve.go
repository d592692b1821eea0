// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dkoval/itemharvest/pkg/types"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string, matched against item name
	// and ability text.
	Query string

	// Category filters by category name.
	Category string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Category == ""
}

// QueryResult is a catalog item with its category.
type QueryResult struct {
	types.Item `yaml:",inline"`
	Category   string `json:"category" yaml:"category"`
}

// Retrieve queries the catalog with optional full-text search and a category
// filter. Full-text queries are ranked by relevance; structured-only queries
// are sorted by category and item ID.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT i.id, i.category, i.title, i.name, i.cost,
				i.passive, i.active, i.disassemble, i.bonus, i.abilities, i.recipe
			FROM items_fts
			JOIN items i ON i.rowid = items_fts.rowid
			WHERE items_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT i.id, i.category, i.title, i.name, i.cost,
				i.passive, i.active, i.disassemble, i.bonus, i.abilities, i.recipe
			FROM items i
			WHERE 1=1`)
	}

	if opts.Category != "" {
		qb.WriteString(` AND i.category = ?`)
		args = append(args, opts.Category)
	}

	if useFTS {
		qb.WriteString(` ORDER BY items_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY i.category, i.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		qr, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, qr)
	}

	return results, rows.Err()
}

// Lookup returns one item by ID, searching all categories.
func (s *Store) Lookup(ctx context.Context, id string) (QueryResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT i.id, i.category, i.title, i.name, i.cost,
			i.passive, i.active, i.disassemble, i.bonus, i.abilities, i.recipe
		FROM items i WHERE i.id = ? LIMIT 1`, id)

	qr, err := scanItem(row)
	if err == sql.ErrNoRows {
		return qr, fmt.Errorf("item %s not found", id)
	}
	return qr, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (QueryResult, error) {
	var (
		qr          QueryResult
		cost        sql.NullInt64
		passive     sql.NullString
		active      sql.NullString
		disassemble sql.NullBool
		bonusJSON   sql.NullString
		abilityJSON sql.NullString
		recipeJSON  sql.NullString
	)

	err := row.Scan(&qr.ID, &qr.Category, &qr.Title, &qr.Name, &cost,
		&passive, &active, &disassemble, &bonusJSON, &abilityJSON, &recipeJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return qr, err
		}
		return qr, fmt.Errorf("scanning row: %w", err)
	}

	if cost.Valid {
		c := int(cost.Int64)
		qr.Cost = &c
	}

	detail := &types.ItemDetail{}
	hasDetail := false
	if passive.Valid && passive.String != "" {
		detail.Passive = passive.String
		hasDetail = true
	}
	if active.Valid && active.String != "" {
		detail.Active = active.String
		hasDetail = true
	}
	if disassemble.Valid {
		d := disassemble.Bool
		detail.Disassemble = &d
		hasDetail = true
	}
	if bonusJSON.Valid {
		json.Unmarshal([]byte(bonusJSON.String), &detail.Bonus)
		hasDetail = hasDetail || detail.Bonus != nil
	}
	if abilityJSON.Valid {
		json.Unmarshal([]byte(abilityJSON.String), &detail.Abilities)
		hasDetail = hasDetail || detail.Abilities != nil
	}
	if recipeJSON.Valid {
		json.Unmarshal([]byte(recipeJSON.String), &detail.Recipe)
		hasDetail = hasDetail || detail.Recipe != nil
	}
	if hasDetail {
		qr.Detail = detail
	}

	return qr, nil
}
