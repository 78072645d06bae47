package schema

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

// DSN is the connection string every command opens SQLite files with.
func DSN(file string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000", file)
}

// OpenInput opens an existing database file. The driver would otherwise
// create an empty database for a mistyped path.
func OpenInput(file string) (*sql.DB, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open input: %s is a directory", file)
	}
	db, err := sql.Open("sqlite", DSN(file))
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return db, nil
}

type Schema struct {
	Tables   map[string]*Table
	Indexes  []SQLItem
	Views    []SQLItem
	Triggers []SQLItem
}

type SQLItem struct {
	Name string
	SQL  string
}

type Table struct {
	Name         string
	SQL          string
	Columns      []Column
	PrimaryKeys  []string
	References   []string
	WithoutRowID bool
}

type Column struct {
	Name string
	Type string
	PK   bool
}

// Affinity follows SQLite's column affinity rules (section 3.1 of the
// datatype docs), which decide whether a column can hold text.
type Affinity string

const (
	AffinityText    Affinity = "TEXT"
	AffinityNumeric Affinity = "NUMERIC"
	AffinityInteger Affinity = "INTEGER"
	AffinityReal    Affinity = "REAL"
	AffinityBlob    Affinity = "BLOB"
)

func (c Column) Affinity() Affinity {
	t := strings.ToUpper(c.Type)
	switch {
	case strings.Contains(t, "INT"):
		return AffinityInteger
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return AffinityText
	case t == "" || strings.Contains(t, "BLOB"):
		return AffinityBlob
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return AffinityReal
	default:
		return AffinityNumeric
	}
}

// TextColumns returns the columns with TEXT affinity, in table order.
func (t *Table) TextColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.Affinity() == AffinityText {
			out = append(out, c.Name)
		}
	}
	return out
}

func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func Load(ctx context.Context, db *sql.DB) (*Schema, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, type, sql FROM sqlite_master WHERE name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite_master: %w", err)
	}
	s := &Schema{Tables: map[string]*Table{}}
	var tables []*Table
	for rows.Next() {
		var name, typ string
		var text sql.NullString
		if err := rows.Scan(&name, &typ, &text); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sqlite_master: %w", err)
		}
		if !text.Valid {
			continue
		}
		item := SQLItem{Name: name, SQL: text.String}
		switch typ {
		case "table":
			tbl := &Table{Name: name, SQL: text.String}
			tbl.WithoutRowID = strings.Contains(strings.ToUpper(text.String), "WITHOUT ROWID")
			tables = append(tables, tbl)
		case "index":
			s.Indexes = append(s.Indexes, item)
		case "view":
			s.Views = append(s.Views, item)
		case "trigger":
			s.Triggers = append(s.Triggers, item)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate sqlite_master: %w", err)
	}
	rows.Close()
	for _, tbl := range tables {
		if err := loadColumns(ctx, db, tbl); err != nil {
			return nil, err
		}
		if err := loadReferences(ctx, db, tbl); err != nil {
			return nil, err
		}
		s.Tables[tbl.Name] = tbl
	}
	return s, nil
}

func loadColumns(ctx context.Context, db *sql.DB, tbl *Table) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(tbl.Name)))
	if err != nil {
		return fmt.Errorf("table_info %s: %w", tbl.Name, err)
	}
	defer rows.Close()
	pkByPos := map[int]string{}
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("scan table_info %s: %w", tbl.Name, err)
		}
		tbl.Columns = append(tbl.Columns, Column{Name: name, Type: colType, PK: pk > 0})
		if pk > 0 {
			pkByPos[pk] = name
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table_info %s: %w", tbl.Name, err)
	}
	positions := make([]int, 0, len(pkByPos))
	for pos := range pkByPos {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	for _, pos := range positions {
		tbl.PrimaryKeys = append(tbl.PrimaryKeys, pkByPos[pos])
	}
	return nil
}

func loadReferences(ctx context.Context, db *sql.DB, tbl *Table) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", QuoteIdent(tbl.Name)))
	if err != nil {
		return fmt.Errorf("foreign_key_list %s: %w", tbl.Name, err)
	}
	defer rows.Close()
	seen := map[string]bool{}
	for rows.Next() {
		var id, seq int
		var parent, from string
		var to, onUpdate, onDelete, match sql.NullString
		if err := rows.Scan(&id, &seq, &parent, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return fmt.Errorf("scan foreign_key_list %s: %w", tbl.Name, err)
		}
		if !seen[parent] {
			seen[parent] = true
			tbl.References = append(tbl.References, parent)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate foreign_key_list %s: %w", tbl.Name, err)
	}
	return nil
}

func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// MatchAny reports whether name matches one of the glob patterns.
func MatchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Included applies include/exclude globs; an empty include list means all.
func Included(include, exclude []string, name string) bool {
	if len(include) > 0 && !MatchAny(include, name) {
		return false
	}
	return !MatchAny(exclude, name)
}

// TableOrder lists parents before the tables that reference them, breaking
// ties alphabetically. Tables caught in a cycle are appended at the end.
func TableOrder(s *Schema) []string {
	pending := map[string]int{}
	children := map[string][]string{}
	for name, tbl := range s.Tables {
		pending[name] += 0
		for _, parent := range tbl.References {
			if _, ok := s.Tables[parent]; !ok || parent == name {
				continue
			}
			children[parent] = append(children[parent], name)
			pending[name]++
		}
	}
	var ready, order []string
	for name, n := range pending {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		delete(pending, next)
		for _, child := range children[next] {
			pending[child]--
			if pending[child] == 0 {
				ready = append(ready, child)
			}
		}
	}
	rest := make([]string, 0, len(pending))
	for name := range pending {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(order, rest...)
}
