package batch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/dyne/textsvc/internal/config"
	"github.com/dyne/textsvc/internal/log"
	"github.com/dyne/textsvc/internal/schema"
	"github.com/dyne/textsvc/internal/service"
	_ "modernc.org/sqlite"
)

// chunkSize bounds how many rows are held in memory between reads and writes.
const chunkSize = 256

// ErrSamePath is returned when the output would overwrite the input.
var ErrSamePath = errors.New("input and output are the same file")

// Resolver is the part of the catalogue batch needs.
type Resolver interface {
	Resolve(key string) (service.TextService, error)
}

type Options struct {
	InPath   string
	OutPath  string
	Config   *config.Config
	Services Resolver
	FKMode   string
	Jobs     int
	Logger   *log.Logger
}

// Stats counts what a run touched, per table.
type Stats struct {
	Tables map[string]int
	Values int
}

// Run copies the included tables of InPath into a fresh OutPath database,
// replacing each configured column with the output of its service.
func Run(ctx context.Context, opts Options) (*Stats, error) {
	if opts.InPath == "" || opts.OutPath == "" {
		return nil, fmt.Errorf("input and output paths are required")
	}
	if opts.Services == nil {
		return nil, fmt.Errorf("service catalogue is required")
	}
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.FKMode == "" {
		opts.FKMode = "on"
	}
	same, err := samePath(opts.InPath, opts.OutPath)
	if err != nil {
		return nil, err
	}
	if same {
		return nil, fmt.Errorf("%w: %s", ErrSamePath, opts.OutPath)
	}
	inDB, err := schema.OpenInput(opts.InPath)
	if err != nil {
		return nil, err
	}
	defer inDB.Close()

	if err := os.RemoveAll(opts.OutPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove output: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(opts.OutPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	outDB, err := sql.Open("sqlite", schema.DSN(opts.OutPath))
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	defer outDB.Close()
	// PRAGMA foreign_keys is per connection.
	outDB.SetMaxOpenConns(1)

	if err := setFKMode(ctx, outDB, opts.FKMode); err != nil {
		return nil, err
	}
	s, err := schema.Load(ctx, inDB)
	if err != nil {
		return nil, err
	}
	order := includedTables(s, opts.Config)
	plans, err := buildPlans(s, order, opts)
	if err != nil {
		return nil, err
	}
	if err := createTables(ctx, outDB, s, order); err != nil {
		return nil, err
	}

	stats := &Stats{Tables: map[string]int{}}
	for _, name := range order {
		opts.Logger.Infof("copy table %s", name)
		n, err := copyTable(ctx, inDB, outDB, s.Tables[name], plans[name], opts)
		if err != nil {
			return nil, err
		}
		stats.Tables[name] = n
		stats.Values += n * len(plans[name])
		opts.Logger.Debugf("table %s: %d rows, %d service columns", name, n, len(plans[name]))
	}

	if err := createPostData(ctx, outDB, s, opts.Logger); err != nil {
		return nil, err
	}
	opts.Logger.Infof("batch complete")
	return stats, nil
}

// samePath compares cleaned absolute paths, then falls back to os.SameFile
// so links and hard links to the input are caught too.
func samePath(in, out string) (bool, error) {
	absIn, err := filepath.Abs(in)
	if err != nil {
		return false, fmt.Errorf("resolve input: %w", err)
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return false, fmt.Errorf("resolve output: %w", err)
	}
	if absIn == absOut {
		return true, nil
	}
	inInfo, err := os.Stat(absIn)
	if err != nil {
		return false, nil
	}
	outInfo, err := os.Stat(absOut)
	if err != nil {
		return false, nil
	}
	return os.SameFile(inInfo, outInfo), nil
}

func setFKMode(ctx context.Context, db *sql.DB, mode string) error {
	switch mode = strings.ToLower(mode); mode {
	case "on", "off":
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = "+strings.ToUpper(mode)); err != nil {
			return fmt.Errorf("set foreign_keys: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("invalid fk mode: %s", mode)
	}
}

func includedTables(s *schema.Schema, cfg *config.Config) []string {
	var out []string
	for _, name := range schema.TableOrder(s) {
		if schema.Included(cfg.IncludeTables, cfg.ExcludeTables, name) {
			out = append(out, name)
		}
	}
	return out
}

// columnPlan binds one column position to the service that rewrites it.
type columnPlan struct {
	column string
	index  int
	svc    service.TextService
}

// buildPlans resolves every configured service before any data moves so a
// typo fails the run early.
func buildPlans(s *schema.Schema, order []string, opts Options) (map[string][]columnPlan, error) {
	plans := map[string][]columnPlan{}
	for _, name := range order {
		tc := opts.Config.Tables[name]
		if tc == nil {
			continue
		}
		tbl := s.Tables[name]
		cols := make([]string, 0, len(tc.Columns))
		for col := range tc.Columns {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			idx := columnIndex(tbl, col)
			if idx < 0 {
				return nil, fmt.Errorf("table %s has no column %s", name, col)
			}
			svc, err := opts.Services.Resolve(tc.Columns[col])
			if err != nil {
				return nil, fmt.Errorf("column %s.%s: %w", name, col, err)
			}
			plans[name] = append(plans[name], columnPlan{column: col, index: idx, svc: svc})
		}
	}
	for name := range opts.Config.Tables {
		if _, ok := s.Tables[name]; !ok {
			opts.Logger.Warnf("configured table %s not found in input", name)
		}
	}
	return plans, nil
}

func columnIndex(tbl *schema.Table, name string) int {
	for i, c := range tbl.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func createTables(ctx context.Context, db *sql.DB, s *schema.Schema, order []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback()
	for _, name := range order {
		if _, err := tx.ExecContext(ctx, s.Tables[name].SQL); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// createPostData recreates indexes, views and triggers. Items that depend on
// excluded tables are skipped.
func createPostData(ctx context.Context, db *sql.DB, s *schema.Schema, logger *log.Logger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin post-data tx: %w", err)
	}
	defer tx.Rollback()
	groups := []struct {
		kind  string
		items []schema.SQLItem
	}{
		{"index", s.Indexes},
		{"view", s.Views},
		{"trigger", s.Triggers},
	}
	for _, g := range groups {
		for _, item := range g.items {
			if _, err := tx.ExecContext(ctx, item.SQL); err != nil {
				if strings.Contains(err.Error(), "no such table") {
					logger.Warnf("skip %s %s: %v", g.kind, item.Name, err)
					continue
				}
				return fmt.Errorf("create %s %s: %w", g.kind, item.Name, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit post-data: %w", err)
	}
	return nil
}

func copyTable(ctx context.Context, inDB, outDB *sql.DB, tbl *schema.Table, plan []columnPlan, opts Options) (int, error) {
	cols := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		cols[i] = schema.QuoteIdent(c.Name)
	}
	query := fmt.Sprintf("SELECT %s FROM %s %s", strings.Join(cols, ", "), schema.QuoteIdent(tbl.Name), orderBy(tbl))
	rows, err := inDB.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("select %s: %w", tbl.Name, err)
	}
	defer rows.Close()

	tx, err := outDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s: %w", tbl.Name, err)
	}
	defer tx.Rollback()
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", schema.QuoteIdent(tbl.Name), strings.Join(cols, ", "), placeholders(len(cols)))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("prepare insert %s: %w", tbl.Name, err)
	}
	defer stmt.Close()

	total := 0
	chunk := make([][]any, 0, chunkSize)
	flush := func() error {
		if err := applyChunk(ctx, chunk, plan, opts.Jobs); err != nil {
			return fmt.Errorf("transform %s: %w", tbl.Name, err)
		}
		for _, values := range chunk {
			if _, err := stmt.ExecContext(ctx, values...); err != nil {
				return fmt.Errorf("insert %s: %w", tbl.Name, err)
			}
		}
		total += len(chunk)
		chunk = chunk[:0]
		return nil
	}
	for rows.Next() {
		values := make([]any, len(cols))
		targets := make([]any, len(cols))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return 0, fmt.Errorf("scan row %s: %w", tbl.Name, err)
		}
		chunk = append(chunk, values)
		if len(chunk) == chunkSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate %s: %w", tbl.Name, err)
	}
	if err := flush(); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", tbl.Name, err)
	}
	return total, nil
}

// applyChunk rewrites the planned columns of every row in place. Rows are
// independent, so with jobs > 1 they are spread across workers; the chunk
// keeps its order either way.
func applyChunk(ctx context.Context, chunk [][]any, plan []columnPlan, jobs int) error {
	if len(plan) == 0 || len(chunk) == 0 {
		return nil
	}
	if jobs <= 1 {
		for _, values := range chunk {
			applyRow(values, plan)
		}
		return ctx.Err()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, values := range chunk {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			applyRow(values, plan)
			return nil
		})
	}
	return g.Wait()
}

func applyRow(values []any, plan []columnPlan) {
	for _, p := range plan {
		values[p.index] = applyValue(p.svc, values[p.index])
	}
}

// applyValue only touches text. NULLs and numbers pass through. BLOBs that
// hold UTF-8 are rewritten and stay BLOBs; other binary data is left alone.
func applyValue(svc service.TextService, v any) any {
	switch t := v.(type) {
	case string:
		return svc.Execute(t)
	case []byte:
		if !utf8.Valid(t) {
			return t
		}
		return []byte(svc.Execute(string(t)))
	default:
		return v
	}
}

func orderBy(tbl *schema.Table) string {
	if len(tbl.PrimaryKeys) > 0 {
		keys := make([]string, len(tbl.PrimaryKeys))
		for i, k := range tbl.PrimaryKeys {
			keys[i] = schema.QuoteIdent(k)
		}
		return "ORDER BY " + strings.Join(keys, ", ")
	}
	if !tbl.WithoutRowID {
		return "ORDER BY rowid"
	}
	return ""
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
