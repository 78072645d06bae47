package plan

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dyne/textsvc/internal/config"
	"github.com/dyne/textsvc/internal/log"
	"github.com/dyne/textsvc/internal/schema"
	"github.com/dyne/textsvc/internal/service"
	_ "modernc.org/sqlite"
)

// Resolver is satisfied by *service.Registry.
type Resolver interface {
	Resolve(key string) (service.TextService, error)
}

// Run prints, for each included table, which service every configured column
// would be run through. It fails on the first key the catalogue cannot resolve.
func Run(ctx context.Context, inPath string, cfg *config.Config, services Resolver, out io.Writer, logger *log.Logger) error {
	if cfg == nil {
		cfg = &config.Config{}
	}
	db, err := schema.OpenInput(inPath)
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := schema.Load(ctx, db)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Plan:")
	for _, name := range schema.TableOrder(s) {
		if !schema.Included(cfg.IncludeTables, cfg.ExcludeTables, name) {
			continue
		}
		fmt.Fprintf(out, "- %s\n", name)
		tbl := cfg.Tables[name]
		if tbl == nil || len(tbl.Columns) == 0 {
			fmt.Fprintln(out, "  (copied unchanged)")
			continue
		}
		cols := make([]string, 0, len(tbl.Columns))
		for c := range tbl.Columns {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, c := range cols {
			key := tbl.Columns[c]
			svc, err := services.Resolve(key)
			if err != nil {
				return fmt.Errorf("column %s.%s: %w", name, c, err)
			}
			note := ""
			if !s.Tables[name].HasColumn(c) {
				note = " (missing column)"
				logger.Warnf("table %s has no column %s", name, c)
			}
			fmt.Fprintf(out, "  - %s: %s [%s]%s\n", c, svc.Name(), service.NormalizeKey(key), note)
		}
	}
	logger.Infof("plan complete")
	return nil
}
