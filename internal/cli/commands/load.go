package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/chatstat/internal/logger"
	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/detector"
	"github.com/ccollicutt/chatstat/pkg/parser"
	"github.com/ccollicutt/chatstat/pkg/store"
	"github.com/ccollicutt/chatstat/pkg/table"
)

// loadedExport is one input file turned into a message table.
type loadedExport struct {
	Path  string
	Table *table.Table
	Notes []string

	// Parse is nil when the table came from a saved database.
	Parse *parser.Result
}

// newParser builds a parser honoring the parser section of cfg.
func newParser(cfg *config.Config) (*parser.Parser, error) {
	order, err := detector.ParseDateOrder(cfg.Parser.DateOrder)
	if err != nil {
		return nil, err
	}
	d := detector.New(
		detector.WithSampleSize(cfg.Parser.SampleSize),
		detector.WithDateOrder(order),
	)
	return parser.New(parser.WithDetector(d)), nil
}

// loadExport reads a text export or a saved database into a table.
func loadExport(ctx context.Context, path string, cfg *config.Config) (*loadedExport, error) {
	log := logger.FromContext(ctx).With("file", path)

	if store.IsDatabase(path) {
		tbl, err := store.LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded saved table", "rows", tbl.Len(), "format", tbl.Format())
		return &loadedExport{Path: path, Table: tbl, Notes: tableNotes(path, tbl)}, nil
	}

	p, err := newParser(cfg)
	if err != nil {
		return nil, err
	}
	res, err := p.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}

	tbl := table.Enrich(res.Segments, res.Format,
		table.WithMediaMarkers(cfg.Media.Markers),
		table.WithMediaPrefixes(cfg.Media.Prefixes),
		table.WithSource(filepath.Base(path)),
	)

	log.Debug("parsed export",
		"format", res.Format.Name,
		"lines", res.Lines,
		"segments", len(res.Segments),
		"preamble", res.Preamble,
		"empty_dropped", res.EmptyDropped)

	ex := &loadedExport{Path: path, Table: tbl, Parse: res}
	if det := res.Detection; det != nil {
		for _, note := range []string{det.AmbiguityNote, det.MixedNote} {
			if note != "" {
				log.Warn(note)
				ex.Notes = append(ex.Notes, fmt.Sprintf("%s: %s", filepath.Base(path), note))
			}
		}
	}
	ex.Notes = append(ex.Notes, tableNotes(path, tbl)...)
	for _, d := range tbl.Dropped() {
		log.Warn("row dropped", "line", d.Line, "timestamp", d.Text, "error", d.Err)
	}
	return ex, nil
}

func tableNotes(path string, tbl *table.Table) []string {
	var notes []string
	name := filepath.Base(path)
	if n := len(tbl.Dropped()); n > 0 {
		notes = append(notes, fmt.Sprintf("%s: %d row(s) dropped because their timestamp could not be parsed", name, n))
	}
	if n := tbl.OutOfOrder(); n > 0 {
		notes = append(notes, fmt.Sprintf("%s: %d row(s) are older than the row before them", name, n))
	}
	return notes
}

// loadAll loads every path concurrently. Results keep the order of paths.
func loadAll(ctx context.Context, paths []string, cfg *config.Config) ([]*loadedExport, error) {
	out := make([]*loadedExport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			ex, err := loadExport(ctx, path, cfg)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
			out[i] = ex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeExports combines loaded exports into one chronological export.
func mergeExports(exports []*loadedExport) *loadedExport {
	if len(exports) == 1 {
		return exports[0]
	}
	merged := &loadedExport{}
	tables := make([]*table.Table, len(exports))
	for i, ex := range exports {
		tables[i] = ex.Table
		merged.Notes = append(merged.Notes, ex.Notes...)
	}
	merged.Table = table.Merge(tables...)
	return merged
}
