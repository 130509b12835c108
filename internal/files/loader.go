package files

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"adpulse/internal/dataprocessing"
)

// Loader reads batches of discovered files into raw tables.
type Loader struct {
	logger      *slog.Logger
	concurrency int
}

// NewLoader creates a loader. A nil logger falls back to slog.Default();
// concurrency below 1 becomes 4.
func NewLoader(logger *slog.Logger, concurrency int) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 4
	}
	return &Loader{
		logger:      logger.With(slog.String("component", "loader")),
		concurrency: concurrency,
	}
}

// LoadAll reads every file concurrently. Results are slotted by index so
// table order matches the discovery order regardless of which read finishes
// first; the pipeline's row-order contract depends on that.
func (l *Loader) LoadAll(ctx context.Context, infos []FileInfo) ([]dataprocessing.RawTable, error) {
	tables := make([]dataprocessing.RawTable, len(infos))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, info := range infos {
		i, info := i, info
		g.Go(func() error {
			table, err := ReadTable(info.Path)
			if err != nil {
				return err
			}
			tables[i] = table
			l.logger.InfoContext(ctx, "file loaded",
				slog.String("file", info.Name),
				slog.Int("rows", len(table.Rows)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
