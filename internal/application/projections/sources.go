package projections

import (
	"context"
	"log/slog"
	"sync"
)

// source is one independent read feeding a report.
type source struct {
	name string
	load func(ctx context.Context) error
}

// loadSources runs every source concurrently and waits for all of them.
// A failed source is logged and reported as a warning; the caller keeps the
// zero value it was going to fill.
// POST: one warning per failed source, in the order the sources were given
func loadSources(ctx context.Context, report string, sources ...source) []string {
	errs := make([]error, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = src.load(ctx)
		}()
	}
	wg.Wait()

	var warnings []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		slog.Warn("report_source_failed", "report", report, "source", sources[i].name, "error", err.Error())
		warnings = append(warnings, sources[i].name+" unavailable: "+err.Error())
	}
	return warnings
}
