package abstractor

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ExtractBatch runs Extract over paths with a bounded worker pool.
// Results correspond to paths by index. Per-file failures are recorded in
// their Result; the returned error is non-nil only when ctx was cancelled
// before all files were processed.
func (e *engine) ExtractBatch(ctx context.Context, paths []string) ([]Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	slog.Info("batch: processing files", "total", len(paths), "concurrency", e.cfg.Concurrency)

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		sem        = make(chan struct{}, e.cfg.Concurrency)
		completed  int
		batchStart = time.Now()
	)

	results := make([]Result, len(paths))
	total := len(paths)

	for i, p := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()

			// Acquire semaphore slot.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = failureResult(path, e.cfg.Method, ctx.Err().Error(), 0)
				return
			}

			fileStart := time.Now()
			results[i] = e.Extract(ctx, path)

			mu.Lock()
			completed++
			n := completed
			mu.Unlock()
			slog.Info("batch: file processed",
				"progress", fmt.Sprintf("%d/%d", n, total),
				"file", filepath.Base(path),
				"found", results[i].Found,
				"elapsed", time.Since(fileStart).Round(time.Millisecond))
		}(i, p)
	}

	wg.Wait()

	var found, failed int
	for _, r := range results {
		switch {
		case r.Success:
			found++
		case r.Error != "":
			failed++
		}
	}
	slog.Info("batch: complete", "total", total, "found", found,
		"not_found", total-found-failed, "failed", failed,
		"elapsed", time.Since(batchStart).Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// CollectPDFs walks dir and returns the paths of all PDF files under it,
// sorted for a deterministic batch order.
func CollectPDFs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no PDFs under %s", ErrNoInputs, dir)
	}
	sort.Strings(paths)
	return paths, nil
}
