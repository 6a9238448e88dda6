// Command e2e_test runs a smoke extraction against a real PDF: both
// strategies side by side, then the cache round-trip through the store.
// Useful for eyeballing behaviour on papers the unit fixtures cannot
// cover.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/openpaper/abstractor"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: e2e_test <pdf_path>")
		os.Exit(1)
	}
	pdfPath := os.Args[1]

	tmpDir, _ := os.MkdirTemp("", "abstractor-e2e-*")
	defer os.RemoveAll(tmpDir)

	cfg := abstractor.DefaultConfig()
	cfg.DBPath = tmpDir + "/test.db"

	engine, err := abstractor.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Run both strategies without fallback so their raw outcomes are
	// comparable side by side.
	outcomes := map[string]abstractor.Result{}
	for _, m := range []abstractor.Method{abstractor.MethodAlignmentBased, abstractor.MethodGapBased} {
		fmt.Fprintf(os.Stderr, "\n=== EXTRACTING (%s) ===\n", m)
		res := engine.Extract(ctx, pdfPath,
			abstractor.WithMethod(m), abstractor.WithoutFallback(), abstractor.WithForce())
		outcomes[string(m)] = res
		switch {
		case res.Success:
			fmt.Fprintf(os.Stderr, "found %d words in %dms\n", res.WordCount, res.ElapsedMs)
		case res.Error != "":
			fmt.Fprintf(os.Stderr, "failed: %s\n", res.Error)
		default:
			fmt.Fprintln(os.Stderr, "no abstract found")
		}
	}

	// Cache round-trip: with the row just written, a plain extract must be
	// served from the store.
	fmt.Fprintf(os.Stderr, "\n=== CACHE ROUND-TRIP ===\n")
	cached := engine.Extract(ctx, pdfPath)
	row, err := engine.Store().GetByPath(ctx, cached.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stored row missing: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "stored row id=%d method=%s found=%v\n", row.ID, row.Method, row.Found)

	out, _ := json.MarshalIndent(outcomes, "", "  ")
	fmt.Println(string(out))
}
