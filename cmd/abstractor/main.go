// Command abstractor extracts the abstract section from academic PDF
// papers.
//
// Single file:
//
//	abstractor --method alignment_based paper.pdf
//
// Batch over a directory, caching results and writing a screening sheet:
//
//	abstractor --batch ./papers --db results.db --out screening.xlsx
//
// Batch over the papers listed in an existing screening sheet:
//
//	abstractor --list screening.xlsx --json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openpaper/abstractor"
	"github.com/openpaper/abstractor/screening"
	"github.com/openpaper/abstractor/store"
)

func main() {
	var (
		configPath    = flag.String("config", "", "Path to YAML or JSON config file")
		method        = flag.String("method", string(abstractor.MethodAlignmentBased), "Extraction method: gap_based, alignment_based")
		noFallback    = flag.Bool("no-fallback", false, "Disable fallback to the alternative method")
		xTolerance    = flag.Float64("x-tolerance", abstractor.DefaultXTolerance, "Horizontal alignment tolerance in points (alignment_based)")
		minWords      = flag.Int("min-words", abstractor.DefaultMinWords, "Word count above which a single block is the whole abstract (gap_based)")
		initialBlocks = flag.Int("initial-blocks", abstractor.DefaultInitialBlocks, "Blocks absorbed before gap checks begin (gap_based)")
		gapThreshold  = flag.Float64("gap-threshold", abstractor.DefaultGapThreshold, "Relative gap deviation that ends the abstract (gap_based)")
		batchDir      = flag.String("batch", "", "Extract every PDF under this directory")
		listPath      = flag.String("list", "", "Extract the PDFs listed in this screening sheet (.xlsx)")
		outPath       = flag.String("out", "", "Write batch results to this screening sheet (.xlsx)")
		dbPath        = flag.String("db", "", "Path to SQLite results database (enables caching)")
		concurrency   = flag.Int("concurrency", abstractor.DefaultConcurrency, "Parallel workers for batch extraction")
		force         = flag.Bool("force", false, "Re-extract even when a cached result exists")
		jsonOut       = flag.Bool("json", false, "Print results as JSON")
		verbose       = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	// Logging goes to stderr; stdout carries only extraction output.
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := abstractor.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = abstractor.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	// Explicitly set flags win over config file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "method":
			cfg.Method = abstractor.Method(*method)
		case "no-fallback":
			cfg.NoFallback = *noFallback
		case "x-tolerance":
			cfg.XTolerance = *xTolerance
		case "min-words":
			cfg.MinWords = *minWords
		case "initial-blocks":
			cfg.InitialBlocks = *initialBlocks
		case "gap-threshold":
			cfg.GapThreshold = *gapThreshold
		case "db":
			cfg.DBPath = *dbPath
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "force":
			cfg.ForceReextract = *force
		}
	})

	args := flag.Args()
	batchMode := *batchDir != "" || *listPath != ""
	switch {
	case *batchDir != "" && *listPath != "":
		log.Fatal("--batch and --list are mutually exclusive")
	case batchMode && len(args) > 0:
		log.Fatal("positional paths cannot be combined with --batch or --list")
	case !batchMode && *outPath != "":
		log.Fatal("--out requires --batch or --list")
	case !batchMode && len(args) != 1:
		log.Fatal("usage: abstractor [flags] <pdf_path>  (or --batch <dir> / --list <sheet.xlsx>)")
	}

	eng, err := abstractor.New(cfg)
	if err != nil {
		log.Fatalf("creating engine: %v", err)
	}
	defer eng.Close()

	ctx := context.Background()

	if !batchMode {
		runSingle(ctx, eng, args[0], *jsonOut)
		return
	}

	var paths []string
	if *batchDir != "" {
		paths, err = abstractor.CollectPDFs(*batchDir)
	} else {
		paths, err = screening.ReadPaths(*listPath)
	}
	if err != nil {
		log.Fatalf("collecting inputs: %v", err)
	}

	runBatch(ctx, eng, paths, *jsonOut, *outPath)
}

// runSingle extracts one file and prints the abstract (or the result JSON)
// to stdout. Exits 1 when no abstract was extracted.
func runSingle(ctx context.Context, eng abstractor.Engine, path string, jsonOut bool) {
	res := eng.Extract(ctx, path)

	if jsonOut {
		printJSON(os.Stdout, res)
		if !res.Success {
			os.Exit(1)
		}
		return
	}

	if !res.Success {
		if res.Error != "" {
			fmt.Fprintf(os.Stderr, "Error: failed to extract abstract: %s\n", res.Error)
		} else {
			fmt.Fprintln(os.Stderr, "Error: no abstract found")
		}
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Abstract extracted using %s method:\n\n", res.Method)
	fmt.Println(res.Text)
}

// runBatch extracts many files and reports per-file outcomes. Individual
// failures stay in their row; only a failure of the batch itself (or of
// writing its outputs) exits nonzero.
func runBatch(ctx context.Context, eng abstractor.Engine, paths []string, jsonOut bool, outPath string) {
	results, err := eng.ExtractBatch(ctx, paths)
	if err != nil {
		log.Fatalf("batch extraction: %v", err)
	}

	if outPath != "" {
		if err := screening.WriteSheet(outPath, sheetRows(results)); err != nil {
			log.Fatalf("writing screening sheet: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Screening sheet written to %s\n", outPath)
	}

	if jsonOut {
		printJSON(os.Stdout, results)
		return
	}

	var found, failed int
	for _, r := range results {
		switch {
		case r.Success:
			found++
			fmt.Printf("found      %s (%d words)\n", r.Path, r.WordCount)
		case r.Error != "":
			failed++
			fmt.Printf("error      %s: %s\n", r.Path, r.Error)
		default:
			fmt.Printf("not found  %s\n", r.Path)
		}
	}
	fmt.Printf("\n%d/%d abstracts found, %d errors\n", found, len(results), failed)
}

// sheetRows converts batch results into screening sheet rows.
func sheetRows(results []abstractor.Result) []store.Extraction {
	rows := make([]store.Extraction, len(results))
	for i, r := range results {
		rows[i] = store.Extraction{
			Path:      r.Path,
			Filename:  filepath.Base(r.Path),
			Method:    string(r.Method),
			Abstract:  r.Text,
			Found:     r.Found,
			Error:     r.Error,
			WordCount: r.WordCount,
			ElapsedMs: r.ElapsedMs,
		}
	}
	return rows
}

// printJSON marshals v to indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshaling JSON: %v", err)
	}
	fmt.Fprintln(w, string(data))
}
