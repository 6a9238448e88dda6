// Package abstractor extracts the abstract section from scientific paper
// PDFs. Two strategies are available: a gap-based one that scans text
// blocks below the "Abstract" header and stops at the first irregular
// vertical gap, and an alignment-based one that picks the text element
// whose margins line up with the header. The engine runs one strategy,
// optionally falls back to the other, and can cache results in SQLite
// keyed by content hash.
package abstractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openpaper/abstractor/abstract"
	"github.com/openpaper/abstractor/page"
	"github.com/openpaper/abstractor/store"
)

// Method selects an extraction strategy.
type Method string

const (
	// MethodGapBased locates the abstract by absorbing text blocks after
	// the header until the vertical gaps turn irregular.
	MethodGapBased Method = "gap_based"

	// MethodAlignmentBased locates the abstract by finding the nearest
	// element below the header whose left and right edges align with it.
	MethodAlignmentBased Method = "alignment_based"
)

// Valid reports whether m names a supported strategy.
func (m Method) Valid() bool {
	switch m {
	case MethodGapBased, MethodAlignmentBased:
		return true
	}
	return false
}

// other returns the counterpart strategy used for fallback.
func (m Method) other() Method {
	if m == MethodGapBased {
		return MethodAlignmentBased
	}
	return MethodGapBased
}

// fileNotFoundMessage is recorded verbatim in Result.Error when the input
// path does not exist. Callers and stored rows match on this exact string.
const fileNotFoundMessage = "File not found"

// Result is the outcome of a single extraction.
type Result struct {
	// Path is the resolved absolute path of the input file.
	Path string `json:"path"`

	// Text is the extracted abstract, cleaned and joined. Empty when
	// Found is false.
	Text string `json:"text,omitempty"`

	// Found reports whether a strategy located an abstract.
	Found bool `json:"found"`

	// Method names the strategy behind the outcome. After a successful
	// fallback this is the fallback's method, not the one originally
	// requested.
	Method Method `json:"method"`

	// Error is the terminal failure message, empty otherwise. A discarded
	// fallback failure never appears here.
	Error string `json:"error,omitempty"`

	// Success is true exactly when Found is true and Error is empty.
	Success bool `json:"success"`

	// WordCount is the number of whitespace-separated words in Text.
	WordCount int `json:"word_count,omitempty"`

	// ElapsedMs is the wall time of the extraction in milliseconds.
	ElapsedMs int64 `json:"elapsed_ms,omitempty"`
}

// Engine is the main entry point for abstract extraction.
type Engine interface {
	// Extract locates the abstract in the PDF at path. The configured
	// method runs first; when it finds nothing and fallback is enabled,
	// the other method gets one try. All outcomes are reported through
	// the Result, never a panic or a lost error.
	Extract(ctx context.Context, path string, opts ...ExtractOption) Result

	// ExtractBatch runs Extract over paths concurrently. Results are
	// ordered like the input. The error is non-nil only when ctx is
	// cancelled; per-file failures stay inside their Result.
	ExtractBatch(ctx context.Context, paths []string) ([]Result, error)

	// Store returns the underlying cache store for diagnostic access,
	// or nil when caching is disabled.
	Store() *store.Store

	// Close cleanly shuts down the engine.
	Close() error
}

// Params carries the tuning knobs for both strategies. The same value is
// handed to whichever strategy runs; each reads the fields it understands
// and ignores the rest, so forwarding stays typed with no per-method
// plumbing.
type Params struct {
	// MinWords is the gap strategy's single-block acceptance threshold.
	MinWords int
	// InitialBlocks is the gap strategy's warm-up length.
	InitialBlocks int
	// GapThreshold is the gap strategy's relative deviation limit.
	GapThreshold float64
	// XTolerance is the alignment strategy's horizontal slack in points.
	XTolerance float64
}

// ExtractOption adjusts a single extraction run.
type ExtractOption func(*extractOptions)

type extractOptions struct {
	method     Method
	noFallback bool
	force      bool
	params     Params
}

// WithMethod overrides the configured primary strategy for this run.
func WithMethod(m Method) ExtractOption {
	return func(o *extractOptions) { o.method = m }
}

// WithoutFallback disables the second strategy for this run.
func WithoutFallback() ExtractOption {
	return func(o *extractOptions) { o.noFallback = true }
}

// WithForce bypasses the cache lookup for this run.
func WithForce() ExtractOption {
	return func(o *extractOptions) { o.force = true }
}

// WithXTolerance overrides the alignment strategy's horizontal slack for
// this run.
func WithXTolerance(v float64) ExtractOption {
	return func(o *extractOptions) { o.params.XTolerance = v }
}

// strategyFunc runs one strategy end to end: decode the first page, then
// locate the abstract. found is false when no abstract was identified.
type strategyFunc func(path string, p Params) (text string, found bool, err error)

// engine is the concrete implementation of Engine.
type engine struct {
	cfg   Config
	store *store.Store // nil when caching is disabled

	gap   strategyFunc
	align strategyFunc
}

// New creates an extraction engine with the given configuration. Zero
// config values resolve to the package defaults; a DBPath opens (or
// creates) the SQLite cache.
func New(cfg Config) (Engine, error) {
	if cfg.Method == "" {
		cfg.Method = MethodAlignmentBased
	}
	if !cfg.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, cfg.Method)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	e := &engine{cfg: cfg}
	e.gap = func(path string, p Params) (string, bool, error) {
		blocks, err := page.ReadBlocks(path)
		if err != nil {
			return "", false, err
		}
		return abstract.FromBlocks(blocks, abstract.GapParams{
			MinWords:      p.MinWords,
			InitialBlocks: p.InitialBlocks,
			GapThreshold:  p.GapThreshold,
		})
	}
	e.align = func(path string, p Params) (string, bool, error) {
		elems, err := page.ReadElements(path)
		if err != nil {
			return "", false, err
		}
		text, found := abstract.FromElements(elems, abstract.AlignParams{XTolerance: p.XTolerance})
		return text, found, nil
	}

	if cfg.DBPath != "" {
		s, err := store.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		e.store = s
	}
	return e, nil
}

// attempt is the outcome of one strategy invocation. A nil err with found
// false means the strategy ran cleanly and saw no abstract.
type attempt struct {
	text  string
	found bool
	err   error
}

// runStrategy dispatches one extraction attempt. Dispatch is a closed
// switch over the known methods, so an unexpected name is an error rather
// than a silent miss.
func (e *engine) runStrategy(m Method, path string, p Params) attempt {
	switch m {
	case MethodGapBased:
		text, found, err := e.gap(path, p)
		return attempt{text: text, found: found, err: err}
	case MethodAlignmentBased:
		text, found, err := e.align(path, p)
		return attempt{text: text, found: found, err: err}
	default:
		return attempt{err: fmt.Errorf("%w: %q", ErrUnknownMethod, m)}
	}
}

// Extract locates the abstract in a single PDF.
func (e *engine) Extract(ctx context.Context, path string, opts ...ExtractOption) Result {
	options := extractOptions{
		method:     e.cfg.Method,
		noFallback: e.cfg.NoFallback,
		force:      e.cfg.ForceReextract,
		params:     e.cfg.params(),
	}
	for _, o := range opts {
		o(&options)
	}

	start := time.Now()

	abs, err := filepath.Abs(path)
	if err != nil {
		return failureResult(path, options.method, "resolving path: "+err.Error(), time.Since(start))
	}
	filename := filepath.Base(abs)

	// The existence check runs before any strategy. A missing file must
	// never reach a decoder.
	if _, err := os.Stat(abs); err != nil {
		slog.Warn("extract: input file missing", "file", filename, "path", abs)
		return failureResult(abs, options.method, fileNotFoundMessage, time.Since(start))
	}

	// Cache lookup by content hash. A stored row for an unchanged file is
	// returned as-is, whichever strategy produced it.
	var hash string
	if e.store != nil {
		hash, err = fileHash(abs)
		if err != nil {
			slog.Warn("extract: hashing failed, skipping cache", "file", filename, "error", err)
			hash = ""
		} else if !options.force {
			cached, cerr := e.store.GetByPath(ctx, abs)
			if cerr == nil && cached.ContentHash == hash {
				slog.Info("extract: cache hit", "file", filename, "method", cached.Method)
				return resultFromCache(*cached)
			}
		}
	}

	slog.Debug("extract: starting", "file", filename,
		"method", options.method, "fallback", !options.noFallback)

	primary := e.runStrategy(options.method, abs, options.params)
	if primary.err != nil {
		slog.Warn("extract: strategy failed", "file", filename,
			"method", options.method, "error", primary.err)
		return e.save(ctx, hash, failureResult(abs, options.method, primary.err.Error(), time.Since(start)))
	}
	if primary.found {
		res := successResult(abs, primary.text, options.method, time.Since(start))
		slog.Info("extract: abstract found", "file", filename, "method", options.method,
			"words", res.WordCount, "elapsed", time.Since(start).Round(time.Millisecond))
		return e.save(ctx, hash, res)
	}

	if !options.noFallback {
		fb := options.method.other()
		slog.Info("extract: falling back", "file", filename, "from", options.method, "to", fb)
		alt := e.runStrategy(fb, abs, options.params)
		switch {
		case alt.err != nil:
			// A fallback failure is discarded. The primary's clean
			// not-found outcome stands.
			slog.Debug("extract: fallback failed", "file", filename, "method", fb, "error", alt.err)
		case alt.found:
			res := successResult(abs, alt.text, fb, time.Since(start))
			slog.Info("extract: abstract found via fallback", "file", filename, "method", fb,
				"words", res.WordCount, "elapsed", time.Since(start).Round(time.Millisecond))
			return e.save(ctx, hash, res)
		}
	}

	slog.Info("extract: no abstract found", "file", filename,
		"method", options.method, "elapsed", time.Since(start).Round(time.Millisecond))
	return e.save(ctx, hash, notFoundResult(abs, options.method, time.Since(start)))
}

// Store returns the underlying cache store, or nil when caching is
// disabled.
func (e *engine) Store() *store.Store {
	return e.store
}

// Close shuts down the engine.
func (e *engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// save persists the result when caching is enabled. Write failures are
// logged, not returned.
func (e *engine) save(ctx context.Context, hash string, res Result) Result {
	if e.store == nil || hash == "" {
		return res
	}
	_, err := e.store.SaveResult(ctx, store.Extraction{
		Path:        res.Path,
		Filename:    filepath.Base(res.Path),
		ContentHash: hash,
		Method:      string(res.Method),
		Abstract:    res.Text,
		Found:       res.Found,
		Error:       res.Error,
		WordCount:   res.WordCount,
		ElapsedMs:   res.ElapsedMs,
	})
	if err != nil {
		slog.Warn("extract: saving result failed", "file", res.Path, "error", err)
	}
	return res
}

func successResult(path, text string, m Method, elapsed time.Duration) Result {
	return Result{
		Path:      path,
		Text:      text,
		Found:     true,
		Method:    m,
		Success:   true,
		WordCount: len(strings.Fields(text)),
		ElapsedMs: elapsed.Milliseconds(),
	}
}

func notFoundResult(path string, m Method, elapsed time.Duration) Result {
	return Result{Path: path, Method: m, ElapsedMs: elapsed.Milliseconds()}
}

func failureResult(path string, m Method, msg string, elapsed time.Duration) Result {
	return Result{Path: path, Method: m, Error: msg, ElapsedMs: elapsed.Milliseconds()}
}

// resultFromCache rebuilds a Result from a stored extraction row.
func resultFromCache(row store.Extraction) Result {
	return Result{
		Path:      row.Path,
		Text:      row.Abstract,
		Found:     row.Found,
		Method:    Method(row.Method),
		Error:     row.Error,
		Success:   row.Found && row.Error == "",
		WordCount: row.WordCount,
		ElapsedMs: row.ElapsedMs,
	}
}

// fileHash computes the SHA-256 hash of a file's content.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
