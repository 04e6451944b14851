// Package analyzer runs the paired-file analysis: locate netlist/annex
// pairs in a directory, scan each pair for component labels and delays, and
// print its schematic.
//
// A file that cannot be read is reported and treated as empty. The batch
// always continues with the next pair.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/OpenTraceLab/OpenTraceSDF/internal/metrics"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/extract"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/pair"
	"github.com/OpenTraceLab/OpenTraceSDF/pkg/schematic"
)

// NoPairsMessage is printed when a directory holds no complete pair.
const NoPairsMessage = "No matching .v and .sdf files found."

// Analyzer holds the immutable inputs of an analysis run. Zero fields fall
// back to the built-in catalog, the first-value delay pattern, stdout and
// the default logger.
type Analyzer struct {
	Catalog *catalog.Catalog
	Delay   *catalog.DelayPattern
	Out     io.Writer
	Logger  *slog.Logger
	Metrics *metrics.Registry

	Aligned bool
	Verbose bool
	Exclude []string
}

// Result is the outcome of analyzing one pair.
type Result struct {
	Base       string
	Components extract.LabelSet
	Delays     []float64
	IOPaths    []extract.IOPath
	Errors     []error // read failures, one per unreadable file
}

func (a *Analyzer) catalog() *catalog.Catalog {
	if a.Catalog == nil {
		return catalog.Default()
	}
	return a.Catalog
}

func (a *Analyzer) delay() *catalog.DelayPattern {
	if a.Delay == nil {
		return catalog.FirstValuePattern()
	}
	return a.Delay
}

func (a *Analyzer) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// AnalyzeDir analyzes every pair in dir in base-name order. It fails only
// when dir is not a directory, on cancellation, or when the output stream
// cannot be written.
func (a *Analyzer) AnalyzeDir(ctx context.Context, dir string) error {
	pairs, err := pair.Locate(dir, pair.WithExclude(a.Exclude...))
	if err != nil {
		return err
	}

	w := a.out()
	if len(pairs) == 0 {
		_, err := fmt.Fprintln(w, NoPairsMessage)
		return err
	}
	a.logger().Debug("located pairs", "dir", dir, "count", len(pairs))

	r := schematic.NewRenderer(w, a.Aligned)
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "\n Analyzing pair: %s & %s\n", p.NetlistName(), p.AnnexName()); err != nil {
			return err
		}

		res, err := a.AnalyzePair(p)
		if err != nil {
			return err
		}
		if err := r.Render(schematic.Diagram{
			Base:       res.Base,
			Delays:     res.Delays,
			Components: res.Components,
		}); err != nil {
			return err
		}
		if a.Verbose {
			if err := r.RenderIOPaths(res.IOPaths); err != nil {
				return err
			}
		}
	}
	return nil
}

// AnalyzePair scans one pair. Labels are the union of both files; delays
// come from the annex only. Read failures and empty delay lists are
// reported on the output stream in the console wording users expect; they
// land in Result.Errors, and the returned error is set only when that
// output cannot be written.
func (a *Analyzer) AnalyzePair(p pair.Pair) (Result, error) {
	start := time.Now()
	log := a.logger().With("pair", p.Base)
	w := a.out()
	cat := a.catalog()

	res := Result{
		Base:       p.Base,
		Components: extract.LabelSet{},
		Delays:     []float64{},
		IOPaths:    []extract.IOPath{},
	}

	if content, err := a.read(p.NetlistPath, "netlist", log); err != nil {
		res.Errors = append(res.Errors, err)
		if err := reportRead(w, p.NetlistPath, err); err != nil {
			return res, err
		}
	} else {
		res.Components = res.Components.Union(extract.DetectLabels(content, cat))
	}

	if content, err := a.read(p.AnnexPath, "annex", log); err != nil {
		res.Errors = append(res.Errors, err)
		if err := reportRead(w, p.AnnexPath, err); err != nil {
			return res, err
		}
	} else {
		res.Components = res.Components.Union(extract.DetectLabels(content, cat))
		res.Delays = extract.ExtractDelays(content, a.delay())
		res.IOPaths = extract.ExtractIOPaths(content)
		if len(res.Delays) == 0 {
			log.Debug("no delay values", "path", p.AnnexPath)
			if _, err := fmt.Fprintf(w, "No delay values found in %s.\n", p.AnnexPath); err != nil {
				return res, err
			}
		}
	}

	labels := res.Components.Sorted()
	log.Debug("pair analyzed",
		"labels", labels,
		"delays", len(res.Delays),
		"errors", len(res.Errors))
	a.Metrics.RecordPair(labels, len(res.Delays), time.Since(start))
	return res, nil
}

// read loads one file, logging and counting any failure.
func (a *Analyzer) read(path, kind string, log *slog.Logger) (string, error) {
	content, err := extract.ReadFile(path)
	if err != nil {
		log.Warn("unreadable file", "kind", kind, "path", path, "error", err)
		a.Metrics.RecordUnreadable(kind)
		return "", err
	}
	return content, nil
}

// reportRead prints a read failure for the user.
func reportRead(w io.Writer, path string, err error) error {
	_, werr := fmt.Fprintf(w, "Error reading %s: %v\n", path, cause(err))
	return werr
}

// cause strips this module's wrapping so the printed message names the path
// once.
func cause(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
