// Package project manages a RenewDSL workspace: its configuration, its
// document files, and checking them in bulk.
package project

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/daveroberts0321/renewdsl/generator"
	"github.com/daveroberts0321/renewdsl/model"
	"github.com/daveroberts0321/renewdsl/parser"
)

// Init creates a new workspace directory with a config and a starter site.
func Init(name string) error {
	sites := filepath.Join(name, "sites")
	if err := os.MkdirAll(sites, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Name = filepath.Base(name)
	cfg.Sources = []string{"sites"}
	if err := WriteConfig(name, cfg); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFile, err)
	}

	if _, err := generator.WriteSite(sites, cfg.Name, cfg.Extension); err != nil {
		return fmt.Errorf("failed to write starter site: %w", err)
	}
	return nil
}

// FindSourceFiles returns every file under root with the given extension,
// sorted. Hidden directories are skipped.
func FindSourceFiles(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ext) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// Result is the outcome of parsing one document.
type Result struct {
	Path  string
	Model *model.Model
	Err   error
}

// Report collects the results of a Check run, in file order.
type Report struct {
	Results []Result
}

// Failed returns the results that did not parse.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err summarizes the failures, or returns nil if every document parsed.
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	if len(failed) == 1 {
		return failed[0].Err
	}
	return fmt.Errorf("%d of %d files failed to parse", len(failed), len(r.Results))
}

// Check parses every document in the workspace at dir. Documents are parsed
// in parallel, each with its own parser state. A document that fails to parse
// is recorded in the report and does not stop the others; the returned error
// is only for problems finding the files.
func Check(ctx context.Context, dir string, cfg Config, logger *slog.Logger) (*Report, error) {
	var files []string
	for _, src := range cfg.SourceDirs(dir) {
		found, err := FindSourceFiles(src, cfg.Extension)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", src, err)
		}
		files = append(files, found...)
	}

	report := &Report{Results: make([]Result, len(files))}
	if len(files) == 0 {
		logger.Info("no documents found", "dir", dir, "extension", cfg.Extension)
		return report, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := parser.ParseFile(file)
			report.Results[i] = Result{Path: file, Model: m, Err: err}
			if err != nil {
				logger.Error("parse failed", "file", file, "error", err)
			} else {
				logger.Debug("parsed", "file", file, "model", m.String())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("check complete", "files", len(files), "failed", len(report.Failed()))
	return report, nil
}
