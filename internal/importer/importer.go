// Package importer runs a property import: it reads input files row by row,
// resolves each row's catalog node and applies the planned property writes.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Sunspark/MauroDataCollector/internal/catalogpath"
	"github.com/Sunspark/MauroDataCollector/internal/files/filesystem"
	"github.com/Sunspark/MauroDataCollector/internal/logging"
	"github.com/Sunspark/MauroDataCollector/internal/normalize"
	"github.com/Sunspark/MauroDataCollector/internal/planner"
	"github.com/Sunspark/MauroDataCollector/internal/resolver"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// Options are resolved once per run and never change during it.
type Options struct {
	// Overrides replace file values for the hierarchy columns.
	Overrides mauro.Hierarchy

	// ClassLevel makes the field column optional so rows may address data classes.
	ClassLevel bool

	DefaultNamespace string
	DeleteOnNull     bool

	// DryRun resolves and plans but issues no writes.
	DryRun bool
}

// Importer drives one import run. Files and rows are processed sequentially.
type Importer struct {
	catalog    mauro.Catalog
	scanner    mauro.FileScanner
	fsProvider filesystem.FileSystemProvider
	resolver   *resolver.Resolver
	opts       Options
	logger     *zap.Logger
}

// New creates an importer. The catalog is shared read-only by every row.
func New(catalog mauro.Catalog, scanner mauro.FileScanner, fsProvider filesystem.FileSystemProvider, opts Options, logger *zap.Logger) *Importer {
	logger = logging.OrNop(logger)
	return &Importer{
		catalog:    catalog,
		scanner:    scanner,
		fsProvider: fsProvider,
		resolver:   resolver.New(catalog, logger),
		opts:       opts,
		logger:     logger.Named("importer"),
	}
}

// Run imports every file of sel. File-level failures are logged and counted;
// only configuration errors and cancellation end the run early.
func (im *Importer) Run(ctx context.Context, sel mauro.InputSelection) (Summary, error) {
	var summary Summary

	files, err := im.scanner.Discover(sel)
	if err != nil {
		return summary, fmt.Errorf("failed to discover input files: %w", err)
	}
	summary.FilesSeen = len(files)
	if len(files) == 0 {
		im.logger.Warn("No input files found", zap.String("path", sel.Path), zap.String("extension", sel.Extension))
		return summary, nil
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		err := im.ImportFile(ctx, file, &summary)
		switch {
		case err == nil:
			summary.FilesProcessed++
		case errors.Is(err, mauro.ErrConfig),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return summary, err
		default:
			summary.FilesFailed++
			im.logger.Error("Skipping file", zap.String("file", file), zap.Error(err))
		}
	}

	if summary.Lookups > 0 && summary.Unreachable == summary.Lookups {
		im.logger.Error("Catalog never answered; every lookup failed without a response",
			zap.Int("lookups", summary.Lookups))
	}

	im.logger.Info("Import finished",
		zap.Int("files", summary.FilesSeen),
		zap.Int("rows", summary.RowsRead),
		zap.Int("skipped", summary.Skipped()))
	return summary, nil
}

// ImportFile processes one file. The returned error aborts this file only.
// Rows before a structural error have already been processed.
func (im *Importer) ImportFile(ctx context.Context, file string, summary *Summary) error {
	content, err := im.fsProvider.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	r := newCSVReader(content)
	header, err := readHeader(file, r)
	if err != nil {
		return err
	}

	normalizer, err := normalize.New(file, header, normalize.Options{
		Overrides:    im.opts.Overrides,
		RequireField: !im.opts.ClassLevel,
	})
	if err != nil {
		return err
	}

	plan, err := planner.Compile(file, header, planner.Options{
		DefaultNamespace: im.opts.DefaultNamespace,
		DeleteOnNull:     im.opts.DeleteOnNull,
	})
	if err != nil {
		return err
	}

	im.logger.Info("Processing file", zap.String("file", file), zap.Strings("header", header))

	for index := 1; ; index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := readRecord(file, index, len(header), r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		summary.RowsRead++

		row, err := normalizer.Normalize(index, record)
		if err != nil {
			return err
		}
		im.processRow(ctx, file, row, plan, summary)
	}
}

func (im *Importer) processRow(ctx context.Context, file string, row mauro.NormalizedRow, plan *planner.Planner, summary *Summary) {
	fields := []zap.Field{zap.String("file", file), zap.Int("row", row.Index)}

	hierarchy, path, err := catalogpath.Build(row)
	if err != nil {
		summary.RowErrors++
		im.logger.Error("Skipping row", append(fields, zap.Error(err))...)
		return
	}

	action := im.resolver.Resolve(ctx, hierarchy, fields...)
	summary.Lookups++
	switch action.Kind {
	case resolver.SkipWithWarning:
		if action.Outcome.Kind == mauro.LookupAmbiguous {
			summary.SkippedAmbiguous++
		} else {
			summary.SkippedNotFound++
		}
		return
	case resolver.SkipWithError:
		summary.SkippedError++
		if action.Outcome.Code == 0 {
			summary.Unreachable++
		}
		return
	}

	writes := actionable(plan.Plan(row))
	summary.PlannedIntents += len(writes)
	fields = append(fields, zap.String("path", path), zap.Int("writes", len(writes)))

	if len(writes) == 0 {
		summary.Unchanged++
		im.logger.Debug("Nothing to write", fields...)
		return
	}

	if im.opts.DryRun {
		summary.DryRun++
		for _, w := range writes {
			im.logger.Info("Dry run: would write",
				append(fields[:len(fields):len(fields)], describeIntent(w)...)...)
		}
		return
	}

	err = im.write(ctx, action, writes)
	switch {
	case err == nil && action.Kind == resolver.CreateBranchThenUpdate:
		summary.Branched++
		im.logger.Info("Branched and updated node", fields...)
	case err == nil:
		summary.Updated++
		im.logger.Info("Updated node", fields...)
	case errors.Is(err, mauro.ErrNotImplemented):
		summary.WritesUnavailable++
		im.logger.Warn("Write unavailable", append(fields, zap.Stringer("action", action.Kind), zap.Error(err))...)
	default:
		summary.RowErrors++
		im.logger.Error("Write failed", append(fields, zap.Stringer("action", action.Kind), zap.Error(err))...)
	}
}

// write applies intents for a resolved action. A finalised node is branched
// first and only the new draft is updated.
func (im *Importer) write(ctx context.Context, action resolver.Action, intents []mauro.PropertyWriteIntent) error {
	target := action.Ref
	if action.Kind == resolver.CreateBranchThenUpdate {
		branch, err := im.catalog.BranchNode(ctx, action.Ref)
		if err != nil {
			return fmt.Errorf("branch: %w", err)
		}
		target = branch
	}
	if err := im.catalog.UpdateNode(ctx, target, intents); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

func actionable(intents []mauro.PropertyWriteIntent) []mauro.PropertyWriteIntent {
	out := intents[:0:0]
	for _, in := range intents {
		if in.Action != mauro.ActionSkip {
			out = append(out, in)
		}
	}
	return out
}

func describeIntent(w mauro.PropertyWriteIntent) []zap.Field {
	if w.Target == mauro.TargetDescription {
		return []zap.Field{zap.String("target", "description"), zap.Stringer("op", w.Action), zap.String("value", w.Value.Value)}
	}
	return []zap.Field{zap.Stringer("key", w.Key), zap.Stringer("op", w.Action), zap.String("value", w.Value.Value)}
}
