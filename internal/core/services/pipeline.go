package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// WorkspaceDirName is the pipeline state directory created next to the
// first scan root.
const WorkspaceDirName = ".docsort"

// IndexFileName is the flat tabular export rewritten after each
// conversion pass.
const IndexFileName = "index.csv"

// Ensure Pipeline implements the driving port.
var _ driving.PipelineService = (*Pipeline)(nil)

// PipelineDeps are the collaborators the orchestrator wires into the
// stages. Ledger and artifact stores are opened per workspace, so they
// arrive as constructors rather than instances.
type PipelineDeps struct {
	Converter     driven.Converter
	Generator     driven.Generator
	Referencer    driven.Referencer
	OpenLedger    func(workspace string) (driven.LedgerStore, error)
	OpenArtifacts func(workspace string) (driven.ArtifactStore, error)
}

// Pipeline orchestrates the staged document pipeline behind the CLI.
type Pipeline struct {
	cfg     domain.Config
	deps    PipelineDeps
	scanner *Scanner
}

// NewPipeline creates the orchestrator.
func NewPipeline(cfg domain.Config, deps PipelineDeps) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		deps:    deps,
		scanner: NewScanner(cfg.Scan),
	}
}

// ScanPreview scans the roots and reports what a conversion pass would
// process. Read-only; the reported workspace is the one a confirmed run
// with the same options would write to.
func (p *Pipeline) ScanPreview(ctx context.Context, roots []string, opts driving.RunOptions) (*driving.ScanSummary, error) {
	if len(roots) == 0 {
		return nil, domain.ErrNoRoots
	}

	result, err := p.scanner.Scan(ctx, roots)
	if err != nil {
		return nil, err
	}
	cat := BuildCatalogue(result.Files)

	workspace, err := WorkspaceDir(result.Roots, opts.Workspace)
	if err != nil {
		return nil, err
	}

	return &driving.ScanSummary{
		Roots:           result.Roots,
		Workspace:       workspace,
		Files:           result.Files,
		Warnings:        result.Warnings,
		TotalBytes:      result.TotalBytes(),
		DuplicateGroups: cat.GroupCount(),
		Duplicates:      len(cat.Duplicates()),
	}, nil
}

// Convert scans the roots, registers the ledger and runs the conversion
// stage, then rewrites the tabular index export.
func (p *Pipeline) Convert(ctx context.Context, roots []string, opts driving.RunOptions) (*domain.StageReport, error) {
	if len(roots) == 0 {
		return nil, domain.ErrNoRoots
	}

	result, err := p.scanner.Scan(ctx, roots)
	if err != nil {
		return nil, err
	}
	cat := BuildCatalogue(result.Files)

	workspace, err := WorkspaceDir(result.Roots, opts.Workspace)
	if err != nil {
		return nil, err
	}

	ledger, artifacts, err := p.open(workspace)
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	svc := NewConversionService(p.deps.Converter, ledger, artifacts, p.cfg.Converter, p.concurrency(opts))
	report, err := svc.Run(ctx, cat, opts.Force)
	if err != nil {
		return nil, err
	}

	indexPath := filepath.Join(workspace, IndexFileName)
	if err := ledger.ExportCSV(ctx, indexPath); err != nil {
		return nil, fmt.Errorf("exporting index: %w", err)
	}
	logger.Info("index written to %s", indexPath)

	return report, nil
}

// Summarise runs the summarisation stage over the workspace ledger.
func (p *Pipeline) Summarise(ctx context.Context, opts driving.RunOptions) (*domain.StageReport, error) {
	workspace, err := WorkspaceDir(nil, opts.Workspace)
	if err != nil {
		return nil, err
	}

	model := p.model(opts)
	if err := p.preflight(ctx, model); err != nil {
		return nil, err
	}

	ledger, artifacts, err := p.open(workspace)
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	svc := NewSummariseService(p.deps.Generator, ledger, artifacts, p.cfg.Summarise, model, p.concurrency(opts))
	return svc.Run(ctx, opts.Force)
}

// ClassifyAndIndex runs the classification stage and rebuilds the scheme
// trees from the resulting classifications.
func (p *Pipeline) ClassifyAndIndex(ctx context.Context, opts driving.RunOptions) (*driving.ClassifyResult, error) {
	workspace, err := WorkspaceDir(nil, opts.Workspace)
	if err != nil {
		return nil, err
	}

	model := p.model(opts)
	if err := p.preflight(ctx, model); err != nil {
		return nil, err
	}

	ledger, artifacts, err := p.open(workspace)
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	svc := NewClassifyService(p.deps.Generator, ledger, artifacts, model, p.concurrency(opts))
	report, err := svc.Run(ctx, opts.Force)
	if err != nil {
		return nil, err
	}

	entries, err := ledger.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	duplicates, err := ledger.ListDuplicates(ctx)
	if err != nil {
		return nil, err
	}
	classifications, err := ledger.ListClassifications(ctx)
	if err != nil {
		return nil, err
	}

	trees, err := NewMaterialiser(p.deps.Referencer).Build(
		ctx, workspace, entries, duplicates, classifications, opts.Rename)
	if err != nil {
		return nil, err
	}

	return &driving.ClassifyResult{Report: report, Trees: trees}, nil
}

// Brief looks up the ledger entry for path and returns its stored brief
// parsed into the display view. A duplicate path resolves to the
// canonical entry sharing its content.
func (p *Pipeline) Brief(ctx context.Context, path string, opts driving.RunOptions) (*domain.Brief, error) {
	workspace, err := WorkspaceDir(nil, opts.Workspace)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	ledger, artifacts, err := p.open(workspace)
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	hash, err := p.hashForPath(ctx, ledger, abs)
	if err != nil {
		return nil, err
	}

	raw, err := artifacts.ReadBrief(hash)
	if err != nil {
		return nil, fmt.Errorf("no brief stored for %s: %w", path, err)
	}

	brief := domain.ParseBrief(hash, raw)
	return &brief, nil
}

// hashForPath resolves an original path to its content hash, checking
// canonical entries first and duplicate references second.
func (p *Pipeline) hashForPath(ctx context.Context, ledger driven.LedgerStore, abs string) (string, error) {
	entries, err := ledger.ListEntries(ctx)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.OriginalPath == abs {
			return e.ContentHash, nil
		}
	}

	duplicates, err := ledger.ListDuplicates(ctx)
	if err != nil {
		return "", err
	}
	for _, d := range duplicates {
		if d.Path == abs {
			return d.ContentHash, nil
		}
	}
	return "", fmt.Errorf("%s not in the ledger: %w", abs, domain.ErrNotFound)
}

// Status reports per-stage ledger counts for the workspace.
func (p *Pipeline) Status(ctx context.Context, opts driving.RunOptions) (*driving.LedgerStatus, error) {
	workspace, err := WorkspaceDir(nil, opts.Workspace)
	if err != nil {
		return nil, err
	}

	ledger, _, err := p.open(workspace)
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	entries, err := ledger.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	duplicates, err := ledger.ListDuplicates(ctx)
	if err != nil {
		return nil, err
	}

	status := &driving.LedgerStatus{
		Workspace:  workspace,
		Entries:    len(entries),
		Duplicates: len(duplicates),
		Stages:     make(map[domain.Stage]map[domain.Status]int),
	}
	for _, stage := range []domain.Stage{domain.StageConvert, domain.StageSummarise, domain.StageClassify} {
		counts, err := ledger.Counts(ctx, stage)
		if err != nil {
			return nil, err
		}
		status.Stages[stage] = counts
	}
	return status, nil
}

// model resolves the effective generator model.
func (p *Pipeline) model(opts driving.RunOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return p.cfg.Generator.Model
}

// concurrency resolves the effective per-stage fan-out.
func (p *Pipeline) concurrency(opts driving.RunOptions) int {
	if opts.Concurrency > 0 {
		return opts.Concurrency
	}
	return p.cfg.Concurrency
}

// preflight verifies the generator is reachable and the model present
// before any generator stage starts. Failures abort the whole run with an
// actionable message; no ledger entry is touched.
func (p *Pipeline) preflight(ctx context.Context, model string) error {
	if err := p.deps.Generator.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service not reachable at %s: %v",
			domain.ErrGeneratorUnavailable, p.cfg.Generator.BaseURL, err)
	}
	ok, err := p.deps.Generator.HasModel(ctx, model)
	if err != nil {
		return fmt.Errorf("%w: listing models: %v", domain.ErrGeneratorUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: model %q not available, pull it first",
			domain.ErrGeneratorUnavailable, model)
	}
	return nil
}

// open opens the workspace-scoped stores.
func (p *Pipeline) open(workspace string) (driven.LedgerStore, driven.ArtifactStore, error) {
	ledger, err := p.deps.OpenLedger(workspace)
	if err != nil {
		return nil, nil, fmt.Errorf("opening ledger: %w", err)
	}
	artifacts, err := p.deps.OpenArtifacts(workspace)
	if err != nil {
		ledger.Close()
		return nil, nil, fmt.Errorf("opening artifact store: %w", err)
	}
	return ledger, artifacts, nil
}

// WorkspaceDir resolves the pipeline state directory: the override when
// given, otherwise next to the first root (a file root uses its parent),
// otherwise under the current directory.
func WorkspaceDir(roots []string, override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	if len(roots) == 0 {
		return filepath.Abs(WorkspaceDirName)
	}

	base := roots[0]
	if info, err := os.Stat(base); err == nil && !info.IsDir() {
		base = filepath.Dir(base)
	}
	return filepath.Abs(filepath.Join(base, WorkspaceDirName))
}
