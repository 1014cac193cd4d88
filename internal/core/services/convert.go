package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// ConversionService runs the conversion stage: once per canonical content
// hash, the external converter produces the text artifact. A single
// conversion failure never aborts the batch.
type ConversionService struct {
	converter   driven.Converter
	ledger      driven.LedgerStore
	artifacts   driven.ArtifactStore
	timeout     time.Duration
	concurrency int
}

// NewConversionService creates the conversion stage.
func NewConversionService(
	converter driven.Converter,
	ledger driven.LedgerStore,
	artifacts driven.ArtifactStore,
	cfg domain.ConverterConfig,
	concurrency int,
) *ConversionService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ConversionService{
		converter:   converter,
		ledger:      ledger,
		artifacts:   artifacts,
		timeout:     cfg.Timeout(),
		concurrency: concurrency,
	}
}

// Run registers the scanned files in the ledger and converts every
// canonical record that has no successful conversion yet. Duplicates are
// recorded and counted as skipped without invoking the converter.
func (s *ConversionService) Run(ctx context.Context, cat *Catalogue, force bool) (*domain.StageReport, error) {
	if err := s.converter.Available(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConverterUnavailable, err)
	}
	logger.Stage("Convert")

	report := &domain.StageReport{
		RunID:     uuid.New().String(),
		Stage:     domain.StageConvert,
		StartedAt: time.Now().UTC(),
	}

	for _, rec := range cat.Canonicals() {
		if err := s.ledger.RegisterEntry(ctx, rec); err != nil {
			return nil, fmt.Errorf("registering %s: %w", rec.Path, err)
		}
	}
	for _, dup := range cat.Duplicates() {
		if err := s.ledger.RegisterDuplicate(ctx, dup); err != nil {
			return nil, fmt.Errorf("registering duplicate %s: %w", dup.Path, err)
		}
		report.AddSkip(domain.SkipReasonDuplicate)
	}

	canonicals := cat.Canonicals()
	report.Total = len(canonicals) + report.Skipped

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, rec := range canonicals {
		g.Go(func() error {
			outcome, err := s.convertOne(gctx, rec, force)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeSuccess:
				report.Success++
			case outcomeFailed:
				report.Failed++
			case outcomeUnchanged:
				report.Unchanged++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now().UTC()
	if err := s.ledger.RecordRun(ctx, report.Run()); err != nil {
		logger.Warn("recording run: %v", err)
	}
	return report, nil
}

// stageOutcome classifies a single file's result within a pass.
type stageOutcome int

const (
	outcomeSuccess stageOutcome = iota
	outcomeFailed
	outcomeSkipped
	outcomeUnchanged
)

// convertOne processes a single canonical record. Only infrastructure
// errors (ledger writes, cancelled context) are returned; conversion
// failures are recorded in the ledger and the batch continues.
func (s *ConversionService) convertOne(ctx context.Context, rec domain.FileRecord, force bool) (stageOutcome, error) {
	state, err := s.ledger.GetStatus(ctx, rec.ContentHash, domain.StageConvert)
	if err != nil {
		return outcomeFailed, fmt.Errorf("reading status for %s: %w", rec.Path, err)
	}
	if state.Status == domain.StatusSuccess && !force {
		logger.Debug("convert: %s already converted", rec.Name())
		return outcomeUnchanged, nil
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger.Debug("convert: %s (%s)", rec.Name(), humanize.IBytes(uint64(rec.SizeBytes)))
	text, convErr := s.converter.Convert(callCtx, rec.Path)
	if convErr != nil {
		if ctx.Err() != nil {
			return outcomeFailed, ctx.Err()
		}
		if err := s.ledger.SetStatus(ctx, rec.ContentHash, domain.StageConvert,
			domain.StatusFailed, "", convErr.Error()); err != nil {
			return outcomeFailed, fmt.Errorf("recording failure for %s: %w", rec.Path, err)
		}
		return outcomeFailed, nil
	}

	artifact := convertedHeader(rec) + text
	path, err := s.artifacts.WriteConverted(rec.ContentHash, artifact)
	if err != nil {
		if serr := s.ledger.SetStatus(ctx, rec.ContentHash, domain.StageConvert,
			domain.StatusFailed, "", err.Error()); serr != nil {
			return outcomeFailed, fmt.Errorf("recording failure for %s: %w", rec.Path, serr)
		}
		return outcomeFailed, nil
	}

	if err := s.ledger.SetStatus(ctx, rec.ContentHash, domain.StageConvert,
		domain.StatusSuccess, path, ""); err != nil {
		return outcomeFailed, fmt.Errorf("recording success for %s: %w", rec.Path, err)
	}
	return outcomeSuccess, nil
}

// convertedHeader is the provenance block written above the converted
// text, mirroring what the index row records.
func convertedHeader(rec domain.FileRecord) string {
	return fmt.Sprintf("> Source: %s\n> Type: %s | Size: %s\n> Converted: %s\n\n---\n\n",
		rec.Path,
		rec.Extension,
		humanize.IBytes(uint64(rec.SizeBytes)),
		time.Now().UTC().Format("2006-01-02 15:04:05"),
	)
}
