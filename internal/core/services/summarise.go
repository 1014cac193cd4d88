package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// summariseSystemPrompt pins the generator to the summary itself.
const summariseSystemPrompt = `You are a document summariser. Produce only the requested summary in the exact format given. Do not include reasoning, preamble or commentary.`

// summarisePromptTemplate is the fixed Markdown template requested from
// the generator. The raw response is persisted verbatim as the brief.
const summarisePromptTemplate = `Summarise the following document content.

Respond in exactly this Markdown format:

## Synopsis
<one sentence>

## Key Points
- <3 to 5 bullet points>

## Keywords
- <3 to 5 keywords>

Document content:

%s`

// SummariseService runs the summarisation stage: for every entry with a
// successful conversion and no successful brief yet, it asks the
// generator for a structured brief and persists the raw response.
type SummariseService struct {
	generator   driven.Generator
	ledger      driven.LedgerStore
	artifacts   driven.ArtifactStore
	cfg         domain.SummariseConfig
	model       string
	concurrency int
}

// NewSummariseService creates the summarisation stage. model overrides
// the generator's default when non-empty.
func NewSummariseService(
	generator driven.Generator,
	ledger driven.LedgerStore,
	artifacts driven.ArtifactStore,
	cfg domain.SummariseConfig,
	model string,
	concurrency int,
) *SummariseService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SummariseService{
		generator:   generator,
		ledger:      ledger,
		artifacts:   artifacts,
		cfg:         cfg,
		model:       model,
		concurrency: concurrency,
	}
}

// Run summarises all pending entries. Per-file generator failures are
// recorded and the batch continues.
func (s *SummariseService) Run(ctx context.Context, force bool) (*domain.StageReport, error) {
	entries, err := s.pending(ctx, force)
	if err != nil {
		return nil, err
	}
	logger.Stage("Summarise")

	report := &domain.StageReport{
		RunID:     uuid.New().String(),
		Stage:     domain.StageSummarise,
		Total:     len(entries),
		StartedAt: time.Now().UTC(),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, entry := range entries {
		g.Go(func() error {
			outcome, reason, err := s.summariseOne(gctx, entry, force)
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
			case outcomeSkipped:
				report.AddSkip(reason)
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

// pending selects the entries this pass will consider.
func (s *SummariseService) pending(ctx context.Context, force bool) ([]domain.LedgerEntry, error) {
	if force {
		return s.ledger.ListByStatus(ctx, domain.StageConvert, domain.StatusSuccess)
	}
	return s.ledger.ListPending(ctx, domain.StageSummarise)
}

// summariseOne processes one entry. Returned errors are infrastructure
// failures only; generator failures become ledger records.
func (s *SummariseService) summariseOne(ctx context.Context, entry domain.LedgerEntry, force bool) (stageOutcome, string, error) {
	if entry.Summarise.Status == domain.StatusSuccess && !force {
		return outcomeUnchanged, "", nil
	}

	content, err := s.artifacts.ReadConverted(entry.ContentHash)
	if err != nil {
		if serr := s.ledger.SetStatus(ctx, entry.ContentHash, domain.StageSummarise,
			domain.StatusFailed, "", fmt.Sprintf("reading converted text: %v", err)); serr != nil {
			return outcomeFailed, "", serr
		}
		return outcomeFailed, "", nil
	}

	if len(strings.TrimSpace(content)) < s.cfg.MinContentChars {
		logger.Debug("summarise: %s has too little content", entry.OriginalPath)
		if err := s.ledger.SetStatus(ctx, entry.ContentHash, domain.StageSummarise,
			domain.StatusSkipped, "", domain.SkipReasonInsufficientContent); err != nil {
			return outcomeFailed, "", err
		}
		return outcomeSkipped, domain.SkipReasonInsufficientContent, nil
	}

	prompt := fmt.Sprintf(summarisePromptTemplate, TruncateForPrompt(content, s.cfg.MaxContentChars))

	logger.Debug("summarise: %s", entry.OriginalPath)
	result, genErr := s.generator.Generate(ctx, driven.GenerateRequest{
		System:      summariseSystemPrompt,
		Prompt:      prompt,
		Model:       s.model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if genErr != nil {
		if ctx.Err() != nil {
			return outcomeFailed, "", ctx.Err()
		}
		if err := s.ledger.SetStatus(ctx, entry.ContentHash, domain.StageSummarise,
			domain.StatusFailed, "", genErr.Error()); err != nil {
			return outcomeFailed, "", err
		}
		return outcomeFailed, "", nil
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		if err := s.ledger.SetStatus(ctx, entry.ContentHash, domain.StageSummarise,
			domain.StatusFailed, "", "generator returned empty response"); err != nil {
			return outcomeFailed, "", err
		}
		return outcomeFailed, "", nil
	}

	path, err := s.artifacts.WriteBrief(entry.ContentHash, text)
	if err != nil {
		if serr := s.ledger.SetStatus(ctx, entry.ContentHash, domain.StageSummarise,
			domain.StatusFailed, "", err.Error()); serr != nil {
			return outcomeFailed, "", serr
		}
		return outcomeFailed, "", nil
	}

	if err := s.ledger.SetStatus(ctx, entry.ContentHash, domain.StageSummarise,
		domain.StatusSuccess, path, ""); err != nil {
		return outcomeFailed, "", err
	}
	return outcomeSuccess, "", nil
}

// TruncateForPrompt cuts content to the character budget and appends a
// note stating the original length and how much was removed, so the
// summary's scope stays auditable. Content at or under the budget is
// returned unmodified. A budget landing inside a multi-byte rune backs
// up to the rune boundary so the prompt stays valid UTF-8.
func TruncateForPrompt(content string, budget int) string {
	if budget <= 0 || len(content) <= budget {
		return content
	}
	for budget > 0 && !utf8.RuneStart(content[budget]) {
		budget--
	}
	cut := len(content) - budget
	return content[:budget] + fmt.Sprintf(
		"\n\n[Note: content truncated for summarisation. Original length %d characters; %d characters removed.]",
		len(content), cut)
}
