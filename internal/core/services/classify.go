package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// classifySystemPrompt demands machine-parseable output.
const classifySystemPrompt = `You are a document classifier. Respond with a single JSON object and nothing else: no prose, no reasoning, no code fences.`

// classifyPromptTemplate asks for the three independent category
// assignments plus a suggested display name.
const classifyPromptTemplate = `Based on the document brief below, assign three independent categories and suggest a filename.

Respond with exactly this JSON shape:
{
  "topic": "<short topic label, e.g. finance, engineering, marketing>",
  "usage": "<short usage label, e.g. report, contract, presentation, manual>",
  "client": "<client or organisation the document relates to, or 'internal'>",
  "suggested_name": "<concise human-readable filename without extension>"
}

Document brief:

%s`

// ClassifyService runs the classification stage: for every entry with a
// successful brief and no successful classification yet, it asks the
// generator for the category assignments. Unparseable responses degrade
// to the sentinel unclassified record so indexing always completes.
type ClassifyService struct {
	generator   driven.Generator
	ledger      driven.LedgerStore
	artifacts   driven.ArtifactStore
	model       string
	temperature float64
	maxTokens   int
	concurrency int
}

// NewClassifyService creates the classification stage.
func NewClassifyService(
	generator driven.Generator,
	ledger driven.LedgerStore,
	artifacts driven.ArtifactStore,
	model string,
	concurrency int,
) *ClassifyService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ClassifyService{
		generator:   generator,
		ledger:      ledger,
		artifacts:   artifacts,
		model:       model,
		temperature: 0.1,
		maxTokens:   200,
		concurrency: concurrency,
	}
}

// Run classifies all pending entries.
func (s *ClassifyService) Run(ctx context.Context, force bool) (*domain.StageReport, error) {
	entries, err := s.pending(ctx, force)
	if err != nil {
		return nil, err
	}
	logger.Stage("Classify")

	report := &domain.StageReport{
		RunID:     uuid.New().String(),
		Stage:     domain.StageClassify,
		Total:     len(entries),
		StartedAt: time.Now().UTC(),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, entry := range entries {
		g.Go(func() error {
			outcome, err := s.classifyOne(gctx, entry, force)
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

func (s *ClassifyService) pending(ctx context.Context, force bool) ([]domain.LedgerEntry, error) {
	if force {
		return s.ledger.ListByStatus(ctx, domain.StageSummarise, domain.StatusSuccess)
	}
	return s.ledger.ListPending(ctx, domain.StageClassify)
}

func (s *ClassifyService) classifyOne(ctx context.Context, entry domain.LedgerEntry, force bool) (stageOutcome, error) {
	if entry.Classify.Status == domain.StatusSuccess && !force {
		return outcomeUnchanged, nil
	}

	brief, err := s.artifacts.ReadBrief(entry.ContentHash)
	if err != nil {
		if serr := s.ledger.SetStatus(ctx, entry.ContentHash, domain.StageClassify,
			domain.StatusFailed, "", fmt.Sprintf("reading brief: %v", err)); serr != nil {
			return outcomeFailed, serr
		}
		return outcomeFailed, nil
	}

	logger.Debug("classify: %s", entry.OriginalPath)
	result, genErr := s.generator.Generate(ctx, driven.GenerateRequest{
		System:      classifySystemPrompt,
		Prompt:      fmt.Sprintf(classifyPromptTemplate, brief),
		Model:       s.model,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if genErr != nil {
		if ctx.Err() != nil {
			return outcomeFailed, ctx.Err()
		}
		if err := s.ledger.SetStatus(ctx, entry.ContentHash, domain.StageClassify,
			domain.StatusFailed, "", genErr.Error()); err != nil {
			return outcomeFailed, err
		}
		return outcomeFailed, nil
	}

	classification, parseErr := ParseClassification(entry.ContentHash, result.Text())
	detail := ""
	if parseErr != nil {
		// Downgraded, not failed: the sentinel keeps indexing complete.
		classification = domain.Unclassified(entry.ContentHash)
		detail = fmt.Sprintf("response not parseable, recorded unclassified: %v", parseErr)
		logger.Warn("classify: %s: %s", entry.OriginalPath, detail)
	}
	classification.ClassifiedAt = time.Now().UTC()

	if err := s.ledger.SaveClassification(ctx, classification); err != nil {
		return outcomeFailed, fmt.Errorf("saving classification for %s: %w", entry.OriginalPath, err)
	}
	if err := s.ledger.SetStatus(ctx, entry.ContentHash, domain.StageClassify,
		domain.StatusSuccess, "", detail); err != nil {
		return outcomeFailed, err
	}
	return outcomeSuccess, nil
}

// classificationJSON is the wire shape requested from the generator.
type classificationJSON struct {
	Topic         string `json:"topic"`
	Usage         string `json:"usage"`
	Client        string `json:"client"`
	SuggestedName string `json:"suggested_name"`
}

// ParseClassification parses a generator response into a classification.
// The response may arrive wrapped in a fenced code block with an optional
// language tag; the fence is stripped before parsing. Empty labels fall
// back to the unclassified sentinel value for that dimension.
func ParseClassification(contentHash, response string) (domain.Classification, error) {
	payload := StripCodeFence(response)

	var parsed classificationJSON
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return domain.Classification{}, fmt.Errorf("parsing classification: %w", err)
	}

	return domain.Classification{
		ContentHash:   contentHash,
		Topic:         labelOrUnclassified(parsed.Topic),
		Usage:         labelOrUnclassified(parsed.Usage),
		Client:        labelOrUnclassified(parsed.Client),
		SuggestedName: strings.TrimSpace(parsed.SuggestedName),
	}, nil
}

func labelOrUnclassified(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.UnclassifiedLabel
	}
	return label
}

// StripCodeFence removes a wrapping Markdown code fence, with or without
// a language tag, from a generator response. Responses without a fence
// are returned trimmed but otherwise unchanged.
func StripCodeFence(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop the language tag on the fence line, if any.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		return strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
