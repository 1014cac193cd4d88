package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
)

// memLedger is an in-memory LedgerStore for service tests.
type memLedger struct {
	mu              sync.Mutex
	entries         map[string]*domain.LedgerEntry
	duplicates      map[string]domain.DuplicateRef
	classifications map[string]domain.Classification
	runs            []domain.StageRun
	exports         []string
}

var _ driven.LedgerStore = (*memLedger)(nil)

func newMemLedger() *memLedger {
	return &memLedger{
		entries:         make(map[string]*domain.LedgerEntry),
		duplicates:      make(map[string]domain.DuplicateRef),
		classifications: make(map[string]domain.Classification),
	}
}

func (m *memLedger) RegisterEntry(_ context.Context, rec domain.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[rec.ContentHash]; ok {
		existing.OriginalPath = rec.Path
		existing.Extension = rec.Extension
		existing.SizeBytes = rec.SizeBytes
		return nil
	}
	m.entries[rec.ContentHash] = &domain.LedgerEntry{
		ContentHash:  rec.ContentHash,
		OriginalPath: rec.Path,
		Extension:    rec.Extension,
		SizeBytes:    rec.SizeBytes,
		Convert:      domain.StageState{Status: domain.StatusPending},
		Summarise:    domain.StageState{Status: domain.StatusPending},
		Classify:     domain.StageState{Status: domain.StatusPending},
	}
	return nil
}

func (m *memLedger) RegisterDuplicate(_ context.Context, ref domain.DuplicateRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duplicates[ref.Path] = ref
	return nil
}

func (m *memLedger) GetEntry(_ context.Context, contentHash string) (*domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[contentHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (m *memLedger) GetStatus(ctx context.Context, contentHash string, stage domain.Stage) (*domain.StageState, error) {
	entry, err := m.GetEntry(ctx, contentHash)
	if err != nil {
		return nil, err
	}
	state := entry.State(stage)
	return &state, nil
}

func (m *memLedger) SetStatus(_ context.Context, contentHash string, stage domain.Stage,
	status domain.Status, artifactPath, detail string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[contentHash]
	if !ok {
		return domain.ErrNotFound
	}
	state := domain.StageState{Status: status, ArtifactPath: artifactPath, Detail: detail}
	switch stage {
	case domain.StageConvert:
		entry.Convert = state
	case domain.StageSummarise:
		entry.Summarise = state
	case domain.StageClassify:
		entry.Classify = state
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

func (m *memLedger) ListPending(_ context.Context, stage domain.Stage) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range m.sorted() {
		prereqOK := true
		if prereq := stage.Prerequisite(); prereq != "" {
			prereqOK = e.State(prereq).Status == domain.StatusSuccess
		}
		if prereqOK && e.State(stage).Status != domain.StatusSuccess {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memLedger) ListByStatus(_ context.Context, stage domain.Stage, status domain.Status) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range m.sorted() {
		if e.State(stage).Status == status {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memLedger) ListEntries(_ context.Context) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range m.sorted() {
		out = append(out, *e)
	}
	return out, nil
}

func (m *memLedger) ListDuplicates(_ context.Context) ([]domain.DuplicateRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DuplicateRef
	for _, ref := range m.duplicates {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *memLedger) Counts(_ context.Context, stage domain.Stage) (map[domain.Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[domain.Status]int)
	for _, e := range m.entries {
		counts[e.State(stage).Status]++
	}
	return counts, nil
}

func (m *memLedger) SaveClassification(_ context.Context, c domain.Classification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classifications[c.ContentHash] = c
	return nil
}

func (m *memLedger) GetClassification(_ context.Context, contentHash string) (*domain.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classifications[contentHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *memLedger) ListClassifications(_ context.Context) ([]domain.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Classification
	for _, c := range m.classifications {
		out = append(out, c)
	}
	return out, nil
}

func (m *memLedger) RecordRun(_ context.Context, run domain.StageRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memLedger) ExportCSV(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports = append(m.exports, path)
	return nil
}

func (m *memLedger) Close() error { return nil }

// sorted returns entries ordered by path for deterministic tests.
func (m *memLedger) sorted() []*domain.LedgerEntry {
	out := make([]*domain.LedgerEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OriginalPath < out[j].OriginalPath })
	return out
}

// memArtifacts is an in-memory ArtifactStore.
type memArtifacts struct {
	mu        sync.Mutex
	converted map[string]string
	briefs    map[string]string
}

var _ driven.ArtifactStore = (*memArtifacts)(nil)

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{
		converted: make(map[string]string),
		briefs:    make(map[string]string),
	}
}

func (m *memArtifacts) WriteConverted(contentHash, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.converted[contentHash] = text
	return "converted/" + contentHash + ".md", nil
}

func (m *memArtifacts) ReadConverted(contentHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.converted[contentHash]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

func (m *memArtifacts) WriteBrief(contentHash, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.briefs[contentHash] = text
	return "briefs/" + contentHash + ".md", nil
}

func (m *memArtifacts) ReadBrief(contentHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.briefs[contentHash]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

func (m *memArtifacts) Workspace() string { return "/test/.docsort" }

// mockConverter converts by returning canned text per path.
type mockConverter struct {
	mu          sync.Mutex
	text        map[string]string
	failPaths   map[string]bool
	unavailable bool
	calls       []string
}

var _ driven.Converter = (*mockConverter)(nil)

func newMockConverter() *mockConverter {
	return &mockConverter{
		text:      make(map[string]string),
		failPaths: make(map[string]bool),
	}
}

func (m *mockConverter) Name() string { return "mock" }

func (m *mockConverter) Available() error {
	if m.unavailable {
		return errors.New("mock converter not installed")
	}
	return nil
}

func (m *mockConverter) Convert(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, path)
	if m.failPaths[path] {
		return "", errors.New("conversion crashed")
	}
	if text, ok := m.text[path]; ok {
		return text, nil
	}
	return "converted text of " + path, nil
}

func (m *mockConverter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockGenerator returns canned responses keyed by prompt substring.
type mockGenerator struct {
	mu        sync.Mutex
	response  string
	err       error
	pingErr   error
	hasModel  bool
	calls     []driven.GenerateRequest
	responses map[string]string
}

var _ driven.Generator = (*mockGenerator)(nil)

func newMockGenerator(response string) *mockGenerator {
	return &mockGenerator{response: response, hasModel: true, responses: make(map[string]string)}
}

func (m *mockGenerator) Generate(_ context.Context, req driven.GenerateRequest) (*driven.GenerateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	for key, resp := range m.responses {
		if strings.Contains(req.Prompt, key) {
			return &driven.GenerateResult{Primary: resp}, nil
		}
	}
	return &driven.GenerateResult{Primary: m.response}, nil
}

func (m *mockGenerator) Ping(_ context.Context) error { return m.pingErr }

func (m *mockGenerator) HasModel(_ context.Context, _ string) (bool, error) {
	return m.hasModel, nil
}

func (m *mockGenerator) ModelName() string { return "mock-model" }

func (m *mockGenerator) Close() error { return nil }

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// memReferencer records links in memory.
type memReferencer struct {
	mu    sync.Mutex
	links map[string]string
}

var _ driven.Referencer = (*memReferencer)(nil)

func newMemReferencer() *memReferencer {
	return &memReferencer{links: make(map[string]string)}
}

func (m *memReferencer) Link(target, linkPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.links[linkPath]; exists {
		return fmt.Errorf("link exists: %s", linkPath)
	}
	m.links[linkPath] = target
	return nil
}

func (m *memReferencer) Exists(linkPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.links[linkPath]
	return ok
}
