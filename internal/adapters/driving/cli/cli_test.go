package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driving"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// mockPipeline implements driving.PipelineService for testing.
type mockPipeline struct {
	failAll bool

	scanCalls     int
	scanOpts      driving.RunOptions
	convertCalls  int
	convertOpts   driving.RunOptions
	briefPath     string
	briefOpts     driving.RunOptions
	summariseOpts driving.RunOptions
	classifyOpts  driving.RunOptions
}

func (m *mockPipeline) ScanPreview(_ context.Context, roots []string, opts driving.RunOptions) (*driving.ScanSummary, error) {
	if m.failAll {
		return nil, errors.New("boom")
	}
	m.scanCalls++
	m.scanOpts = opts
	workspace := "/docs/.docsort"
	if opts.Workspace != "" {
		workspace = opts.Workspace
	}
	return &driving.ScanSummary{
		Roots:     roots,
		Workspace: workspace,
		Files: []domain.FileRecord{
			{Path: "/docs/a.pdf", Extension: ".pdf", SizeBytes: 2048, ContentHash: "aaa"},
			{Path: "/docs/b.pptx", Extension: ".pptx", SizeBytes: 1024, ContentHash: "bbb"},
		},
		TotalBytes:      3072,
		DuplicateGroups: 1,
		Duplicates:      1,
	}, nil
}

func (m *mockPipeline) Convert(_ context.Context, _ []string, opts driving.RunOptions) (*domain.StageReport, error) {
	if m.failAll {
		return nil, errors.New("boom")
	}
	m.convertCalls++
	m.convertOpts = opts
	return &domain.StageReport{RunID: "run-1234", Stage: domain.StageConvert, Total: 2, Success: 2}, nil
}

func (m *mockPipeline) Summarise(_ context.Context, opts driving.RunOptions) (*domain.StageReport, error) {
	if m.failAll {
		return nil, errors.New("boom")
	}
	m.summariseOpts = opts
	return &domain.StageReport{Stage: domain.StageSummarise, Total: 2, Success: 1, Failed: 1}, nil
}

func (m *mockPipeline) ClassifyAndIndex(_ context.Context, opts driving.RunOptions) (*driving.ClassifyResult, error) {
	if m.failAll {
		return nil, errors.New("boom")
	}
	m.classifyOpts = opts
	return &driving.ClassifyResult{
		Report: &domain.StageReport{Stage: domain.StageClassify, Total: 2, Success: 2},
		Trees: &domain.TreeReport{
			References: 6,
			Categories: map[string]int{"by-topic": 2, "by-usage": 1, "by-client": 1},
		},
	}, nil
}

func (m *mockPipeline) Brief(_ context.Context, path string, opts driving.RunOptions) (*domain.Brief, error) {
	if m.failAll {
		return nil, errors.New("boom")
	}
	m.briefPath = path
	m.briefOpts = opts
	return &domain.Brief{
		ContentHash: "aaa",
		Synopsis:    "A quarterly finance report.",
		Bullets:     []string{"Revenue grew", "Costs held flat"},
		Keywords:    []string{"finance", "quarterly"},
		Raw:         "## Synopsis\n\nA quarterly finance report.\n",
	}, nil
}

func (m *mockPipeline) Status(_ context.Context, _ driving.RunOptions) (*driving.LedgerStatus, error) {
	if m.failAll {
		return nil, errors.New("boom")
	}
	return &driving.LedgerStatus{
		Workspace:  "/docs/.docsort",
		Entries:    2,
		Duplicates: 1,
		Stages: map[domain.Stage]map[domain.Status]int{
			domain.StageConvert:   {domain.StatusSuccess: 2},
			domain.StageSummarise: {domain.StatusSuccess: 1, domain.StatusPending: 1},
			domain.StageClassify:  {domain.StatusPending: 2},
		},
	}, nil
}

// setupCLITest swaps in a mock pipeline and returns it with a cleanup.
func setupCLITest() (*mockPipeline, func()) {
	oldPipeline := pipeline
	mock := &mockPipeline{}
	pipeline = mock
	return mock, func() {
		pipeline = oldPipeline
		logger.SetVerbose(false)
		flagWorkspace = ""
		flagJSON = false
		flagVerbose = false
		flagConcurrency = 0
		convertConfirm = false
		convertForce = false
		summariseConfirm = false
		summariseForce = false
		summariseModel = ""
		classifyConfirm = false
		classifyForce = false
		classifyRename = false
		classifyModel = ""
	}
}

// execute runs the root command with args and captures output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestScanCmd_Preview(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("scan", "/docs")

	assert.NoError(t, err)
	assert.Equal(t, 1, mock.scanCalls)
	assert.Contains(t, out, "/docs/a.pdf")
	assert.Contains(t, out, "2 files")
	assert.Contains(t, out, ".pptx")
	assert.Contains(t, out, "1 duplicates in 1 groups")
	assert.Contains(t, out, "/docs/.docsort")
}

func TestScanCmd_WorkspaceOverrideShown(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("scan", "--workspace", "/tmp/ws", "/docs")

	assert.NoError(t, err)
	assert.Equal(t, "/tmp/ws", mock.scanOpts.Workspace)
	assert.Contains(t, out, "Workspace: /tmp/ws")
}

func TestConvertCmd_DryRunShowsWorkspaceOverride(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("convert", "--workspace", "/tmp/ws", "/docs")

	assert.NoError(t, err)
	assert.Equal(t, 0, mock.convertCalls)
	assert.Equal(t, "/tmp/ws", mock.scanOpts.Workspace)
	assert.Contains(t, out, "Workspace: /tmp/ws")
}

func TestScanCmd_RequiresPath(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	_, err := execute("scan")
	assert.Error(t, err)
}

func TestScanCmd_JSON(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("scan", "--json", "/docs")

	assert.NoError(t, err)
	assert.Contains(t, out, `"total_bytes": 3072`)
	assert.Contains(t, out, `"duplicate_groups": 1`)
}

func TestScanCmd_ServiceNotConfigured(t *testing.T) {
	oldPipeline := pipeline
	pipeline = nil
	defer func() { pipeline = oldPipeline }()

	_, err := execute("scan", "/docs")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline service not configured")
}

func TestConvertCmd_DryRunWithoutConfirm(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("convert", "/docs")

	assert.NoError(t, err)
	assert.Equal(t, 0, mock.convertCalls)
	assert.Equal(t, 1, mock.scanCalls)
	assert.Contains(t, out, "Re-run with --confirm")
}

func TestConvertCmd_Confirm(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("convert", "--confirm", "--force", "--concurrency", "2", "/docs")

	assert.NoError(t, err)
	assert.Equal(t, 1, mock.convertCalls)
	assert.True(t, mock.convertOpts.Force)
	assert.Equal(t, 2, mock.convertOpts.Concurrency)
	assert.Contains(t, out, "convert")
	assert.Contains(t, out, "Completed in")
}

func TestConvertCmd_VerboseShowsRunID(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("convert", "--confirm", "--verbose", "/docs")

	assert.NoError(t, err)
	assert.Contains(t, out, "Run ID: run-1234")
}

func TestConvertCmd_QuietOmitsRunID(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("convert", "--confirm", "/docs")

	assert.NoError(t, err)
	assert.NotContains(t, out, "Run ID")
}

func TestConvertCmd_ServiceError(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()
	mock.failAll = true

	_, err := execute("convert", "--confirm", "/docs")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "convert failed")
}

func TestSummariseCmd_DryRunWithoutConfirm(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("summarise")

	assert.NoError(t, err)
	assert.Contains(t, out, "1 of 2 files still to summarise")
	assert.Contains(t, out, "Re-run with --confirm")
}

func TestSummariseCmd_Confirm(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("summarise", "--confirm", "--model", "qwen3:8b")

	assert.NoError(t, err)
	assert.Equal(t, "qwen3:8b", mock.summariseOpts.Model)
	assert.Contains(t, out, "summarise")
	assert.Contains(t, out, "failures recorded in the ledger")
}

func TestClassifyCmd_Confirm(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("classify", "--confirm", "--rename")

	assert.NoError(t, err)
	assert.True(t, mock.classifyOpts.Rename)
	assert.Contains(t, out, "by-topic")
	assert.Contains(t, out, "6 references created")
}

func TestClassifyCmd_DryRunWithoutConfirm(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("classify")

	assert.NoError(t, err)
	assert.Contains(t, out, "2 of 2 files still to classify")
}

func TestBriefCmd(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("brief", "/docs/a.pdf")

	assert.NoError(t, err)
	assert.Equal(t, "/docs/a.pdf", mock.briefPath)
	assert.Contains(t, out, "A quarterly finance report.")
	assert.Contains(t, out, "- Revenue grew")
	assert.Contains(t, out, "Keywords: finance, quarterly")
}

func TestBriefCmd_JSON(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("brief", "--json", "/docs/a.pdf")

	assert.NoError(t, err)
	assert.Contains(t, out, `"synopsis": "A quarterly finance report."`)
	assert.Contains(t, out, `"key_points"`)
}

func TestBriefCmd_ServiceError(t *testing.T) {
	mock, cleanup := setupCLITest()
	defer cleanup()
	mock.failAll = true

	_, err := execute("brief", "/docs/a.pdf")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading brief")
}

func TestStatusCmd(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("status")

	assert.NoError(t, err)
	assert.Contains(t, out, "convert")
	assert.Contains(t, out, "2 files tracked, 1 duplicates")
}

func TestStatusCmd_JSON(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("status", "--json")

	assert.NoError(t, err)
	assert.Contains(t, out, `"entries": 2`)
}

func TestVersionCmd(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	out, err := execute("version")

	assert.NoError(t, err)
	assert.Contains(t, out, "docsort version dev")
}

func TestInitialize(t *testing.T) {
	oldPipeline, oldVersion := pipeline, version
	defer func() {
		pipeline = oldPipeline
		version = oldVersion
	}()

	mock := &mockPipeline{}
	Initialize(mock, "1.2.3")

	assert.Equal(t, driving.PipelineService(mock), pipeline)
	assert.Equal(t, "1.2.3", version)
}
