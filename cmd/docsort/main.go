package main

import (
	"fmt"
	"os"

	"github.com/docsmith-labs/docsort-cli/internal/adapters/driven/artifacts/fs"
	"github.com/docsmith-labs/docsort-cli/internal/adapters/driven/config/file"
	"github.com/docsmith-labs/docsort-cli/internal/adapters/driven/converter/fallback"
	"github.com/docsmith-labs/docsort-cli/internal/adapters/driven/converter/markitdown"
	"github.com/docsmith-labs/docsort-cli/internal/adapters/driven/converter/native"
	"github.com/docsmith-labs/docsort-cli/internal/adapters/driven/generator/ollama"
	"github.com/docsmith-labs/docsort-cli/internal/adapters/driven/ledger/sqlite"
	"github.com/docsmith-labs/docsort-cli/internal/adapters/driven/reference"
	"github.com/docsmith-labs/docsort-cli/internal/adapters/driving/cli"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
	"github.com/docsmith-labs/docsort-cli/internal/core/services"
)

// version is set via ldflags during build.
var version = "dev"

func main() {
	cfg, err := file.Load(os.Getenv("DOCSORT_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Prefer the external converter; fall back to the built-in
	// extractors when it is not installed. The probe is deferred to
	// first use so its notice lands after the verbosity flags apply.
	converter := fallback.New(markitdown.New(cfg.Converter.Command), native.New())

	generator := ollama.NewRateLimitedGenerator(
		ollama.NewGenerator(ollama.Config{
			BaseURL: cfg.Generator.BaseURL,
			Model:   cfg.Generator.Model,
			Timeout: cfg.Generator.Timeout(),
		}),
		cfg.Generator.RequestsPerMinute,
	)
	defer generator.Close()

	// Symlinks where the filesystem allows them, a manifest file where
	// it does not.
	var referencer driven.Referencer = reference.NewSymlinker()
	if !reference.Supported(os.TempDir()) {
		referencer = reference.NewManifester()
	}

	pipeline := services.NewPipeline(cfg, services.PipelineDeps{
		Converter:  converter,
		Generator:  generator,
		Referencer: referencer,
		OpenLedger: func(workspace string) (driven.LedgerStore, error) {
			return sqlite.NewStore(workspace)
		},
		OpenArtifacts: func(workspace string) (driven.ArtifactStore, error) {
			return fs.NewStore(workspace)
		},
	})

	cli.Initialize(pipeline, version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
