package domain

import "time"

// Config is the immutable pipeline configuration. It is constructed once
// at startup (defaults overlaid with the config file and flags) and passed
// into each component at construction.
type Config struct {
	// Scan configures the scanner.
	Scan ScanConfig `toml:"scan"`

	// Converter configures the document-to-text converter.
	Converter ConverterConfig `toml:"converter"`

	// Generator configures the text-generation service.
	Generator GeneratorConfig `toml:"generator"`

	// Summarise configures the summarisation stage.
	Summarise SummariseConfig `toml:"summarise"`

	// Concurrency bounds per-file fan-out within a stage.
	Concurrency int `toml:"concurrency"`
}

// ScanConfig holds the scanner's filtering rules.
type ScanConfig struct {
	// AllowedExtensions is the extension allow-list (lower-case, with
	// leading dot). Files outside the list are ignored.
	AllowedExtensions []string `toml:"allowed_extensions"`

	// ExcludedDirs is the directory-name deny-list. Matching
	// directories are skipped wholesale.
	ExcludedDirs []string `toml:"excluded_dirs"`

	// ExcludedFiles lists exact file names to ignore.
	ExcludedFiles []string `toml:"excluded_files"`
}

// ConverterConfig holds settings for the external converter.
type ConverterConfig struct {
	// Command is the converter executable looked up on PATH.
	Command string `toml:"command"`

	// TimeoutSeconds bounds a single conversion call.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the conversion timeout as a duration.
func (c ConverterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GeneratorConfig holds settings for the text-generation service.
type GeneratorConfig struct {
	// BaseURL is the service's API base address.
	BaseURL string `toml:"base_url"`

	// Model is the model identifier requested for generation.
	Model string `toml:"model"`

	// TimeoutSeconds bounds a single generation call.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerMinute rate-limits generation calls. Zero disables
	// the limiter.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// Timeout returns the generation timeout as a duration.
func (c GeneratorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SummariseConfig holds the summarisation stage's content bounds.
type SummariseConfig struct {
	// MinContentChars is the minimum stripped content length worth
	// summarising; shorter documents are skipped.
	MinContentChars int `toml:"min_content_chars"`

	// MaxContentChars is the character budget sent to the generator;
	// longer content is truncated with an audit note appended.
	MaxContentChars int `toml:"max_content_chars"`

	// MaxTokens caps the generated summary length.
	MaxTokens int `toml:"max_tokens"`

	// Temperature controls generation randomness.
	Temperature float64 `toml:"temperature"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Scan: ScanConfig{
			AllowedExtensions: []string{
				".pdf", ".pptx", ".docx", ".xlsx", ".xls",
				".csv", ".html", ".htm", ".epub",
				".json", ".xml",
			},
			ExcludedDirs: []string{
				".git", ".svn", ".hg",
				".cache", ".npm", ".yarn", ".pnpm",
				".venv", "venv", "env", ".env",
				"__pycache__", ".pytest_cache",
				"node_modules", "vendor", "packages",
				"Library", ".Trash",
				".idea", ".vscode", ".vs",
				"build", "dist", "target", "out",
				".docsort",
			},
			ExcludedFiles: []string{
				".DS_Store", "Thumbs.db", ".localized",
			},
		},
		Converter: ConverterConfig{
			Command:        "markitdown",
			TimeoutSeconds: 120,
		},
		Generator: GeneratorConfig{
			BaseURL:           "http://localhost:11434",
			Model:             "llama3.2",
			TimeoutSeconds:    120,
			RequestsPerMinute: 30,
		},
		Summarise: SummariseConfig{
			MinContentChars: 80,
			MaxContentChars: 12000,
			MaxTokens:       600,
			Temperature:     0.2,
		},
		Concurrency: 4,
	}
}
