// Package services implements the pipeline stages: scanning, duplicate
// grouping, conversion, summarisation, classification and tree
// materialisation, plus the orchestrator that wires them together.
package services
