// Package sqlite implements the stage ledger on SQLite. The ledger is
// the durable, resumable record of each canonical file's progress through
// the pipeline stages; WAL mode and a busy timeout keep concurrent stage
// writers safe.
package sqlite
