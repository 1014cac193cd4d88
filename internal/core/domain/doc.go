// Package domain contains the core business entities for the document
// pipeline: scanned files, the stage ledger, briefs, classifications and
// stage reports. It has no dependencies on adapters or infrastructure.
package domain
