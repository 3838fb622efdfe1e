// Package ledger keeps a small SQLite database next to the downloaded
// files.
//
// It records which track owns each output path, so two tracks whose names
// sanitize to the same file never overwrite each other across runs, and
// it keeps a history of per-track outcomes.
package ledger
