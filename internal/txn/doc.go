// Package txn applies a version plan to disk as one transaction. Every edit is
// staged and verified in memory, and every target file is re-read and checked
// for outside modification, before the first byte is written. Files are then
// flushed in selection order with atomic renames.
package txn
