// Package ggerr holds the small set of typed errors the core surfaces to
// callers. Most packages still wrap with fmt.Errorf("...: %w", err) the way
// the rest of this codebase does; these types exist only where callers are
// expected to switch on kind (the CLI's exit-code selection, the batch
// extractor's per-entry failure collection).
package ggerr

import "fmt"

// Io wraps a local file-access failure.
type Io struct {
	Path  string
	Cause error
}

func (e *Io) Error() string { return fmt.Sprintf("io error on %q: %v", e.Path, e.Cause) }
func (e *Io) Unwrap() error { return e.Cause }

// UnknownGame is returned when an archive's basename matches no known game.
type UnknownGame struct {
	ArchivePath string
}

func (e *UnknownGame) Error() string {
	return fmt.Sprintf("%q does not match a known game's archive naming", e.ArchivePath)
}

// MalformedHeader covers archive, ValueTree, and container header mismatches.
type MalformedHeader struct {
	Offset           int64
	Expected, Actual string
}

func (e *MalformedHeader) Error() string {
	return fmt.Sprintf("malformed header at offset %d: expected %s, got %s", e.Offset, e.Expected, e.Actual)
}

// MalformedTree is a ValueTree grammar violation.
type MalformedTree struct {
	Offset int64
	Reason string
}

func (e *MalformedTree) Error() string {
	return fmt.Sprintf("malformed value tree at offset %d: %s", e.Offset, e.Reason)
}

// MalformedFunction is a bytecode container violation.
type MalformedFunction struct {
	Offset int64
	Reason string
}

func (e *MalformedFunction) Error() string {
	return fmt.Sprintf("malformed function at offset %d: %s", e.Offset, e.Reason)
}

// CipherLimitExceeded is a programmer error: a decodeLimit greater than the
// input length was requested.
type CipherLimitExceeded struct {
	Limit, Requested int
}

func (e *CipherLimitExceeded) Error() string {
	return fmt.Sprintf("cipher decode limit %d exceeds requested %d bytes", e.Limit, e.Requested)
}
