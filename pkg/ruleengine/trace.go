package ruleengine

import "github.com/google/uuid"

// newCorrelationID mints an opaque identifier attached to the pair of
// "resolving question"/"resolved question" log lines Facts.Ask emits
// around one cache-miss call into the Brain, so a host can grep one
// resolution's worth of logging out of a busy trace. The
// normalize-and-tag pattern is grounded on browserNerd's
// internal/correlation package; unlike that package (which extracts
// IDs other systems minted), this engine has no inbound transport to
// harvest IDs from, so it mints its own.
func newCorrelationID() string {
	return uuid.NewString()
}
