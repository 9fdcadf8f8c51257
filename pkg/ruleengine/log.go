package ruleengine

import "go.uber.org/zap"

// noopLogger is shared by every Brain/Facts whose BrainConfig or
// FactsConfig leaves Logger nil, matching the teacher's tolerance for a
// nil/no-op collaborator rather than requiring every caller to wire
// one up.
var noopLogger = zap.NewNop()

// withDefaultLogger returns logger, or the shared no-op logger when
// logger is nil.
func withDefaultLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return noopLogger
	}
	return logger
}
