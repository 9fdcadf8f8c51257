// Package ruleengine implements a forward-chaining inference rule engine.
//
// A question is a string identifier that resolves to a typed Answer
// (bool, int, double, string, or a host-registered extension type).
// Rules declare, for a question, a Predicate over other questions and
// a right-hand-side Answer; a Brain indexes rules by question and
// selects among matching rules by priority and predicate specificity.
// A Facts store holds known answers supplied by the client, caches
// answers inferred by the Brain along with their dependency set, and
// invalidates cached answers when any dependency changes.
//
// The package is organized around four collaborating types:
//
//   - Predicate and Evaluate: a recursive, short-circuiting boolean
//     algebra over comparisons between questions, literal answers, and
//     nested predicates.
//   - Rule and Brain: rule records, indexed and sorted by question,
//     with ambiguity detection and named-assignment dispatch.
//   - Facts: the mutable known/inferred answer store with dependency
//     tracking and invalidation.
//   - Serialization and Linter: a canonical, round-trip-stable
//     encoding for rules and predicates, and static checks against an
//     optional specification.
//
// The engine is single-threaded and not reentrant across goroutines;
// see the package-level "Concurrency" section of the project
// documentation for the precise contract.
package ruleengine
