package ruleengine

import (
	"sort"

	"go.uber.org/zap"
)

// Strategy governs how Brain.Ask resolves an ambiguous match — more
// than one candidate rule sharing the maximum (priority, size)
// matching simultaneously (spec.md §4.3 step 5).
type Strategy int

const (
	// StrategyFail returns AmbiguousError when candidates tie.
	StrategyFail Strategy = iota
	// StrategyUndefined fires the first tied candidate and journals
	// the rest into the produced AnswerWithDependencies.AmbiguousRules.
	StrategyUndefined
)

// AmbiguousPair is a pair of rules for the same question that share
// the same (priority, size) as recorded at insertion time (spec.md
// §4.2/§9 "pair-at-insertion"). It is distinct from the runtime
// AmbiguousRules journaled on an AnswerWithDependencies.
type AmbiguousPair struct {
	A, B Rule
}

// ruleEntry pairs a Rule with its predicate's memoized size so the
// per-question index can be sorted without recomputing it.
type ruleEntry struct {
	rule Rule
	size int
}

// BrainConfig configures a Brain at construction. The zero value is
// DefaultBrainConfig.
type BrainConfig struct {
	Strategy Strategy
	Logger   *zap.Logger
}

// DefaultBrainConfig returns the default configuration: StrategyFail,
// no logging.
func DefaultBrainConfig() *BrainConfig {
	return &BrainConfig{Strategy: StrategyFail}
}

// Brain owns the rule index, the assignment-function registry, and
// the insertion-time ambiguity journal (spec.md §3). A Brain is
// read-mostly after its rules and assignments are added; it may be
// shared by multiple Facts instances, each of which carries its own
// caches (spec.md §5).
type Brain struct {
	strategy    Strategy
	logger      *zap.Logger
	rules       map[Question][]ruleEntry
	assignments map[AssignmentName]AssignmentFunc
	ambiguities map[Question][]AmbiguousPair
}

// NewBrain constructs an empty Brain. A nil config is equivalent to
// DefaultBrainConfig.
func NewBrain(config *BrainConfig) *Brain {
	if config == nil {
		config = DefaultBrainConfig()
	}
	return &Brain{
		strategy:    config.Strategy,
		logger:      withDefaultLogger(config.Logger),
		rules:       make(map[Question][]ruleEntry),
		assignments: make(map[AssignmentName]AssignmentFunc),
		ambiguities: make(map[Question][]AmbiguousPair),
	}
}

// Add inserts rules into the index, one batch at a time (spec.md
// §4.2). Insertion re-sorts each affected question's candidate list
// descending by (priority, size) and records any newly-tied pairs in
// the ambiguity journal. Rules are never removed.
func (b *Brain) Add(rules ...Rule) {
	affected := make(map[Question]struct{}, len(rules))
	for _, r := range rules {
		size := r.Predicate.Size()
		b.rules[r.Question] = append(b.rules[r.Question], ruleEntry{rule: r, size: size})
		affected[r.Question] = struct{}{}
	}
	for q := range affected {
		b.resort(q)
	}
}

// AddAssignment registers fn under name, overwriting any previous
// registration of the same name (spec.md §4.2).
func (b *Brain) AddAssignment(name AssignmentName, fn AssignmentFunc) {
	b.assignments[name] = fn
}

// resort re-sorts rules[q] descending by (priority, size) and, when
// the sorted list has any adjacent tied pairs, replaces q's ambiguity
// journal with all of them. Pairs found in an earlier batch are
// therefore recomputed rather than duplicated (Go's sort.SliceStable
// preserves insertion order within a tie, so previously-adjacent tied
// pairs stay adjacent).
func (b *Brain) resort(q Question) {
	entries := b.rules[q]
	sort.SliceStable(entries, func(i, j int) bool {
		ei, ej := entries[i], entries[j]
		if ei.rule.Priority != ej.rule.Priority {
			return ei.rule.Priority > ej.rule.Priority
		}
		return ei.size > ej.size
	})
	b.rules[q] = entries

	var pairs []AmbiguousPair
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if tied(prev.rule.Priority, prev.size, cur.rule.Priority, cur.size) {
			pairs = append(pairs, AmbiguousPair{A: prev.rule, B: cur.rule})
		}
	}
	if len(pairs) > 0 {
		b.ambiguities[q] = pairs
		b.logger.Debug("ambiguous rules detected at insertion",
			zap.String("question", string(q)),
			zap.Int("pairs", len(pairs)),
		)
	}
}

// Ambiguities returns the insertion-time ambiguity journal for q
// (spec.md §4.2, §9 "pair-at-insertion"). The returned slice is a
// read-only snapshot.
func (b *Brain) Ambiguities(q Question) []AmbiguousPair {
	out := make([]AmbiguousPair, len(b.ambiguities[q]))
	copy(out, b.ambiguities[q])
	return out
}

// Candidates returns the sorted rule list for q, for introspection
// and tests.
func (b *Brain) Candidates(q Question) []Rule {
	entries := b.rules[q]
	out := make([]Rule, len(entries))
	for i, e := range entries {
		out[i] = e.rule
	}
	return out
}

// Ask selects among the rules registered for q and fires the winner,
// per spec.md §4.3. It is only ever invoked by Facts.Ask on a cache
// miss.
func (b *Brain) Ask(q Question, facts *Facts) (AnswerWithDependencies, error) {
	entries := b.rules[q]
	if len(entries) == 0 {
		return AnswerWithDependencies{}, &NoRuleFoundError{Question: q}
	}

	type matched struct {
		entry ruleEntry
		eval  Evaluation
	}
	var candidates []matched
	var floorPriority, floorSize int
	haveFloor := false

	for _, e := range entries {
		if haveFloor && !dominates(e.rule.Priority, e.size, floorPriority, floorSize) {
			break
		}
		eval, err := Evaluate(e.rule.Predicate, facts)
		if err != nil {
			return AnswerWithDependencies{}, &CandidateEvaluationFailedError{Question: q, Err: err}
		}
		if eval.Value {
			candidates = append(candidates, matched{entry: e, eval: eval})
			if !haveFloor {
				floorPriority, floorSize = e.rule.Priority, e.size
				haveFloor = true
			}
		}
	}
	if len(candidates) == 0 {
		return AnswerWithDependencies{}, &NoRuleFoundError{Question: q}
	}

	winner := candidates[0]

	if len(candidates) > 1 && b.strategy == StrategyFail {
		tiedRules := make([]Rule, len(candidates))
		for i, c := range candidates {
			tiedRules[i] = c.entry.rule
		}
		return AnswerWithDependencies{}, &AmbiguousError{Question: q, Candidates: tiedRules}
	}

	result, err := b.fire(winner.entry.rule, facts, winner.eval.Dependencies)
	if err != nil {
		return AnswerWithDependencies{}, err
	}
	result.AmbiguousRules = append(result.AmbiguousRules, winner.eval.AmbiguousRules...)
	if len(candidates) > 1 {
		tiedRules := make(AmbiguousRules, len(candidates))
		for i, c := range candidates {
			tiedRules[i] = c.entry.rule
		}
		result.AmbiguousRules = append(result.AmbiguousRules, tiedRules)
	}
	return result, nil
}

// fire produces the final answer for a winning rule: either its
// literal Answer, or whatever its named assignment computes (spec.md
// §4.3 step 6).
func (b *Brain) fire(rule Rule, facts *Facts, dependencies QuestionSet) (AnswerWithDependencies, error) {
	if !rule.HasAssignment() {
		return AnswerWithDependencies{Answer: rule.Answer, Dependencies: dependencies}, nil
	}

	fn, ok := b.assignments[rule.Assignment]
	if !ok {
		return AnswerWithDependencies{}, &AssignmentFailedError{
			Question: rule.Question,
			Err:      &AssignmentNotFoundError{Name: string(rule.Assignment)},
		}
	}
	result, assignErr := fn(rule, facts, dependencies)
	if assignErr != nil {
		return AnswerWithDependencies{}, &AssignmentFailedError{Question: rule.Question, Err: assignErr}
	}
	return result, nil
}
