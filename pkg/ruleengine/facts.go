package ruleengine

import (
	"go.uber.org/zap"
)

// FactsConfig configures a Facts store at construction. The zero value
// is DefaultFactsConfig.
type FactsConfig struct {
	// CacheAnswers gates the inferred map and its reverse dependency
	// index (spec.md §4.4 "Caching is optional"). When false, every
	// Ask re-derives from scratch.
	CacheAnswers bool
	Logger       *zap.Logger
}

// DefaultFactsConfig returns the default configuration: caching off, no
// logging.
func DefaultFactsConfig() *FactsConfig {
	return &FactsConfig{CacheAnswers: false}
}

// Facts is the mutable question-to-answer store (spec.md §4.4): a
// client-supplied known map, an optional inferred cache, and a reverse
// dependents index used to invalidate inferred answers when a
// depended-on question's known value changes. Facts is deliberately
// not internally synchronized: spec.md §5 specifies single-threaded,
// non-reentrant use, and Ask recurses into itself via Brain.Ask, so a
// plain mutex here would buy nothing and a naive one would deadlock
// on that recursion.
type Facts struct {
	brain        *Brain
	cacheAnswers bool
	logger       *zap.Logger

	known    map[Question]AnswerWithDependencies
	inferred map[Question]AnswerWithDependencies
	// dependents maps a depended-on question to the set of inferred
	// questions whose cached answer consulted it (spec.md §4.4's
	// reverse index, the invariant checked in §8 property 4).
	dependents map[Question]QuestionSet
}

// NewFacts constructs a Facts store bound to brain. A nil config is
// equivalent to DefaultFactsConfig.
func NewFacts(brain *Brain, config *FactsConfig) *Facts {
	if config == nil {
		config = DefaultFactsConfig()
	}
	return &Facts{
		brain:        brain,
		cacheAnswers: config.CacheAnswers,
		logger:       withDefaultLogger(config.Logger),
		known:        make(map[Question]AnswerWithDependencies),
		inferred:     make(map[Question]AnswerWithDependencies),
		dependents:   make(map[Question]QuestionSet),
	}
}

// Know writes a as a client-supplied known fact for q, then forgets
// every inferred answer transitively dependent on q (spec.md §4.4
// "know"). The written entry carries no dependencies: known facts are
// axioms, not derivations.
func (f *Facts) Know(q Question, a Answer) {
	f.known[q] = Known(a)
	f.invalidate(q)
}

// Forget removes q's known fact, if any, then forgets every inferred
// answer transitively dependent on q (spec.md §4.4 "forget").
func (f *Facts) Forget(q Question) {
	delete(f.known, q)
	f.invalidate(q)
}

// Set is a convenience wrapper: Set(q, &a) behaves like Know(q, *a);
// Set(q, nil) behaves like Forget(q).
func (f *Facts) Set(q Question, a *Answer) {
	if a == nil {
		f.Forget(q)
		return
	}
	f.Know(q, *a)
}

// invalidate forgets every inferred answer transitively dependent on q
// and clears the dependents bucket of q and of every evicted answer.
//
// This implements the stricter of the two invalidation strategies
// spec.md §9 allows: rather than leaving indirect dependents as
// garbage cleared lazily on their ancestors' next write, it walks the
// dependents graph transitively so that every inferred answer whose
// derivation chain touched q is evicted in the same call.
func (f *Facts) invalidate(q Question) {
	visited := NewQuestionSet()
	queue := []Question{q}
	evicted := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		deps, ok := f.dependents[cur]
		delete(f.dependents, cur)
		if !ok {
			continue
		}
		for dependent := range deps {
			delete(f.inferred, dependent)
			evicted++
			if !visited.Contains(dependent) {
				visited.Add(dependent)
				queue = append(queue, dependent)
			}
		}
	}
	if evicted > 0 {
		f.logger.Debug("invalidated dependents",
			zap.String("question", string(q)),
			zap.Int("evicted", evicted),
		)
	}
}

// Ask resolves q: a known fact wins, then (if caching is on) an
// inferred cache hit, and otherwise the Brain is consulted and the
// result is cached along with its dependency set (spec.md §4.4
// "ask").
func (f *Facts) Ask(q Question) (AnswerWithDependencies, error) {
	if known, ok := f.known[q]; ok {
		return known, nil
	}
	if f.cacheAnswers {
		if cached, ok := f.inferred[q]; ok {
			return cached, nil
		}
	}

	correlationID := newCorrelationID()
	f.logger.Debug("resolving question",
		zap.String("question", string(q)),
		zap.String("correlation_id", correlationID),
	)
	result, err := f.brain.Ask(q, f)
	if err != nil {
		f.logger.Debug("resolving question failed",
			zap.String("question", string(q)),
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
		return AnswerWithDependencies{}, err
	}
	f.logger.Debug("resolved question",
		zap.String("question", string(q)),
		zap.String("correlation_id", correlationID),
		zap.String("answer", result.Answer.String()),
	)

	if f.cacheAnswers {
		f.inferred[q] = result
		for d := range result.Dependencies {
			if f.dependents[d] == nil {
				f.dependents[d] = NewQuestionSet()
			}
			f.dependents[d].Add(q)
		}
	}
	return result, nil
}

// AskBool resolves q and asserts its answer is a Bool.
func (f *Facts) AskBool(q Question) (bool, error) {
	awd, err := f.Ask(q)
	if err != nil {
		return false, err
	}
	b, ok := awd.Answer.Bool()
	if !ok {
		return false, &AnswerTypeMismatchError{Question: q, Want: KindBool, Got: awd.Answer}
	}
	return b, nil
}

// AskInt resolves q and asserts its answer is an Int.
func (f *Facts) AskInt(q Question) (int64, error) {
	awd, err := f.Ask(q)
	if err != nil {
		return 0, err
	}
	i, ok := awd.Answer.Int()
	if !ok {
		return 0, &AnswerTypeMismatchError{Question: q, Want: KindInt, Got: awd.Answer}
	}
	return i, nil
}

// AskDouble resolves q and asserts its answer is a Double.
func (f *Facts) AskDouble(q Question) (float64, error) {
	awd, err := f.Ask(q)
	if err != nil {
		return 0, err
	}
	d, ok := awd.Answer.Double()
	if !ok {
		return 0, &AnswerTypeMismatchError{Question: q, Want: KindDouble, Got: awd.Answer}
	}
	return d, nil
}

// AskString resolves q and asserts its answer is a String.
func (f *Facts) AskString(q Question) (string, error) {
	awd, err := f.Ask(q)
	if err != nil {
		return "", err
	}
	s, ok := awd.Answer.Str()
	if !ok {
		return "", &AnswerTypeMismatchError{Question: q, Want: KindString, Got: awd.Answer}
	}
	return s, nil
}

// Clear removes every known and inferred answer, resetting the store
// to its constructed state.
func (f *Facts) Clear() {
	f.known = make(map[Question]AnswerWithDependencies)
	f.inferred = make(map[Question]AnswerWithDependencies)
	f.dependents = make(map[Question]QuestionSet)
}

// Brain returns the Brain this Facts store resolves unknown questions
// against.
func (f *Facts) Brain() *Brain { return f.brain }
