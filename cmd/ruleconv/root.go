package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gitrdm/ruleforge/pkg/ruleengine"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Exit codes, spec.md §6.
const (
	exitSuccess          = 0
	exitUsage            = 1
	exitInputNotFound    = 2
	exitLintSpecNotFound = 3
	exitInputReadFailed  = 4
	exitLintReadFailed   = 5
	exitLintDecodeFailed = 6
	exitParseFailed      = 7
	exitInvalidRules     = 8
	exitEncodingFailed   = 9
)

// exitError carries one of the codes above out of RunE without cobra
// printing its own "Error: ..." line; main prints nothing further and
// just propagates the code.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

var verbose bool

// newRootCmd builds the ruleconv command tree (spec.md §6): read a
// rule file, optionally lint it against a spec file, and emit
// canonical JSON for every parsed rule.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ruleconv <rules-file> [<linter-spec-file>]",
		Short:         "Convert a human rule file into canonical JSON",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code := runConvert(args, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if code != exitSuccess {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log parse and lint progress to stderr")
	return cmd
}

func newLogger(stderr io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// runConvert implements the body of the §6 contract and returns the
// exit code to use; it never calls os.Exit itself so it stays
// testable.
func runConvert(args []string, stdout, stderr io.Writer) int {
	logger := newLogger(stderr)
	defer logger.Sync() //nolint:errcheck

	rulesPath := args[0]
	var lintSpecPath string
	if len(args) > 1 {
		lintSpecPath = args[1]
	}

	rulesData, code := readInputFile(rulesPath, exitInputNotFound, exitInputReadFailed, stderr)
	if code != exitSuccess {
		return code
	}
	logger.Debug("read rules file", zap.String("path", rulesPath), zap.Int("bytes", len(rulesData)))

	var lintSpec *ruleengine.LintSpec
	if lintSpecPath != "" {
		lintData, code := readInputFile(lintSpecPath, exitLintSpecNotFound, exitLintReadFailed, stderr)
		if code != exitSuccess {
			return code
		}
		spec, err := decodeLintSpec(lintData)
		if err != nil {
			fmt.Fprintf(stderr, "decoding lint spec %s: %v\n", lintSpecPath, err)
			return exitLintDecodeFailed
		}
		lintSpec = spec
		logger.Debug("decoded lint spec", zap.String("path", lintSpecPath), zap.Int("lhs", len(spec.LHS)), zap.Int("rhs", len(spec.RHS)))
	}

	lines := strings.Split(string(rulesData), "\n")
	rules, parseErrs := ruleengine.ParseRuleFile(lines, ParsePredicate)
	if len(parseErrs) > 0 {
		combined := multierr.Combine(parseErrs...)
		for _, err := range multierr.Errors(combined) {
			fmt.Fprintln(stderr, err)
		}
		return exitParseFailed
	}
	logger.Info("parsed rules", zap.Int("count", len(rules)))

	issues := ruleengine.Lint(rules, lintSpec)
	if len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(stderr, "%d: %s\n", issue.Line, issue.Message)
		}
		return exitInvalidRules
	}

	if err := encodeRules(rules, stdout); err != nil {
		fmt.Fprintf(stderr, "encoding output: %v\n", err)
		return exitEncodingFailed
	}
	return exitSuccess
}

func readInputFile(path string, notFoundCode, readFailedCode int, stderr io.Writer) ([]byte, int) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "%s: not found\n", path)
			return nil, notFoundCode
		}
		fmt.Fprintf(stderr, "%s: %v\n", path, err)
		return nil, readFailedCode
	}
	return data, exitSuccess
}

// encodeRules writes rules to w as a canonical JSON array, one
// tagged-object element per rule (spec.md §4.5/§6).
func encodeRules(rules []ruleengine.Rule, w io.Writer) error {
	raws := make([]json.RawMessage, len(rules))
	for i, r := range rules {
		data, err := ruleengine.EncodeRuleJSON(r)
		if err != nil {
			return fmt.Errorf("rule at line %d: %w", r.SourceLine, err)
		}
		raws[i] = data
	}
	out, err := json.MarshalIndent(raws, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

// lintSpecWire is the on-disk shape of an optional linter spec file
// (JSON, with YAML accepted as a fallback): {"lhs": {question:
// constraint}, "rhs": {question: constraint}}. A constraint is either
// one of the literal strings "string" | "bool" | "int" | "double" |
// "any", or a JSON array of strings naming the allowed String answers
// (spec.md §6's "Linter spec file").
type lintSpecWire struct {
	LHS map[string]interface{} `json:"lhs" yaml:"lhs"`
	RHS map[string]interface{} `json:"rhs" yaml:"rhs"`
}

func decodeLintSpec(data []byte) (*ruleengine.LintSpec, error) {
	var wire lintSpecWire
	jsonErr := json.Unmarshal(data, &wire)
	if jsonErr != nil {
		if yamlErr := yaml.Unmarshal(data, &wire); yamlErr != nil {
			return nil, fmt.Errorf("not valid json (%v) or yaml (%v)", jsonErr, yamlErr)
		}
	}

	spec := &ruleengine.LintSpec{
		LHS: make(map[ruleengine.Question]ruleengine.AnswerConstraint, len(wire.LHS)),
		RHS: make(map[ruleengine.Question]ruleengine.AnswerConstraint, len(wire.RHS)),
	}
	for q, c := range wire.LHS {
		constraint, err := constraintFromWire(c)
		if err != nil {
			return nil, fmt.Errorf("lhs[%q]: %w", q, err)
		}
		spec.LHS[ruleengine.Question(q)] = constraint
	}
	for q, c := range wire.RHS {
		constraint, err := constraintFromWire(c)
		if err != nil {
			return nil, fmt.Errorf("rhs[%q]: %w", q, err)
		}
		spec.RHS[ruleengine.Question(q)] = constraint
	}
	return spec, nil
}

// constraintFromWire decodes one constraint value, which json.Unmarshal
// and yaml.Unmarshal both hand back into an interface{} as either a
// plain string or a []interface{} of strings (spec.md §6).
func constraintFromWire(raw interface{}) (ruleengine.AnswerConstraint, error) {
	switch v := raw.(type) {
	case string:
		switch v {
		case "any":
			return ruleengine.AnyConstraint(), nil
		case "string":
			return ruleengine.StringConstraint(), nil
		case "bool":
			return ruleengine.BoolConstraint(), nil
		case "int":
			return ruleengine.IntConstraint(), nil
		case "double":
			return ruleengine.DoubleConstraint(), nil
		default:
			return ruleengine.AnswerConstraint{}, fmt.Errorf("unrecognized constraint %q", v)
		}
	case []interface{}:
		values := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return ruleengine.AnswerConstraint{}, fmt.Errorf("strings constraint element %d is not a string", i)
			}
			values[i] = s
		}
		return ruleengine.StringsConstraint(values...), nil
	default:
		return ruleengine.AnswerConstraint{}, fmt.Errorf("constraint must be a string or an array of strings, got %T", raw)
	}
}
