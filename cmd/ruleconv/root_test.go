package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunConvertSuccess(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "1: True => weather = sunny\n")

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath}, &stdout, &stderr)

	require.Equal(t, exitSuccess, code)
	require.Empty(t, stderr.String())
	require.NotEmpty(t, stdout.String())
}

func TestRunConvertInputNotFound(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runConvert([]string{"/no/such/rules.txt"}, &stdout, &stderr)

	require.Equal(t, exitInputNotFound, code)
	require.Contains(t, stderr.String(), "not found")
}

func TestRunConvertInputReadFailed(t *testing.T) {
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{dir}, &stdout, &stderr)

	require.Equal(t, exitInputReadFailed, code)
}

func TestRunConvertLintSpecNotFound(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "1: True => weather = sunny\n")

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath, "/no/such/spec.json"}, &stdout, &stderr)

	require.Equal(t, exitLintSpecNotFound, code)
}

func TestRunConvertLintReadFailed(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "1: True => weather = sunny\n")
	subdir := filepath.Join(dir, "spec-is-a-dir")
	require.NoError(t, os.Mkdir(subdir, 0o755))

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath, subdir}, &stdout, &stderr)

	require.Equal(t, exitLintReadFailed, code)
}

func TestRunConvertLintDecodeFailed(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "1: True => weather = sunny\n")
	specPath := writeTempFile(t, dir, "spec.json", "not json and not yaml: [")

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath, specPath}, &stdout, &stderr)

	require.Equal(t, exitLintDecodeFailed, code)
}

func TestRunConvertParseFailed(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "this is not a rule line\n")

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath}, &stdout, &stderr)

	require.Equal(t, exitParseFailed, code)
	require.NotEmpty(t, stderr.String())
}

func TestRunConvertInvalidRules(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "1: True => weather = sunny\n")
	// A lint spec that declares no rhs questions trips the
	// not-declared-in-rhs check for "weather".
	specPath := writeTempFile(t, dir, "spec.json", `{"rhs": {}}`)

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath, specPath}, &stdout, &stderr)

	require.Equal(t, exitInvalidRules, code)
	require.Contains(t, stderr.String(), "not declared")
}

func TestRunConvertAcceptsYAMLLintSpec(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "0: True => weather = sunny\n")
	specPath := writeTempFile(t, dir, "spec.yaml", "rhs:\n  weather: string\n")

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath, specPath}, &stdout, &stderr)

	require.Equal(t, exitSuccess, code)
}

func TestRunConvertAcceptsBareStringConstraint(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "0: True => weather = sunny\n")
	specPath := writeTempFile(t, dir, "spec.json", `{"rhs": {"weather": "string"}}`)

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath, specPath}, &stdout, &stderr)

	require.Equal(t, exitSuccess, code)
}

func TestRunConvertAcceptsStringsArrayConstraint(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "0: True => weather = sunny\n")
	specPath := writeTempFile(t, dir, "spec.json", `{"rhs": {"weather": ["sunny", "rainy"]}}`)

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath, specPath}, &stdout, &stderr)

	require.Equal(t, exitSuccess, code)
}

func TestRunConvertRejectsUnrecognizedConstraint(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeTempFile(t, dir, "rules.txt", "0: True => weather = sunny\n")
	specPath := writeTempFile(t, dir, "spec.json", `{"rhs": {"weather": 5}}`)

	var stdout, stderr bytes.Buffer
	code := runConvert([]string{rulesPath, specPath}, &stdout, &stderr)

	require.Equal(t, exitLintDecodeFailed, code)
}
