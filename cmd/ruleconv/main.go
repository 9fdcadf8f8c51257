// Command ruleconv converts a human rule file into canonical JSON,
// optionally linting it against a specification file first (spec.md
// §6). Exit code meanings are documented on the exit* constants in
// root.go.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err == nil {
		os.Exit(exitSuccess)
	}
	if ee, ok := err.(*exitError); ok {
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitUsage)
}
