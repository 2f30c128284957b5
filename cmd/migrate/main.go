package main

import (
	"fmt"
	"os"

	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/pipeline"
)

func main() {
	a := &app{}
	rootCmd := RootCommand(a)

	err := rootCmd.Execute()
	a.close()

	os.Exit(exitCode(a, err))
}

// exitCode maps the outcome of a command to the process exit code. Setup
// failures exit 2; a finished run exits with the code its result carries.
func exitCode(a *app, err error) int {
	if err == nil {
		return a.exitCode
	}

	fmt.Fprintln(os.Stderr, err)
	if migerrors.IsSetupError(err) {
		return pipeline.ExitSetup
	}
	if a.exitCode != pipeline.ExitOK {
		return a.exitCode
	}
	// flag and argument errors from cobra
	return pipeline.ExitSetup
}
