package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/josephgoksu/taskgraph/internal/task"
	"github.com/josephgoksu/taskgraph/internal/ui"
	"github.com/spf13/viper"
)

// Exit codes shared by every command.
const (
	ExitOK         = 0
	ExitGeneric    = 1
	ExitValidation = 2
	ExitNotFound   = 3
	ExitConflict   = 4
)

// exitCode maps err to the process exit status.
func exitCode(err error) int {
	switch task.Kind(err) {
	case "":
		return ExitOK
	case task.CodeValidation, task.CodeSelfDependency, task.CodeCyclicDependency:
		return ExitValidation
	case task.CodeNotFound:
		return ExitNotFound
	case task.CodeDependencyNotSatisfied, task.CodeHasDependents, task.CodeConflict:
		return ExitConflict
	}
	var usage *usageError
	if errors.As(err, &usage) {
		return ExitValidation
	}
	return ExitGeneric
}

// usageError marks bad flags or arguments that are not domain validation
// failures.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// printError writes err to stderr. Domain errors get a short headline with
// their code; verbose mode adds the details payload.
func printError(err error) {
	code := task.Kind(err)
	title := "Error"
	if code != task.CodeInternal {
		title = code
	}

	var lines []string
	var blocked *task.DependencyNotSatisfiedError
	if errors.As(err, &blocked) {
		for _, b := range blocked.Blocking {
			lines = append(lines, fmt.Sprintf("waiting on %s %s (%s)", b.ID, b.Name, ui.Label(string(b.Status))))
		}
	}
	var hasDeps *task.HasDependentsError
	if errors.As(err, &hasDeps) {
		for _, id := range hasDeps.Dependents {
			lines = append(lines, "required by "+id)
		}
	}
	if viper.GetBool("verbose") {
		if details := task.Details(err); details != nil {
			lines = append(lines, fmt.Sprintf("details: %v", details))
		}
	}

	msg := err.Error()
	if len(lines) > 0 {
		msg += "\n" + strings.Join(lines, "\n")
	}
	fmt.Fprintln(os.Stderr, ui.RenderErrorPanel(title, msg))
}
