package system

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ShellExecutor interprets command lines with a POSIX shell interpreter.
// Builtins are handled in-process, other commands are spawned from the PATH.
type ShellExecutor struct {
	// Dir is the working directory (current directory when empty).
	Dir string
	// Env overrides the process environment when not nil.
	Env []string
}

func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{}
}

// ExitError reports a command that terminated with a non-zero status.
type ExitError struct {
	Command string
	Status  int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command %q exited with status %d: %s", e.Command, e.Status, e.Stderr)
	}
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.Status)
}

func (e *ShellExecutor) Run(ctx context.Context, cmdline string) error {
	_, err := e.run(ctx, cmdline)
	return err
}

func (e *ShellExecutor) Output(ctx context.Context, cmdline string) (string, error) {
	return e.run(ctx, cmdline)
}

func (e *ShellExecutor) run(ctx context.Context, cmdline string) (string, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(cmdline), "")
	if err != nil {
		return "", fmt.Errorf("failed to parse command %q: %w", cmdline, err)
	}

	var stdout, stderr bytes.Buffer
	env := e.Env
	if env == nil {
		env = os.Environ()
	}
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, &stdout, &stderr),
	}
	if e.Dir != "" {
		opts = append(opts, interp.Dir(e.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create interpreter: %w", err)
	}

	logrus.WithField("cmd", cmdline).Debug("Running command")
	if err := runner.Run(ctx, prog); err != nil {
		if exitStatus, ok := interp.IsExitStatus(err); ok {
			return stdout.String(), &ExitError{
				Command: cmdline,
				Status:  int(exitStatus),
				Stderr:  strings.TrimSpace(stderr.String()),
			}
		}
		return stdout.String(), fmt.Errorf("command %q failed: %w", cmdline, err)
	}
	return stdout.String(), nil
}

// Quote returns s quoted so that the shell reads it back as a single word.
func Quote(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only strings with null bytes cannot be quoted
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return quoted
}

// Command builds a command line from a program name and its arguments.
// Ex: Command("cp", "-a", "my dir/.", "/tmp") => cp -a 'my dir/.' /tmp
func Command(name string, args ...string) string {
	words := []string{name}
	for _, arg := range args {
		words = append(words, Quote(arg))
	}
	return strings.Join(words, " ")
}
