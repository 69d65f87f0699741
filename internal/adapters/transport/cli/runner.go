// Package cli shells out to anypoint-cli for the platform surfaces that
// have no public REST endpoint. Invocations are built from typed argv
// slices, never from interpolated shell strings.
package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/anypoint-reconciler/internal/errors"
)

const maxOutputSnippet = 300

// Options carries the session settings shared by every invocation. The
// bearer token travels as a global flag and is kept out of logs and
// error messages.
type Options struct {
	Binary       string
	Host         string
	Bearer       string
	Organization string
	Environment  string
}

type Runner struct {
	path   string
	args   []string
	global []string
	logger ports.Logger
	json   jsoniter.API

	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewRunner splits opts.Binary shell-style, so values like
// "npx anypoint-cli" work.
func NewRunner(opts Options, logger ports.Logger) (*Runner, error) {
	parts, err := shlex.Split(opts.Binary)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeConfigValidation, "splitting CLI binary %q", opts.Binary)
	}
	if len(parts) == 0 {
		return nil, apperrors.New(apperrors.CodeConfigValidation, "CLI binary is empty")
	}

	global := []string{"--bearer=" + opts.Bearer}
	if opts.Host != "" {
		global = append(global, "--host="+opts.Host)
	}
	if opts.Organization != "" {
		global = append(global, "--organization="+opts.Organization)
	}
	if opts.Environment != "" {
		global = append(global, "--environment="+opts.Environment)
	}

	return &Runner{
		path:       parts[0],
		args:       parts[1:],
		global:     global,
		logger:     logger,
		json:       jsoniter.ConfigCompatibleWithStandardLibrary,
		newCommand: exec.CommandContext,
	}, nil
}

// Result holds one invocation's outputs. ExitCode is zero unless the
// command ran and exited non-zero.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Matches reports whether either output stream contains marker. Readers
// use it to recognize failures that only mean the resource is absent.
func (r Result) Matches(marker string) bool {
	return bytes.Contains(r.Stdout, []byte(marker)) || bytes.Contains(r.Stderr, []byte(marker))
}

func (r *Runner) Run(ctx context.Context, args ...string) (Result, error) {
	argv := make([]string, 0, len(r.args)+len(r.global)+len(args))
	argv = append(argv, r.args...)
	argv = append(argv, r.global...)
	argv = append(argv, args...)

	cmd := r.newCommand(ctx, r.path, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	command := strings.Join(args, " ")
	r.logger.Debugf(ctx, "Running anypoint-cli: %s", command)

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, apperrors.Wrapf(ctx.Err(), apperrors.CodeTransport, "anypoint-cli %s canceled", command)
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, apperrors.Newf(apperrors.CodeTransport,
			"anypoint-cli %s exited with status %d: %s", command, res.ExitCode, outputSnippet(res))
	}

	if stderrors.Is(err, exec.ErrNotFound) {
		return res, apperrors.NewUserFacing(apperrors.CodeCLINotFound,
			fmt.Sprintf("the anypoint-cli binary %q was not found", r.path),
			"Install anypoint-cli or point cli.binary at an existing executable.")
	}

	return res, apperrors.Wrapf(err, apperrors.CodeTransport, "running anypoint-cli %s", command)
}

// RunJSON appends "--output json" and decodes stdout into out.
func (r *Runner) RunJSON(ctx context.Context, out any, args ...string) (Result, error) {
	res, err := r.Run(ctx, append(args, "--output", "json")...)
	if err != nil {
		return res, err
	}
	if err := r.json.Unmarshal(res.Stdout, out); err != nil {
		return res, apperrors.Wrapf(err, apperrors.CodeTransport,
			"decoding anypoint-cli JSON output for '%s'", strings.Join(args, " "))
	}
	return res, nil
}

func outputSnippet(res Result) string {
	out := strings.TrimSpace(string(res.Stderr))
	if out == "" {
		out = strings.TrimSpace(string(res.Stdout))
	}
	if len(out) > maxOutputSnippet {
		out = out[:maxOutputSnippet] + "..."
	}
	if out == "" {
		return "(no output)"
	}
	return out
}
