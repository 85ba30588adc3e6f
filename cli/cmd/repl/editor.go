package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/ecalc/lang"
	"github.com/ardnew/ecalc/log"
)

const defaultEditor = "vi"

// marshalEnvironment renders env as a YAML mapping in key order.
func marshalEnvironment(env lang.Environment) ([]byte, error) {
	var doc yaml.MapSlice

	for _, key := range env.Keys() {
		v, _ := env.Get(key)

		// Numbers marshal themselves with every digit.
		var native any = v
		if _, ok := v.(lang.Number); !ok {
			native = lang.Native(v)
		}

		doc = append(doc, yaml.MapItem{Key: key, Value: native})
	}

	if len(doc) == 0 {
		return nil, nil
	}

	return yaml.Marshal(doc)
}

// editEnvCommand implements [tea.ExecCommand] for the environment
// edit-load-retry loop. It writes the environment to a temp file as YAML,
// opens the user's editor, and reloads the result. On a load error the user
// is prompted to re-edit; declining exits the program.
type editEnvCommand struct {
	env     lang.Environment
	ctxFunc func() context.Context
	newEnv  lang.Environment
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editEnvCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editEnvCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editEnvCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file leaves newEnv nil. If the user
// declines to re-edit after an error, Run returns [ErrEditDeclined].
func (c *editEnvCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := marshalEnvironment(c.env)
	if err != nil {
		return fmt.Errorf("encode environment: %w", err)
	}

	f, err := os.CreateTemp(os.TempDir(), "ecalc-env-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		env, loadErr := lang.LoadEnvironment(bytes.NewReader(data))
		c.logger.TraceContext(
			ctx,
			"editor load attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", loadErr == nil),
		)

		if loadErr == nil {
			c.newEnv = env

			return nil
		}

		fmt.Fprintf(c.stderr, "\nInvalid environment: %s\n", loadErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = data
	}
}

// runEditor runs the user's editor on the file at path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	// EDITOR may carry arguments, e.g. "code --wait".
	args := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
