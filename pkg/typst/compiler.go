package typst

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Compiler abstracts the external document compiler.
// This allows the render step to be tested against a fake implementation
// without invoking real compilation.
type Compiler interface {
	Compile(ctx context.Context, templatePath string, sysInputs map[string]string) ([]byte, error)
}

// CLICompiler invokes the typst binary on the local host.
type CLICompiler struct {
	binary string
}

// NewCLICompiler creates a compiler backed by the typst CLI.
func NewCLICompiler(binary string) *CLICompiler {
	if binary == "" {
		binary = "typst"
	}
	return &CLICompiler{binary: binary}
}

// Available reports whether the typst binary can be resolved on PATH.
func (c *CLICompiler) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// Compile renders templatePath with the given system inputs and returns the
// PDF bytes. The call is blocking; cancellation and timeout are controlled
// by ctx.
func (c *CLICompiler) Compile(ctx context.Context, templatePath string, sysInputs map[string]string) ([]byte, error) {
	args := []string{"compile", "--format", "pdf"}

	// Sort keys so the command line is deterministic
	keys := make([]string, 0, len(sysInputs))
	for k := range sysInputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--input", k+"="+sysInputs[k])
	}

	// "-" writes the compiled document to stdout
	args = append(args, templatePath, "-")

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("typst compile %s: %w", templatePath, ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("typst compile %s: %s", templatePath, msg)
		}
		return nil, fmt.Errorf("typst compile %s: %w", templatePath, err)
	}

	return stdout.Bytes(), nil
}
