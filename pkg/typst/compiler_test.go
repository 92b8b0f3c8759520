package typst

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCLICompiler_DefaultBinary(t *testing.T) {
	c := NewCLICompiler("")
	assert.Equal(t, "typst", c.binary)
}

func TestCLICompiler_Available(t *testing.T) {
	missing := NewCLICompiler("definitely-not-a-real-binary-7f3a")
	assert.False(t, missing.Available())

	// Any POSIX system has a shell on PATH
	present := NewCLICompiler("sh")
	assert.True(t, present.Available())
}

func TestCLICompiler_Compile_MissingBinary(t *testing.T) {
	c := NewCLICompiler("definitely-not-a-real-binary-7f3a")

	out, err := c.Compile(context.Background(), "template/template.typ", map[string]string{"inputs": "{}"})
	assert.Nil(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template/template.typ")
}

func TestCLICompiler_Compile_ArgumentLayout(t *testing.T) {
	// echo stands in for the compiler and prints back the argument vector
	c := NewCLICompiler("echo")

	out, err := c.Compile(context.Background(), "template/template.typ", map[string]string{
		"inputs": `{"language":"it"}`,
	})
	require.NoError(t, err)

	args := string(out)
	assert.Contains(t, args, "compile --format pdf")
	assert.Contains(t, args, `--input inputs={"language":"it"}`)
	assert.Contains(t, args, "template/template.typ -")
}

func TestCLICompiler_Compile_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// yes loops forever regardless of arguments, so the deadline fires first.
	// GNU coreutils yes rejects unknown long options (like --format) unless
	// POSIXLY_CORRECT makes it stop option parsing at the first operand.
	t.Setenv("POSIXLY_CORRECT", "1")
	c := NewCLICompiler("yes")
	_, err := c.Compile(ctx, "template/template.typ", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
