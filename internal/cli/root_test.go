package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/umapsgd/testutil"
)

// execute runs the root command and returns stdout and the log output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var logs, out bytes.Buffer
	c := New(&logs, &out, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func writeRing(t *testing.T, dir string, n int) string {
	t.Helper()

	var b strings.Builder
	g := testutil.Ring(n)
	for e := range g.Rows {
		fmt.Fprintf(&b, "%d %d %g\n", g.Rows[e], g.Cols[e], g.Vals[e])
	}
	path := filepath.Join(dir, "ring.tsv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func TestFitAB(t *testing.T) {
	out, _, err := execute(t, "fit-ab", "--spread", "1", "--min-dist", "0.1")
	require.NoError(t, err)

	var got struct {
		Params struct {
			A float64 `toml:"a"`
			B float64 `toml:"b"`
		} `toml:"params"`
	}
	_, err = toml.Decode(out, &got)
	require.NoError(t, err)
	assert.InDelta(t, 1.577, got.Params.A, 0.01)
	assert.InDelta(t, 0.895, got.Params.B, 0.01)
}

func TestFitAB_Invalid(t *testing.T) {
	_, _, err := execute(t, "fit-ab", "--spread", "0")
	assert.Error(t, err)
}

func TestEmbed_WithCheckpoints(t *testing.T) {
	dir := t.TempDir()
	input := writeRing(t, dir, 12)
	ckpt := filepath.Join(dir, "ckpt")
	output := filepath.Join(dir, "ring.csv")

	_, logs, err := execute(t, "embed", input,
		"--seed", "7",
		"--workers", "1",
		"--epochs", "20",
		"--checkpoint", ckpt,
		"--checkpoint-prefix", "ring",
		"--checkpoint-every", "10",
		"--compression", "lz4",
		"-o", output,
	)
	require.NoError(t, err)
	assert.Contains(t, logs, "layout written")
	assert.Contains(t, logs, "checkpoint saved")

	emb, err := readEmbeddingFile(output)
	require.NoError(t, err)
	assert.Equal(t, 12, emb.Len())
	assert.Equal(t, 2, emb.Dim())

	out, _, err := execute(t, "checkpoint", "list", ckpt, "--prefix", "ring")
	require.NoError(t, err)
	assert.Contains(t, out, "ring/epoch-000009.emb")
	assert.Contains(t, out, "ring/epoch-000019.emb")

	exported, _, err := execute(t, "checkpoint", "export", ckpt, "--prefix", "ring")
	require.NoError(t, err)
	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, string(written), exported)

	_, _, err = execute(t, "checkpoint", "export", ckpt, "--prefix", "ring", "--epoch", "3")
	assert.Error(t, err)
}

func TestEmbed_Reproducible(t *testing.T) {
	dir := t.TempDir()
	input := writeRing(t, dir, 10)

	run := func(name string) string {
		output := filepath.Join(dir, name)
		_, _, err := execute(t, "embed", input, "--seed", "3", "--workers", "1", "--epochs", "15", "-o", output)
		require.NoError(t, err)
		data, err := os.ReadFile(output)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, run("a.csv"), run("b.csv"))
}

func TestEmbed_Resume(t *testing.T) {
	dir := t.TempDir()
	input := writeRing(t, dir, 8)
	ckpt := filepath.Join(dir, "ckpt")

	_, _, err := execute(t, "embed", input, "--seed", "1", "--epochs", "5", "--checkpoint", ckpt)
	require.NoError(t, err)

	_, logs, err := execute(t, "embed", input, "--seed", "2", "--epochs", "5", "--checkpoint", ckpt, "--resume")
	require.NoError(t, err)
	assert.Contains(t, logs, "resuming")
}

func TestEmbed_InitShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	input := writeRing(t, dir, 4)
	initPath := filepath.Join(dir, "init.csv")
	require.NoError(t, os.WriteFile(initPath, []byte("0,0\n1,1\n"), 0o600))

	_, _, err := execute(t, "embed", input, "--init", initPath)
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestTransform(t *testing.T) {
	dir := t.TempDir()
	reference := filepath.Join(dir, "ref.csv")
	require.NoError(t, os.WriteFile(reference, []byte("0,0\n10,0\n0,10\n"), 0o600))

	input := filepath.Join(dir, "new.tsv")
	require.NoError(t, os.WriteFile(input, []byte("0 0 1\n0 1 1\n1 2 1\n"), 0o600))

	_, _, err := execute(t, "transform", input, "--reference", reference, "--seed", "5", "--epochs", "10")
	require.NoError(t, err)

	head, err := readEmbeddingFile(filepath.Join(dir, "new.emb.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, head.Len())

	ref, err := os.ReadFile(reference)
	require.NoError(t, err)
	assert.Equal(t, "0,0\n10,0\n0,10\n", string(ref))
}
