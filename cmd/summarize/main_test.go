package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textdigest/internal/domain/entity"
	"textdigest/internal/summary"
	"textdigest/internal/usecase/digest"
)

const catsText = "Cats are wonderful pets. Cats sleep most of the day. " +
	"Dogs bark at the mailman. Cats purr when they are happy. " +
	"The weather was mild on Tuesday."

const birdsText = "Birds sing in the morning. Birds build nests in spring. " +
	"The river was cold. Birds migrate south when winter comes."

func runApp(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	ui := UI{In: strings.NewReader(stdin), Out: &out, Err: &errOut}
	err = newApp(ui).RunContext(context.Background(), append([]string{"summarize"}, args...))
	return out.String(), errOut.String(), err
}

func writeText(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func expectedSummary(t *testing.T, text string, ratio float64) string {
	t.Helper()
	s, err := summary.Summarize(text, ratio)
	require.NoError(t, err)
	return s
}

/* ───────── text output ───────── */

func TestRun_File(t *testing.T) {
	path := writeText(t, "cats.txt", catsText)

	out, _, err := runApp(t, "", "--file", path, "--size", "0.4")
	require.NoError(t, err)
	assert.Equal(t, expectedSummary(t, catsText, 0.4)+"\n", out)
}

func TestRun_ReadsStdinWithoutSources(t *testing.T) {
	out, _, err := runApp(t, catsText, "-s", "0.4")
	require.NoError(t, err)
	assert.Equal(t, expectedSummary(t, catsText, 0.4)+"\n", out)
}

func TestRun_DefaultSizeOnShortTextIsEmpty(t *testing.T) {
	// floor(5 * 0.1) == 0 sentences.
	out, _, err := runApp(t, catsText)
	require.NoError(t, err)
	assert.Equal(t, "\n", out)
}

func TestRun_MultipleDocumentsAreSeparated(t *testing.T) {
	cats := writeText(t, "cats.txt", catsText)
	birds := writeText(t, "birds.txt", birdsText)

	out, _, err := runApp(t, "", "--file", cats, "--file", birds, "--size", "0.5")
	require.NoError(t, err)

	want := expectedSummary(t, catsText, 0.5) + "\n" + "\n----------\n\n" +
		expectedSummary(t, birdsText, 0.5) + "\n" + "\n----------\n\n"
	assert.Equal(t, want, out)
}

func TestRun_LeadMethod(t *testing.T) {
	out, _, err := runApp(t, catsText, "--method", "lead", "--size", "0.4")
	require.NoError(t, err)
	assert.Equal(t, "Cats are wonderful pets. Cats sleep most of the day.\n", out)
}

func TestRun_VerboseLogsToStderr(t *testing.T) {
	out, stderr, err := runApp(t, catsText, "--verbose", "--size", "0.4")
	require.NoError(t, err)
	assert.NotContains(t, out, "generating summary")
	assert.Contains(t, stderr, "generating summary")
}

/* ───────── json output ───────── */

func TestRun_JSONOutput(t *testing.T) {
	path := writeText(t, "cats.txt", catsText)

	out, _, err := runApp(t, "", "--file", path, "--size", "0.4", "--output", "json")
	require.NoError(t, err)

	var report digest.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Digests, 1)

	d := report.Digests[0]
	assert.Equal(t, path, d.Document.Origin)
	assert.Equal(t, 5, d.TotalSentences)
	assert.Equal(t, 2, d.SelectedSentences)
	assert.InDelta(t, 0.4, d.Ratio, 1e-9)
	assert.Equal(t, expectedSummary(t, catsText, 0.4), d.Summary)
	assert.Equal(t, 1, report.Stats.Documents)
	assert.NotEmpty(t, report.RunID)
}

/* ───────── errors ───────── */

func TestRun_InvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "zero size", args: []string{"--size", "0"}, wantErr: "invalid --size"},
		{name: "negative size", args: []string{"--size", "-0.1"}, wantErr: "invalid --size"},
		{name: "size above one", args: []string{"--size", "1.5"}, wantErr: "invalid --size"},
		{name: "unknown method", args: []string{"--method", "random"}, wantErr: "invalid --method"},
		{name: "unknown output", args: []string{"--output", "xml"}, wantErr: "invalid --output"},
		{name: "no parallelism", args: []string{"--parallel", "0"}, wantErr: "invalid --parallel"},
		{name: "bad url", args: []string{"--url", "ftp://example.com/a"}, wantErr: "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runApp(t, catsText, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, out)
		})
	}
}

func TestRun_EmailNeedsMailbox(t *testing.T) {
	t.Setenv("MAIL", "")

	_, _, err := runApp(t, "", "--email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--email needs a mailbox")
}

func TestRun_MissingFileFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")

	out, _, err := runApp(t, "", "--file", missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, digest.ErrAllSourcesFailed)
	assert.Empty(t, out)
}

/* ───────── output helpers ───────── */

func TestOutputText_SingleDigestHasNoSeparator(t *testing.T) {
	var b bytes.Buffer
	report := &digest.Report{Digests: []entity.Digest{{Summary: "One. Two."}}}

	require.NoError(t, outputText(&b, report))
	assert.Equal(t, "One. Two.\n", b.String())
}
