// internal/integration/integration_test.go
package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyreact/core/cdr"
	"polyreact/core/physchem"
	"polyreact/internal/app"
	"polyreact/internal/assetsapp"
	"polyreact/pkg/api"
)

func run(t *testing.T, argv ...string) (int, string, string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code := app.Run(argv, &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func TestEndToEnd_TSV(t *testing.T) {
	e := newEnv(t)
	code, out, errs := run(t, e.args("--sequences", e.fasta)...)
	require.Equal(t, 0, code, errs)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	header := strings.Split(lines[0], "\t")
	assert.Len(t, header, 2+len(cdr.Columns)+len(physchem.Columns)+8)
	assert.Equal(t, "origFACS lr onehot", header[2+len(cdr.Columns)+len(physchem.Columns)])
	assert.True(t, strings.HasPrefix(lines[1], "wt\t"))
	assert.True(t, strings.HasPrefix(lines[2], "alt\t"))
	for _, l := range lines[1:] {
		assert.Len(t, strings.Split(l, "\t"), len(header))
	}
}

func TestInlineSequenceNeedsMatchingID(t *testing.T) {
	e := newEnv(t)
	// the numbering table knows wt/alt only, so arg1 cannot be numbered
	code, _, errs := run(t, e.args("--seq", "QVQLQESGG")...)
	assert.Equal(t, 2, code)
	assert.Contains(t, errs, "arg1")
}

func TestStaleNumberingTableExit2(t *testing.T) {
	e := newEnv(t)
	// wt's ID with alt's residues: the table no longer describes the input
	stale := filepath.Join(e.dir, "stale.fa")
	require.NoError(t, os.WriteFile(stale, []byte(">wt\n"+seqOf(altResidues())+"\n"), 0o644))
	code, _, errs := run(t, e.args("--sequences", stale)...)
	assert.Equal(t, 2, code)
	assert.Contains(t, errs, "does not match")
}

func TestDoublesSinglesOnlyTopJSONL(t *testing.T) {
	e := newEnv(t)
	wtOnly := filepath.Join(e.dir, "wt.fa")
	writeWT(t, e, wtOnly)

	code, out, errs := run(t, e.args("--doubles", "--singles-only", "--top", "5", "-o", "jsonl", wtOnly)...)
	require.Equal(t, 0, code, errs)

	sc := bufio.NewScanner(strings.NewReader(out))
	var rows []api.ResultV1
	for sc.Scan() {
		var v api.ResultV1
		require.NoError(t, json.Unmarshal(sc.Bytes(), &v))
		rows = append(rows, v)
	}
	require.Len(t, rows, 5)
	assert.Equal(t, "", rows[0].Mutations)
	for i := 1; i < len(rows); i++ {
		assert.NotEmpty(t, rows[i].Mutations)
		assert.Len(t, rows[i].Scores, 8)
		assert.Equal(t, rows[0].RunID, rows[i].RunID)
		if i > 1 {
			assert.GreaterOrEqual(t, rows[i-1].Scores["origFACS lr onehot"], rows[i].Scores["origFACS lr onehot"])
		}
	}
}

func TestDoublesIgnoredForSeveralInputs(t *testing.T) {
	e := newEnv(t)
	code, out, errs := run(t, e.args("--doubles", "--singles-only", "--no-header", e.fasta)...)
	require.Equal(t, 0, code, errs)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestParallelMatchesSerial(t *testing.T) {
	e := newEnv(t)
	wtOnly := filepath.Join(e.dir, "wt.fa")
	writeWT(t, e, wtOnly)

	decode := func(extra ...string) api.TableV1 {
		args := append(e.args("--doubles", "--singles-only", "-o", "json", "--batch-size", "100", wtOnly), extra...)
		code, out, errs := run(t, args...)
		require.Equal(t, 0, code, errs)
		var v api.TableV1
		require.NoError(t, json.Unmarshal([]byte(out), &v))
		v.RunID = ""
		for i := range v.Rows {
			v.Rows[i].RunID = ""
		}
		return v
	}
	serial := decode()
	parallel := decode("--parallel", "--batch-size", "1024")
	require.Len(t, serial.Rows, 1+28*19)
	assert.Equal(t, serial, parallel)
}

func TestNoRowSurvivesFilter(t *testing.T) {
	e := newEnv(t)
	fa := filepath.Join(e.dir, "nocdr1.fa")
	code, out, _ := run(t, e.args(fa)...)
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, strings.Count(out, "\n"), "header only")

	code, _, _ = run(t, e.args("--no-result-exit-code", "0", fa)...)
	assert.Equal(t, 0, code)
}

func TestMissingAssetExit3(t *testing.T) {
	e := newEnv(t)
	code, _, errs := run(t, "--assets", t.TempDir(), "--manifest", e.manifest, "--numbering", e.numbering, "--quiet", e.fasta)
	assert.Equal(t, 3, code)
	assert.Contains(t, errs, "model asset not found")
}

func TestBadInputExit2(t *testing.T) {
	e := newEnv(t)
	code, _, errs := run(t, e.args("--seq", "QVQ1LQ")...)
	assert.Equal(t, 2, code)
	assert.Contains(t, errs, "malformed input")

	code, _, _ = run(t, "--assets", e.assets, "--manifest", e.manifest, e.fasta)
	assert.Equal(t, 2, code, "no numbering source")

	code, _, _ = run(t, e.args("--output", "xml", e.fasta)...)
	assert.Equal(t, 2, code)
}

func TestSQLiteAssetStore(t *testing.T) {
	e := newEnv(t)
	db := filepath.Join(e.dir, "models.db")
	files, err := filepath.Glob(filepath.Join(e.assets, "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 8)

	var out, errBuf bytes.Buffer
	code := assetsapp.Run(append([]string{"import", "--db", db}, files...), &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())
	assert.Equal(t, 8, strings.Count(out.String(), "imported\t"))

	out.Reset()
	code = assetsapp.Run([]string{"list", "--db", db, "--output", "json"}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())
	var list []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	assert.Len(t, list, 8)

	out.Reset()
	code = assetsapp.Run([]string{"check", "--db", db, "--manifest", e.manifest, "--quiet"}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())
	assert.Equal(t, 8, strings.Count(out.String(), "\tok\n"))

	dirCode, dirOut, _ := run(t, e.args("--no-header", e.fasta)...)
	dbCode, dbOut, errs := run(t, "--asset-db", db, "--manifest", e.manifest, "--numbering", e.numbering, "--quiet", "--no-header", e.fasta)
	require.Equal(t, 0, dbCode, errs)
	require.Equal(t, 0, dirCode)
	assert.Equal(t, dirOut, dbOut)

	out.Reset()
	code = assetsapp.Run([]string{"delete", "--db", db, "rnn_CDRS_full_dist0_20.json"}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())
	out.Reset()
	code = assetsapp.Run([]string{"check", "--db", db, "--manifest", e.manifest, "--quiet"}, &out, &errBuf)
	assert.Equal(t, 3, code)
}

func TestCancelledBeforeStartExit130(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, errBuf bytes.Buffer
	code := app.RunContext(ctx, e.args(e.fasta), &out, &errBuf)
	assert.Equal(t, 130, code)
}

func TestHelpVersionExamples(t *testing.T) {
	code, out, _ := run(t)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "polyreact – nanobody polyreactivity scoring")

	code, out, _ = run(t, "--version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "polyreact version "))

	code, out, _ = run(t, "--examples")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "quickstart")

	code, _, errs := run(t, "--bogus")
	assert.Equal(t, 2, code)
	assert.NotEmpty(t, errs)
}
