package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyreact/core/cdr"
	"polyreact/core/cdr/cdrtest"
	"polyreact/core/physchem"
	"polyreact/internal/score"
	"polyreact/pkg/api"
)

func table(t *testing.T) *score.Table {
	t.Helper()
	rec := cdr.Extract(cdrtest.WildType("wt"))[0]
	sum, err := physchem.Summarize(&rec)
	require.NoError(t, err)
	mut := rec
	mut.Mutations = "CDR1:G1A"
	return &score.Table{
		RunID:        "run-1",
		ScoreColumns: []string{"m1", "m2"},
		Rows: []score.Row{
			{Record: rec, Summary: sum, Scores: []float64{0.5, -1.25}},
			{Record: mut, Summary: sum, Scores: []float64{1, 2}},
		},
	}
}

func TestHeaderLayout(t *testing.T) {
	h := Header([]string{"m1"})
	assert.Equal(t, "id", h[0])
	assert.Equal(t, "mutations", h[1])
	assert.Equal(t, "full_sequence", h[2])
	assert.Equal(t, "m1", h[len(h)-1])
	assert.Len(t, h, 2+len(cdr.Columns)+len(physchem.Columns)+1)
}

func TestWriteDelimitedTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, '\t', true, table(t)))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	header := strings.Split(lines[0], "\t")
	row := strings.Split(lines[1], "\t")
	require.Len(t, row, len(header))
	assert.Equal(t, "wt", row[0])
	assert.Equal(t, "", row[1])
	assert.Equal(t, cdrtest.CDR1Gapped, row[3])
	assert.Equal(t, "0.5", row[len(row)-2])
	assert.Equal(t, "-1.25", row[len(row)-1])
	assert.Equal(t, "CDR1:G1A", strings.Split(lines[2], "\t")[1])
}

func TestWriteDelimitedCSVNoHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, ',', false, table(t)))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "wt,,"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, table(t)))
	var got api.TableV1
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, map[string]float64{"m1": 0.5, "m2": -1.25}, got.Rows[0].Scores)
	assert.Equal(t, cdrtest.CDR3Gapped, got.Rows[0].CDR3WithGaps)
	assert.Equal(t, 11, got.Rows[0].CDR3Length)
	assert.Equal(t, "CDR1:G1A", got.Rows[1].Mutations)
}

func TestEncodeJSONKeepsHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, map[string]string{"id": "VHH<2>&x"}))
	assert.Equal(t, "{\n  \"id\": \"VHH<2>&x\"\n}\n", buf.String())
}
