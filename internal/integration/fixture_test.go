package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"polyreact/core/cdr/cdrtest"
	"polyreact/core/numbering"
	"polyreact/internal/assets/assettest"
)

// env is a scratch workspace with synthetic models, a manifest, a
// numbering table and a FASTA file.
type env struct {
	dir       string
	assets    string
	manifest  string
	numbering string
	fasta     string
}

func (e env) args(extra ...string) []string {
	base := []string{
		"--assets", e.assets,
		"--manifest", e.manifest,
		"--numbering", e.numbering,
		"--quiet",
	}
	return append(base, extra...)
}

func seqOf(rs []numbering.Residue) string {
	var b strings.Builder
	for _, r := range rs {
		if r.AA != 0 {
			b.WriteByte(r.AA)
		}
	}
	return b.String()
}

func altResidues() []numbering.Residue {
	return cdrtest.Residues("alt", "GFTFSSYAMSWF", "AISGSGGSTYYA", "AKDRLSGYFDY--")
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		dir:       dir,
		assets:    filepath.Join(dir, "models"),
		manifest:  filepath.Join(dir, "manifest.yaml"),
		numbering: filepath.Join(dir, "numbered.tsv"),
		fasta:     filepath.Join(dir, "in.fa"),
	}
	require.NoError(t, os.Mkdir(e.assets, 0o755))
	m := assettest.Manifest(4)
	require.NoError(t, assettest.WriteDir(e.assets, m))
	require.NoError(t, assettest.WriteManifest(e.manifest, m))

	wt := cdrtest.WildType("wt")
	alt := altResidues()
	nocdr1 := cdrtest.Residues("nocdr1", "", cdrtest.CDR2, cdrtest.CDR3)

	var rows []numbering.Residue
	rows = append(rows, wt...)
	rows = append(rows, alt...)
	rows = append(rows, nocdr1...)
	fh, err := os.Create(e.numbering)
	require.NoError(t, err)
	require.NoError(t, numbering.WriteTable(fh, rows))
	require.NoError(t, fh.Close())

	fa := ">wt\n" + seqOf(wt) + "\n>alt desc\n" + seqOf(alt) + "\n"
	require.NoError(t, os.WriteFile(e.fasta, []byte(fa), 0o644))
	// nocdr1 is only reachable through its own file
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nocdr1.fa"), []byte(">nocdr1\n"+seqOf(nocdr1)+"\n"), 0o644))
	return e
}

func writeWT(t *testing.T, e env, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(">wt\n"+seqOf(cdrtest.WildType("wt"))+"\n"), 0o644))
}
