// internal/cli/options_test.go
package cli

import (
	"errors"
	"flag"
	"testing"

	"polyreact/internal/clibase"
)

func newFS() *flag.FlagSet { return flag.NewFlagSet("test", flag.ContinueOnError) }

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	opts, err := ParseArgs(newFS(), args)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	return opts
}

func TestDefaults(t *testing.T) {
	o := mustParse(t, "--sequences", "in.fa")
	if o.Output != "tsv" || !o.Header || o.Top != 0 || o.RankBy != DefaultRankBy || o.NoResultExitCode != 1 {
		t.Errorf("bad defaults %+v", o)
	}
	if o.IsSet("output") || !o.IsSet("sequences") {
		t.Errorf("explicit-flag tracking wrong")
	}
}

func TestPositionalsAndRepeats(t *testing.T) {
	o := mustParse(t, "a.fa", "--doubles", "-s", "b.fa", "--seq", "QVQ", "--seq", "EVQ", "-o", "jsonl", "--no-header")
	if len(o.SeqFiles) != 2 || o.SeqFiles[0] != "b.fa" || o.SeqFiles[1] != "a.fa" {
		t.Errorf("files: %v", o.SeqFiles)
	}
	if len(o.Seqs) != 2 || !o.Doubles || o.Output != "jsonl" || o.Header {
		t.Errorf("bad parse %+v", o)
	}
}

func TestErrorNoInput(t *testing.T) {
	if _, err := ParseArgs(newFS(), []string{"--doubles"}); err == nil {
		t.Fatalf("expected error without input")
	}
}

func TestErrorNumberingConflict(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"--seq", "QVQ", "--numbering", "n.tsv", "--numbering-cmd", "anarci"})
	if err == nil {
		t.Fatalf("expected mutual-exclusion error")
	}
}

func TestErrorStdinTwice(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"-", "--numbering", "-"})
	if err == nil {
		t.Fatalf("expected stdin error")
	}
}

func TestErrorBadValues(t *testing.T) {
	cases := [][]string{
		{"--seq", "Q", "--top", "-1"},
		{"--seq", "Q", "--batch-size", "-5"},
		{"--seq", "Q", "--output", "fasta"},
		{"--seq", "Q", "--top", "5", "--rank-by", "nope"},
		{"--seq", "Q", "--singles-only"},
	}
	for _, c := range cases {
		if _, err := ParseArgs(newFS(), c); err == nil {
			t.Errorf("expected error for %v", c)
		}
	}
}

func TestRankByCustomManifest(t *testing.T) {
	o := mustParse(t, "--seq", "Q", "--top", "5", "--rank-by", "mine", "--manifest", "m.yaml")
	if o.RankBy != "mine" {
		t.Errorf("rank-by %q", o.RankBy)
	}
}

func TestHelpVersionExamples(t *testing.T) {
	if _, err := ParseArgs(newFS(), []string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("want ErrHelp, got %v", err)
	}
	if _, err := ParseArgs(newFS(), []string{"--examples"}); !errors.Is(err, clibase.ErrPrintedAndExitOK) {
		t.Errorf("want ErrPrintedAndExitOK, got %v", err)
	}
	o, err := ParseArgs(newFS(), []string{"--version"})
	if err != nil || !o.Version {
		t.Errorf("version: %v %+v", err, o)
	}
}
