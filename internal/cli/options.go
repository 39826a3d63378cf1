// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"polyreact/internal/clibase"
	"polyreact/internal/cliutil"
	"polyreact/internal/manifest"
	"polyreact/internal/output"
)

// DefaultRankBy is the score column --top ranks by.
const DefaultRankBy = "origFACS lr onehot"

// Options holds all polyreact flags and arguments.
type Options struct {
	clibase.Common

	// Input
	SeqFiles     []string
	Seqs         []string
	Numbering    string
	NumberingCmd string

	// Scoring
	Doubles     bool
	SinglesOnly bool
	Top         int
	RankBy      string
	Parallel    bool
	BatchSize   int

	// Output
	Output           string
	Header           bool // true unless --no-header
	NoResultExitCode int

	Examples bool
}

// NewFlagSet returns a FlagSet with the polyreact usage text installed.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	clibase.UsageCommon(fs, name, "nanobody polyreactivity scoring", func(out io.Writer, def func(string) string) {
		fmt.Fprintf(out, "Usage: %s [options] [FASTA ...]\n", name)

		fmt.Fprintln(out, "\nInput:")
		fmt.Fprintln(out, "  -s, --sequences file        Protein FASTA file(s) (repeatable) or '-' for STDIN")
		fmt.Fprintln(out, "      --seq string            Inline sequence (repeatable; IDs arg1, arg2, ...)")
		fmt.Fprintln(out, "      --numbering file        Precomputed numbering table (id, position, aa)")
		fmt.Fprintln(out, "      --numbering-cmd string  External numbering program (FASTA in, table out)")

		fmt.Fprintln(out, "\nScoring:")
		fmt.Fprintf(out, "      --doubles               Score all single and double CDR mutants of one input [%s]\n", def("doubles"))
		fmt.Fprintf(out, "      --singles-only          With --doubles, score single mutants only [%s]\n", def("singles-only"))
		fmt.Fprintf(out, "      --top int               Keep the input plus the N-1 best rows (0=all) [%s]\n", def("top"))
		fmt.Fprintf(out, "      --rank-by string        Score column used by --top [%s]\n", def("rank-by"))
		fmt.Fprintf(out, "      --parallel              Evaluate models concurrently [%s]\n", def("parallel"))
		fmt.Fprintf(out, "      --batch-size int        Rows per model batch (0=config) [%s]\n", def("batch-size"))

		fmt.Fprintln(out, "\nOutput:")
		fmt.Fprintf(out, "  -o, --output string         Output: %s [%s]\n", strings.Join(output.Formats, " | "), def("output"))
		fmt.Fprintf(out, "      --no-header             Suppress header line (tsv/csv) [%s]\n", def("no-header"))
		fmt.Fprintf(out, "      --no-result-exit-code int  Exit code when no row survives the length filter [%s]\n", def("no-result-exit-code"))
		fmt.Fprintln(out, "      --examples              Print quickstart examples and exit")
	})
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	clibase.Register(fs, &opt.Common)

	fs.Var(clibase.Slice(&opt.SeqFiles), "sequences", "FASTA file(s) (repeatable) or '-'")
	fs.Var(clibase.Slice(&opt.SeqFiles), "s", "alias of --sequences")
	fs.Var(clibase.Slice(&opt.Seqs), "seq", "inline sequence (repeatable)")
	fs.StringVar(&opt.Numbering, "numbering", "", "precomputed numbering table")
	fs.StringVar(&opt.NumberingCmd, "numbering-cmd", "", "external numbering command")

	fs.BoolVar(&opt.Doubles, "doubles", false, "score single and double mutants [false]")
	fs.BoolVar(&opt.SinglesOnly, "singles-only", false, "with --doubles, skip double mutants [false]")
	fs.IntVar(&opt.Top, "top", 0, "keep the input plus the N-1 best rows (0 = all) [0]")
	fs.StringVar(&opt.RankBy, "rank-by", DefaultRankBy, "score column used by --top")
	fs.BoolVar(&opt.Parallel, "parallel", false, "evaluate models concurrently [false]")
	fs.IntVar(&opt.BatchSize, "batch-size", 0, "rows per model batch (0 = config) [0]")

	fs.StringVar(&opt.Output, "output", output.FormatTSV, "output format")
	fs.StringVar(&opt.Output, "o", output.FormatTSV, "alias of --output")
	noHeader := false
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line [false]")
	fs.IntVar(&opt.NoResultExitCode, "no-result-exit-code", 1, "exit code when no row survives the length filter [1]")
	fs.BoolVar(&opt.Examples, "examples", false, "print quickstart examples and exit")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")
	fs.BoolVar(&help, "help", false, "show this help message [false]")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	posArgs = append(posArgs, fs.Args()...)
	clibase.AfterParse(fs, &opt.Common)
	opt.Header = !noHeader

	if help {
		return opt, flag.ErrHelp
	}
	if opt.Examples {
		return opt, clibase.ErrPrintedAndExitOK
	}
	if opt.Version {
		return opt, nil
	}
	if len(posArgs) > 0 {
		exp, err := cliutil.ExpandPositionals(posArgs)
		if err != nil {
			return opt, err
		}
		opt.SeqFiles = append(opt.SeqFiles, exp...)
	}
	return opt, validate(&opt)
}

func validate(o *Options) error {
	if len(o.SeqFiles) == 0 && len(o.Seqs) == 0 {
		return errors.New("provide --sequences FILE, a FASTA positional or --seq SEQ")
	}
	stdin := 0
	for _, f := range o.SeqFiles {
		if f == "-" {
			stdin++
		}
	}
	if o.Numbering == "-" {
		stdin++
	}
	if stdin > 1 {
		return errors.New("'-' (stdin) may be used only once")
	}
	if o.Numbering != "" && o.NumberingCmd != "" {
		return errors.New("--numbering conflicts with --numbering-cmd")
	}
	if o.SinglesOnly && !o.Doubles {
		return errors.New("--singles-only requires --doubles")
	}
	if o.Top < 0 {
		return errors.New("--top must be ≥ 0")
	}
	if o.BatchSize < 0 {
		return errors.New("--batch-size must be ≥ 0")
	}
	if !output.Valid(o.Output) {
		return fmt.Errorf("invalid --output %q", o.Output)
	}
	if o.Top > 0 && !knownColumn(o.RankBy) {
		// custom manifests may add columns; checked again against the loaded manifest
		if o.Manifest == "" {
			return fmt.Errorf("unknown --rank-by column %q", o.RankBy)
		}
	}
	return nil
}

func knownColumn(c string) bool {
	for _, x := range manifest.Default().Columns() {
		if x == c {
			return true
		}
	}
	return false
}

// Examples lists the quickstart commands printed by --examples.
var Examples = []clibase.Example{
	{Desc: "score a FASTA with a precomputed numbering table", Cmd: "%[1]s --numbering numbered.tsv nanobodies.fa"},
	{Desc: "in-silico mutagenesis of one nanobody, best 50 by the one-hot model", Cmd: "%[1]s --numbering-cmd 'anarci-long' --doubles --top 50 --seq QVQLQESGG..."},
	{Desc: "models from a SQLite asset store, JSON lines output", Cmd: "%[1]s --asset-db models.db --numbering n.tsv -o jsonl in.fa"},
}
