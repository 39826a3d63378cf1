// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"polyreact/core/errs"
	"polyreact/core/fasta"
	"polyreact/core/mutate"
	"polyreact/core/numbering"
	"polyreact/internal/appcore"
	"polyreact/internal/assets"
	"polyreact/internal/cli"
	"polyreact/internal/clibase"
	"polyreact/internal/cmdutil"
	"polyreact/internal/config"
	"polyreact/internal/logging"
	"polyreact/internal/ortmodel"
	"polyreact/internal/score"
	"polyreact/internal/version"
	"polyreact/internal/writers"
)

const name = "polyreact"

// flushCode flushes w and maps the outcome to an exit status.
func flushCode(w *bufio.Writer, stderr io.Writer, code int) int {
	if e := w.Flush(); writers.IsBrokenPipe(e) {
		return 0
	} else if e != nil {
		_, _ = fmt.Fprintln(stderr, e)
		return appcore.ExitRuntime
	}
	return code
}

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)

	fs := cli.NewFlagSet(name)
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		_, _ = cli.ParseArgs(fs, []string{"-h"})
		fs.SetOutput(outw)
		fs.Usage()
		return flushCode(outw, stderr, 0)
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fs.SetOutput(outw)
			fs.Usage()
			return flushCode(outw, stderr, 0)
		case errors.Is(err, clibase.ErrPrintedAndExitOK):
			clibase.PrintExamples(outw, name, cli.Examples)
			return flushCode(outw, stderr, 0)
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(outw)
		fs.Usage()
		return flushCode(outw, stderr, appcore.ExitUsage)
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "%s version %s\n", name, version.Version)
		return flushCode(outw, stderr, 0)
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return appcore.ExitUsage
	}
	if opts.IsSet("numbering-cmd") {
		cfg.NumberingCmd = opts.NumberingCmd
	}
	if opts.BatchSize > 0 {
		cfg.BatchSize = opts.BatchSize
	}
	if opts.IsSet("parallel") {
		cfg.Parallel = opts.Parallel
	}
	log := cmdutil.NewLogger(stderr, cfg, opts.Quiet)

	seqs, err := readSequences(parent, opts)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return appcore.ExitCode(err)
	}

	numberer, err := newNumberer(opts, cfg)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return appcore.ExitUsage
	}

	man, err := cmdutil.LoadManifest(cfg)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return appcore.ExitUsage
	}
	if opts.Top > 0 && !hasColumn(man.Columns(), opts.RankBy) {
		_, _ = fmt.Fprintf(stderr, "unknown --rank-by column %q\n", opts.RankBy)
		return appcore.ExitUsage
	}

	store, closeStore, err := cmdutil.OpenStore(cfg)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return appcore.ExitRuntime
	}
	defer func() { _ = closeStore() }()

	loader := &assets.Loader{Store: store, BatchSize: cfg.BatchSize, Log: log.With("assets")}
	if cfg.ORTLibrary != "" {
		rt := ortmodel.NewRuntime(cfg.ORTLibrary)
		defer func() { _ = rt.Close() }()
		loader.Runtime = rt
	}
	defer func() { _ = loader.Close() }()

	sc := &score.Scorer{
		Numberer:  numberer,
		Generator: mutate.Doubles{SinglesOnly: opts.SinglesOnly},
		Manifest:  man,
		Models:    loader,
		Log:       log,
		Parallel:  cfg.Parallel,
	}
	log.Debug("starting", logging.Int("sequences", len(seqs)), logging.Bool("doubles", opts.Doubles),
		logging.Int("batch_size", cfg.BatchSize), logging.Bool("parallel", cfg.Parallel))

	return appcore.Run(parent, stdout, stderr, appcore.Options{
		Format:           opts.Output,
		Header:           opts.Header,
		BufSize:          64,
		NoResultExitCode: opts.NoResultExitCode,
	}, func(ctx context.Context) (*score.Table, error) {
		t, err := sc.ScoreSequences(ctx, seqs, opts.Doubles)
		if err != nil {
			return nil, err
		}
		if opts.Top > 0 {
			return score.RankAndFilter(t, opts.RankBy, opts.Top)
		}
		return t, nil
	})
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// readSequences collects FASTA records then inline --seq values (arg1,
// arg2, ...). IDs must be unique across all inputs.
func readSequences(ctx context.Context, opts cli.Options) ([]numbering.Sequence, error) {
	var out []numbering.Sequence
	seen := map[string]string{}
	add := func(src, id, seq string) error {
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("%w: sequence id %q in both %s and %s", errs.ErrMalformedInput, id, prev, src)
		}
		seen[id] = src
		out = append(out, numbering.Sequence{ID: id, Seq: seq})
		return nil
	}
	for _, path := range opts.SeqFiles {
		recs, err := fasta.ReadFile(ctx, path)
		if err != nil {
			if !errors.Is(err, errs.ErrMalformedInput) && !errors.Is(err, context.Canceled) {
				err = fmt.Errorf("%w: %v", errs.ErrMalformedInput, err)
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, r := range recs {
			if err := add(path, r.ID, r.Seq); err != nil {
				return nil, err
			}
		}
	}
	for i, s := range opts.Seqs {
		id := fmt.Sprintf("arg%d", i+1)
		seq := fasta.Normalize(s)
		if err := fasta.Validate(seq); err != nil {
			return nil, fmt.Errorf("--seq %s: %w", id, err)
		}
		if err := add("--seq", id, seq); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newNumberer(opts cli.Options, cfg *config.Config) (numbering.Numberer, error) {
	switch {
	case opts.Numbering != "":
		return numbering.LoadTableNumberer(opts.Numbering)
	case cfg.NumberingCmd != "":
		return numbering.NewExecNumberer(cfg.NumberingCmd)
	}
	return nil, errors.New("no numbering source: use --numbering TABLE, --numbering-cmd CMD or numbering_cmd in the config")
}

func hasColumn(cols []string, c string) bool {
	for _, x := range cols {
		if x == c {
			return true
		}
	}
	return false
}
