// Package assetsapp implements polyreact-assets, the maintenance tool for
// model asset stores.
package assetsapp

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"polyreact/internal/appcore"
	"polyreact/internal/assets"
	"polyreact/internal/clibase"
	"polyreact/internal/cliutil"
	"polyreact/internal/cmdutil"
	"polyreact/internal/logging"
	"polyreact/internal/ortmodel"
	"polyreact/internal/output"
	"polyreact/internal/version"
	"polyreact/internal/writers"
)

const name = "polyreact-assets"

type options struct {
	clibase.Common
	Format string
	Output string
	Files  []string
}

type command struct {
	summary string
	run     func(ctx context.Context, o *options, out, stderr io.Writer) error
}

var commands = map[string]command{
	"import": {"copy model files into the asset database", runImport},
	"list":   {"list stored assets", runList},
	"delete": {"remove assets by name", runDelete},
	"check":  {"load every manifest model and report failures", runCheck},
}

var order = []string{"import", "list", "delete", "check"}

func usage(out io.Writer) {
	fmt.Fprintf(out, "%s – model asset store maintenance\n\n", name)
	fmt.Fprintf(out, "Version: %s\n\n", version.Version)
	fmt.Fprintf(out, "Usage:\n")
	fmt.Fprintf(out, "  %s import --db FILE [--format json|onnx] FILE...\n", name)
	fmt.Fprintf(out, "  %s list   [--db FILE | --assets DIR] [--output tsv|json]\n", name)
	fmt.Fprintf(out, "  %s delete --db FILE NAME...\n", name)
	fmt.Fprintf(out, "  %s check  [--db FILE | --assets DIR] [--manifest FILE]\n\n", name)
	fmt.Fprintln(out, "Commands:")
	for _, c := range order {
		fmt.Fprintf(out, "  %-8s %s\n", c, commands[c].summary)
	}
}

func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	flush := func(code int) int {
		if e := outw.Flush(); writers.IsBrokenPipe(e) {
			return appcore.ExitOK
		} else if e != nil {
			fmt.Fprintln(stderr, e)
			return appcore.ExitRuntime
		}
		return code
	}

	if len(argv) == 0 {
		usage(outw)
		return flush(appcore.ExitOK)
	}
	switch argv[0] {
	case "-h", "--help", "help":
		usage(outw)
		return flush(appcore.ExitOK)
	case "-v", "--version", "version":
		fmt.Fprintf(outw, "%s version %s\n", name, version.Version)
		return flush(appcore.ExitOK)
	}
	cmd, ok := commands[argv[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", argv[0])
		usage(outw)
		return flush(appcore.ExitUsage)
	}

	o, err := parse(argv[0], argv[1:])
	if errors.Is(err, flag.ErrHelp) {
		usage(outw)
		return flush(appcore.ExitOK)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return appcore.ExitUsage
	}
	if err := cmd.run(ctx, o, outw, stderr); err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, errUsage) {
			return flush(appcore.ExitUsage)
		}
		return flush(appcore.ExitCode(err))
	}
	return flush(appcore.ExitOK)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

var errUsage = errors.New("usage")

func parse(sub string, argv []string) (*options, error) {
	fs := flag.NewFlagSet(name+" "+sub, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	o := &options{}
	var help bool
	clibase.Register(fs, &o.Common)
	fs.StringVar(&o.AssetDB, "db", "", "alias of --asset-db")
	fs.StringVar(&o.Format, "format", "", "asset format: json | onnx (default: by extension)")
	fs.StringVar(&o.Output, "output", "tsv", "list output: tsv | json")
	fs.BoolVar(&help, "h", false, "show help")
	fs.BoolVar(&help, "help", false, "show help")

	flagArgs, pos := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if help {
		return nil, flag.ErrHelp
	}
	clibase.AfterParse(fs, &o.Common)
	o.Files = append(pos, fs.Args()...)
	switch o.Format {
	case "", "json", "onnx":
	default:
		return nil, fmt.Errorf("invalid --format %q", o.Format)
	}
	if o.Output != "tsv" && o.Output != "json" {
		return nil, fmt.Errorf("invalid --output %q", o.Output)
	}
	return o, nil
}

// dbPath resolves the database from --db/--asset-db, then config and env.
func (o *options) dbPath() (string, error) {
	if o.IsSet("db") {
		return o.AssetDB, nil
	}
	cfg, err := o.LoadConfig()
	if err != nil {
		return "", err
	}
	return cfg.AssetDB, nil
}

func openDB(o *options) (*assets.SQLiteStore, error) {
	path, err := o.dbPath()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: --db FILE is required", errUsage)
	}
	return assets.OpenSQLite(path)
}

func runImport(ctx context.Context, o *options, out, stderr io.Writer) error {
	if len(o.Files) == 0 {
		return fmt.Errorf("%w: no files to import", errUsage)
	}
	files, err := cliutil.ExpandPositionals(o.Files)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	db, err := openDB(o)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		n := filepath.Base(f)
		if err := db.Put(ctx, n, o.Format, data); err != nil {
			return err
		}
		fmt.Fprintf(out, "imported\t%s\t%d\t%s\n", n, len(data), assets.Digest(data))
	}
	return nil
}

func runDelete(ctx context.Context, o *options, out, stderr io.Writer) error {
	if len(o.Files) == 0 {
		return fmt.Errorf("%w: no asset names given", errUsage)
	}
	db, err := openDB(o)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, n := range o.Files {
		if err := db.Delete(ctx, n); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted\t%s\n", n)
	}
	return nil
}

// openAny opens the database when one is configured, else the directory.
func openAny(o *options) (assets.Store, func() error, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if o.IsSet("db") {
		cfg.AssetDB = o.AssetDB
	}
	return cmdutil.OpenStore(cfg)
}

type listEntry struct {
	Name       string    `json:"name"`
	Format     string    `json:"format"`
	Size       int64     `json:"size"`
	SHA256     string    `json:"sha256"`
	ImportedAt time.Time `json:"imported_at"`
}

func runList(ctx context.Context, o *options, out, stderr io.Writer) error {
	st, closeFn, err := openAny(o)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	infos, err := st.List(ctx)
	if err != nil {
		return err
	}
	if o.Output == "json" {
		list := make([]listEntry, 0, len(infos))
		for _, in := range infos {
			list = append(list, listEntry(in))
		}
		return output.EncodeJSON(out, list)
	}
	fmt.Fprintln(out, strings.Join([]string{"name", "format", "size", "sha256", "imported_at"}, "\t"))
	for _, in := range infos {
		fmt.Fprintf(out, "%s\t%s\t%d\t%s\t%s\n", in.Name, in.Format, in.Size, in.SHA256, in.ImportedAt.Format(time.RFC3339))
	}
	return nil
}

func runCheck(ctx context.Context, o *options, out, stderr io.Writer) error {
	cfg, err := o.LoadConfig()
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if o.IsSet("db") {
		cfg.AssetDB = o.AssetDB
	}
	man, err := cmdutil.LoadManifest(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	st, closeFn, err := cmdutil.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	log := cmdutil.NewLogger(stderr, cfg, o.Quiet)
	loader := &assets.Loader{Store: st, BatchSize: cfg.BatchSize, Log: log.With("check")}
	if cfg.ORTLibrary != "" {
		rt := ortmodel.NewRuntime(cfg.ORTLibrary)
		defer func() { _ = rt.Close() }()
		loader.Runtime = rt
	}
	defer func() { _ = loader.Close() }()

	var first error
	for _, m := range man.Models {
		_, err := loader.Load(ctx, m)
		status := "ok"
		if err != nil {
			status = err.Error()
			log.Warn("model failed", logging.String("column", m.Column), logging.Err(err))
			if first == nil {
				first = err
			}
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", m.Column, m.Asset, status)
	}
	if first != nil {
		return fmt.Errorf("check failed: %w", first)
	}
	return nil
}
