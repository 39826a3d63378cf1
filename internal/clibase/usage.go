// internal/clibase/usage.go
package clibase

import (
	"flag"
	"fmt"
	"io"

	"polyreact/internal/version"
)

// UsageCommon installs a shared Usage() handler on fs.
// extra prints tool-specific sections before the shared blocks.
func UsageCommon(fs *flag.FlagSet, name, tagline string, extra func(out io.Writer, def func(string) string)) {
	fs.Usage = func() {
		out := fs.Output()
		def := func(flagName string) string {
			if f := fs.Lookup(flagName); f != nil {
				return f.DefValue
			}
			return ""
		}

		fmt.Fprintf(out, "%s – %s\n\n", name, tagline)
		fmt.Fprintln(out, "License: MIT")
		fmt.Fprintf(out, "Version: %s\n\n", version.Version)

		if extra != nil {
			extra(out, def)
		}

		fmt.Fprintln(out, "\nAssets:")
		fmt.Fprintln(out, "      --config file           YAML config (env POLYREACT_* overrides it)")
		fmt.Fprintln(out, "      --assets dir            Model asset directory [models]")
		fmt.Fprintln(out, "      --asset-db file         SQLite model asset database (overrides --assets)")
		fmt.Fprintln(out, "      --manifest file         Model manifest YAML [built-in]")
		fmt.Fprintln(out, "      --ort-library file      ONNX Runtime shared library (onnx assets only)")

		fmt.Fprintln(out, "\nMiscellaneous:")
		fmt.Fprintln(out, "      --log-level string      debug | info | warn | error [info]")
		fmt.Fprintln(out, "      --log-format string     text | json [text]")
		fmt.Fprintf(out, "  -q, --quiet                 Suppress log output [%s]\n", def("quiet"))
		fmt.Fprintln(out, "  -v, --version               Print version and exit")
		fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
	}
}
