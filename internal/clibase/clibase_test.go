package clibase

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *Common {
	t.Helper()
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	var c Common
	Register(fs, &c)
	require.NoError(t, fs.Parse(args))
	AfterParse(fs, &c)
	return &c
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("POLYREACT_ASSET_DIR", "/from/env")
	t.Setenv("POLYREACT_LOG_LEVEL", "warn")

	c := parse(t, "--log-level", "debug")
	cfg, err := c.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.AssetDir)
	assert.Equal(t, "debug", cfg.LogLevel)

	c = parse(t, "--assets", "/from/flag")
	cfg, err = c.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.AssetDir)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_BadLevel(t *testing.T) {
	c := parse(t, "--log-level", "loud")
	_, err := c.LoadConfig()
	assert.Error(t, err)
}

func TestSliceValue(t *testing.T) {
	var got []string
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	fs.Var(Slice(&got), "s", "")
	require.NoError(t, fs.Parse([]string{"-s", "a", "-s", "b"}))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestUsageAndExamples(t *testing.T) {
	fs := flag.NewFlagSet("tool", flag.ContinueOnError)
	var c Common
	Register(fs, &c)
	var buf bytes.Buffer
	fs.SetOutput(&buf)
	UsageCommon(fs, "tool", "does things", func(out io.Writer, _ func(string) string) {
		fmt.Fprintln(out, "EXTRA")
	})
	fs.Usage()
	s := buf.String()
	assert.True(t, strings.HasPrefix(s, "tool – does things"))
	assert.Contains(t, s, "EXTRA")
	assert.Contains(t, s, "--asset-db")

	buf.Reset()
	PrintExamples(&buf, "tool", []Example{{Desc: "run it", Cmd: "%[1]s -x in.fa"}})
	assert.Contains(t, buf.String(), "# run it")
	assert.Contains(t, buf.String(), "tool -x in.fa")
	assert.Contains(t, buf.String(), "--help")
}
