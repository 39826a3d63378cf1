package jsonlutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestStart_EncodesLines(t *testing.T) {
	var buf bytes.Buffer
	in, done := Start[int](&buf, 0, func(enc *json.Encoder, v int) error { return enc.Encode(v) }, nil)
	for i := 1; i <= 3; i++ {
		in <- i
	}
	close(in)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if buf.String() != "1\n2\n3\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestStart_EncodeErrorDrains(t *testing.T) {
	boom := errors.New("boom")
	in, done := Start[int](&bytes.Buffer{}, 1, func(*json.Encoder, int) error { return boom }, nil)
	for i := 0; i < 5; i++ {
		in <- i
	}
	close(in)
	if err := <-done; !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
}

type brokenWriter struct{}

var errBroken = errors.New("broken")

func (brokenWriter) Write([]byte) (int, error) { return 0, errBroken }

func TestStart_SuppressesBrokenPipe(t *testing.T) {
	in, done := Start[string](brokenWriter{}, 1, func(enc *json.Encoder, v string) error { return enc.Encode(v) },
		func(err error) bool { return errors.Is(err, errBroken) })
	in <- "x"
	close(in)
	if err := <-done; err != nil {
		t.Fatalf("broken pipe should be suppressed, got %v", err)
	}
}
