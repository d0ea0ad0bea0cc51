package main

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrintLines(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{"greetings", []string{"Hello, world!", "This is a macro!"}, "Hello, world!\nThis is a macro!\n"},
		{"single line", []string{"only"}, "only\n"},
		{"nothing", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printLines(&buf, tc.lines...); err != nil {
				t.Fatalf("printLines returned error: %v", err)
			}
			if got := buf.String(); got != tc.expected {
				t.Fatalf("printLines(%q) wrote %q, expected %q", tc.lines, got, tc.expected)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrintLinesPropagatesWriteError(t *testing.T) {
	if err := printLines(failingWriter{}, "x"); err == nil {
		t.Fatal("expected write error")
	}
}
