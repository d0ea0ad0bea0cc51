// Command print-lines writes a fixed list of greetings, one per line.
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if err := printLines(os.Stdout,
		"Hello, world!",
		"This is a macro!",
	); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
