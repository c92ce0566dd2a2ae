// Package prompt asks the operator yes/no questions.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer answers a yes/no question.
type Confirmer interface {
	Ask(question string, defaultAnswer bool) (bool, error)
}

// Console reads answers line by line. An empty line takes the default; an
// unrecognised answer asks again.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Ask(question string, defaultAnswer bool) (bool, error) {
	marker := "[y/N]"
	if defaultAnswer {
		marker = "[Y/n]"
	}

	for {
		_, _ = fmt.Fprintf(c.out, "%s %s: ", question, marker)

		line, err := c.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("failed to read user input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return defaultAnswer, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if errors.Is(err, io.EOF) {
			return defaultAnswer, nil
		}

		_, _ = fmt.Fprintln(c.out, "Please answer y or n.")
	}
}

// Fixed answers every question the same way, for headless runs.
type Fixed bool

func (f Fixed) Ask(string, bool) (bool, error) {
	return bool(f), nil
}
