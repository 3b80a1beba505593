package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer

	// interactive is true when stdin is a terminal. Optional questions are
	// only asked then.
	interactive bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out, interactive: isTerminal(in)}
}

// ask prints question and returns the trimmed next line of input. A final
// line without a newline is accepted.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
