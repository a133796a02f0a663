// Package terminal implements the interactive prompt surface on stdin/stdout.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"livewall/internal/domain"
	"livewall/internal/port"
)

const cancelToken = "q"

type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter() *Prompter {
	return New(os.Stdin, os.Stdout)
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.out, "%s ", question)
	return p.readLine()
}

func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s [y/N] ", question)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "please answer y or n")
	}
}

func (p *Prompter) Select(question string, options []string) (int, error) {
	fmt.Fprintln(p.out, question)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, opt)
	}

	for {
		fmt.Fprintf(p.out, "enter 1-%d, or %q to cancel: ", len(options), cancelToken)
		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(answer, cancelToken) {
			return 0, domain.ErrUserCancelled
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintln(p.out, "invalid selection")
	}
}

func (p *Prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

var _ port.Prompter = (*Prompter)(nil)
