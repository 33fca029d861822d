package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter asks for missing credentials. Secrets are read without echo when
// the input is a terminal, otherwise line by line.
type prompter struct {
	in  io.Reader
	out io.Writer
	buf *bufio.Reader
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out, buf: bufio.NewReader(in)}
}

func (p *prompter) terminal() (int, bool) {
	f, ok := p.in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label+": ")
	s, err := p.buf.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if s == "" && errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%s: no input", strings.ToLower(label))
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) secret(label string) (string, error) {
	fd, ok := p.terminal()
	if !ok {
		return p.line(label)
	}
	fmt.Fprint(p.out, label+": ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
