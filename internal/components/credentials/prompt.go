package credentials

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompt asks for input on a terminal, the password is read without echo.
// When the input is not a terminal (ex. a pipe) every answer is read as a plain line.
type Prompt struct {
	in     *os.File
	reader *bufio.Reader
	out    io.Writer

	// Username skips asking for the username when it is already known.
	Username string
}

func NewPrompt(in *os.File, out io.Writer) *Prompt {
	return &Prompt{
		in:     in,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (p *Prompt) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask prints the label and reads one line.
func (p *Prompt) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine()
}

// AskSecret prints the label and reads one line without echoing it.
func (p *Prompt) AskSecret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.readLine()
	}
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

func (p *Prompt) Credentials(ctx context.Context) (Credentials, error) {
	var err error
	creds := Credentials{Username: p.Username}
	if creds.Username == "" {
		creds.Username, err = p.Ask("Splunk username")
		if err != nil {
			return Credentials{}, err
		}
	}
	creds.Password, err = p.AskSecret("Splunk password")
	if err != nil {
		return Credentials{}, err
	}
	if !creds.Complete() {
		return creds, ErrIncomplete
	}
	return creds, nil
}
