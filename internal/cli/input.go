package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/taxwizard/internal/runtime"
)

// errQuit is returned when the applicant types q/quit.
var errQuit = errors.New("quit")

// LinePump reads lines from a reader in the background.
// A single pump must be shared across reloads so two readers never race on stdin.
type LinePump struct {
	lines chan string
	err   chan error
}

// NewLinePump starts reading r until EOF.
func NewLinePump(r io.Reader) *LinePump {
	p := &LinePump{
		lines: make(chan string),
		err:   make(chan error, 1),
	}
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			p.err <- err
			return
		}
		p.err <- io.EOF
	}()
	return p
}

// Next blocks for the next line or until ctx is done.
func (p *LinePump) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-p.lines:
		return line, nil
	case err := <-p.err:
		// Keep the terminal error visible to later calls.
		p.err <- err
		return "", err
	}
}

type commandKind int

const (
	cmdAnswer commandKind = iota
	cmdBack
	cmdRestart
	cmdQuit
	cmdHelp
)

type command struct {
	kind  commandKind
	value string
}

// parseCommand maps a typed line onto a command. Numbers pick a visible
// option by position; anything else is sent as the raw option value.
func parseCommand(line string, view *runtime.View) command {
	input := strings.TrimSpace(line)
	switch strings.ToLower(input) {
	case "b", "back":
		return command{kind: cmdBack}
	case "r", "restart":
		return command{kind: cmdRestart}
	case "q", "quit", "exit":
		return command{kind: cmdQuit}
	case "?", "h", "help":
		return command{kind: cmdHelp}
	}

	if view != nil && view.Question != nil {
		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(view.Question.Options) {
			return command{kind: cmdAnswer, value: view.Question.Options[n-1].Value}
		}
	}
	return command{kind: cmdAnswer, value: input}
}
