package console

import (
	"fmt"
	"os"

	"github.com/chzyer/readline"
)

// Prompter reads one line of user input per call.
type Prompter interface {
	Prompt(label string) (string, error)
	Password(label string) (string, error)
}

type ReadlinePrompter struct {
	rl *readline.Instance
}

func NewReadlinePrompter() (*ReadlinePrompter, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       homeDir + "/.warehouse_history",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

func (p *ReadlinePrompter) Prompt(label string) (string, error) {
	p.rl.SetPrompt(label)
	return p.rl.Readline()
}

func (p *ReadlinePrompter) Password(label string) (string, error) {
	b, err := p.rl.ReadPassword(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}
