package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrAborted is returned when the user declines or cancels a prompt.
var ErrAborted = errors.New("cancelled by user")

// StdinIsTerminal reports whether prompts can be shown.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Confirm asks a yes/no question. It returns ErrAborted when the user
// answers no or cancels.
func Confirm(title, description string, defaultYes bool) error {
	answer := defaultYes
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)

	err := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(os.Getenv("ACCESSIBLE") != "").
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	if !answer {
		return ErrAborted
	}
	return nil
}
