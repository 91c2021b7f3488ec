package tui

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
)

// ErrInteractiveDisabled is returned when interactive prompts are disabled via PGBRANCH_TEST_NO_INTERACTIVE
var ErrInteractiveDisabled = fmt.Errorf("interactive prompts are disabled (PGBRANCH_TEST_NO_INTERACTIVE is set)")

// checkInteractiveAllowed returns an error if interactive mode is unavailable:
// disabled for testing, or stdin is not a terminal.
func checkInteractiveAllowed() error {
	if os.Getenv("PGBRANCH_TEST_NO_INTERACTIVE") != "" {
		return ErrInteractiveDisabled
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("interactive prompts require a terminal")
	}
	return nil
}

// Pick shows a selection prompt and returns the index of the chosen option.
func Pick(message string, options []string) (int, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return 0, err
	}

	var index int
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return 0, err
	}
	return index, nil
}

// Confirm shows a yes/no prompt.
func Confirm(message string, defaultYes bool) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	answer := defaultYes
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultYes,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer, nil
}
