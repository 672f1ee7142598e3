package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts or interrupts a prompt
var ErrCancelled = errors.New("cancelled by user")

const maxVisibleOptions = 10

// InputPrompt asks for text input with optional validation
func InputPrompt(label string, defaultValue string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  defaultValue,
		Validate: validate,
	}

	result, err := prompt.Run()
	if err != nil {
		if isCancel(err) {
			return "", fmt.Errorf("input %w", ErrCancelled)
		}
		return "", err
	}

	return result, nil
}

// SelectOption is one row of a detailed selection list
type SelectOption struct {
	Label  string
	Detail string
	Value  string
}

// SelectPromptDetailed presents options with details. Typing filters the list
// with a fuzzy match on label and detail.
func SelectPromptDetailed(label string, options []SelectOption) (int, SelectOption, error) {
	if len(options) == 0 {
		return -1, SelectOption{}, errors.New("nothing to select")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Label | cyan }} ({{ .Detail | faint }})",
		Inactive: "  {{ .Label | faint }} ({{ .Detail | faint }})",
		Selected: "▸ {{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: templates,
		Size:      minInt(maxVisibleOptions, len(options)),
		Searcher:  optionSearcher(options),
	}

	index, _, err := prompt.Run()
	if err != nil {
		if isCancel(err) {
			return -1, SelectOption{}, fmt.Errorf("selection %w", ErrCancelled)
		}
		return -1, SelectOption{}, err
	}

	return index, options[index], nil
}

func optionSearcher(options []SelectOption) func(input string, index int) bool {
	return func(input string, index int) bool {
		if index < 0 || index >= len(options) {
			return false
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return true
		}
		opt := options[index]
		return fuzzy.MatchNormalizedFold(input, opt.Label+" "+opt.Detail)
	}
}

func isCancel(err error) bool {
	return errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ValidateNonEmpty validates that input is not empty
func ValidateNonEmpty(input string) error {
	if len(input) == 0 {
		return errors.New("input cannot be empty")
	}
	return nil
}
