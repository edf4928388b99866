package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels a form.
var ErrAborted = errors.New("aborted")

// AddQuoteForm prompts for a quote text and category. Known categories are
// offered as completions.
func AddQuoteForm(categories []string) (text, category string, err error) {
	notBlank := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New(field + " is required")
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Quote").
				Value(&text).
				Validate(notBlank("text")),
			huh.NewInput().
				Title("Category").
				Suggestions(categories).
				Value(&category).
				Validate(notBlank("category")),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", "", ErrAborted
		}
		return "", "", err
	}
	return text, category, nil
}
