// Package confirm asks for approval of a validated plan before inventory is
// touched.
package confirm

import (
	"context"

	"github.com/pterm/pterm"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
)

// Title heads the confirmation prompt.
const Title = "Confirm Sample Quantity Reduction"

// Interactive asks on the terminal.
type Interactive struct {
	prompt pterm.InteractiveConfirmPrinter
}

// NewInteractive creates a terminal confirmer that defaults to "no".
func NewInteractive() *Interactive {
	return &Interactive{
		prompt: *pterm.DefaultInteractiveConfirm.
			WithDefaultValue(false).
			WithConfirmText("Confirm").
			WithRejectText("Cancel"),
	}
}

// Confirm prints summary and waits for an answer.
func (i *Interactive) Confirm(ctx context.Context, summary string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	pterm.DefaultBox.WithTitle(Title).Println(summary)

	ok, err := i.prompt.Show("Subtract these amounts?")
	if err != nil {
		return false, errors.Wrap(err, "confirmation prompt")
	}
	return ok, nil
}

// Auto answers every confirmation with a fixed value, for --yes and tests.
type Auto struct {
	Answer bool

	// Seen holds the summaries that were presented.
	Seen []string
}

// Confirm records summary and returns the fixed answer.
func (a *Auto) Confirm(ctx context.Context, summary string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.Seen = append(a.Seen, summary)
	return a.Answer, nil
}
