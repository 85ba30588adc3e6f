package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ardnew/ecalc/lang"
)

// Functions lists the keyword functions.
type Functions struct {
	Output `embed:""`

	Filter string `arg:"" help:"Only list functions whose name contains FILTER." optional:""`
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// newTable returns a table styled for terminal output.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Headers(headers...)
}

// Run executes the functions command.
func (f *Functions) Run(ctx context.Context) error {
	var list []lang.FunctionInfo

	for _, fn := range lang.Functions() {
		if strings.Contains(fn.Name, strings.ToUpper(f.Filter)) {
			list = append(list, fn)
		}
	}

	return f.render(stdout(ctx), list, func(w io.Writer) error {
		t := newTable("SIGNATURE", "DESCRIPTION")

		for _, fn := range list {
			t.Row(fn.Signature, fn.Summary)
		}

		_, err := fmt.Fprintln(w, t.String())

		return err
	})
}
