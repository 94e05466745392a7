// Package output writes tree lines and synchronization status messages.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/temirov/mdtree/internal/document"
)

const (
	updatedMessageFormat   = "Updated tree was embedded into %s."
	unchangedMessageFormat = "Tree in %s is up to date, nothing to update."
	failedMessageFormat    = "Synchronization of %s failed, the document was restored from the backup."
	generatedRegionHeader  = "Generated region:"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorInfo    = lipgloss.Color("#20B9B4")
	colorError   = lipgloss.Color("#E74C3C")

	updatedStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	unchangedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	failedStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	headerStyle    = lipgloss.NewStyle().Faint(true)
)

// StatusPrinter reports synchronization outcomes.
type StatusPrinter struct {
	Writer io.Writer
	// Colored enables terminal styling.
	Colored bool
}

// NewStatusPrinter returns a printer that colors its messages only when writer is a
// terminal.
func NewStatusPrinter(writer io.Writer) StatusPrinter {
	return StatusPrinter{Writer: writer, Colored: IsTerminal(writer)}
}

// IsTerminal reports whether writer is a file attached to a terminal.
func IsTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// Outcome prints the message describing outcome for documentPath.
func (printer StatusPrinter) Outcome(outcome document.Outcome, documentPath string) error {
	var message string
	var style lipgloss.Style
	switch outcome {
	case document.OutcomeUpdated:
		message, style = fmt.Sprintf(updatedMessageFormat, documentPath), updatedStyle
	case document.OutcomeUnchanged:
		message, style = fmt.Sprintf(unchangedMessageFormat, documentPath), unchangedStyle
	default:
		message, style = fmt.Sprintf(failedMessageFormat, documentPath), failedStyle
	}
	return printer.println(style, message)
}

// Region prints the generated region under a header.
func (printer StatusPrinter) Region(region string) error {
	if err := printer.println(headerStyle, generatedRegionHeader); err != nil {
		return err
	}
	_, err := io.WriteString(printer.Writer, region)
	return err
}

func (printer StatusPrinter) println(style lipgloss.Style, message string) error {
	if printer.Colored {
		message = style.Render(message)
	}
	_, err := fmt.Fprintln(printer.Writer, message)
	return err
}
