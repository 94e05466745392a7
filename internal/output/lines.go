package output

import (
	"bufio"
	"io"
	"strings"
)

const lineTerminator = "\n"

// LineWriter buffers tree lines written one at a time.
type LineWriter struct {
	writer *bufio.Writer
}

// NewLineWriter wraps writer.
func NewLineWriter(writer io.Writer) *LineWriter {
	return &LineWriter{writer: bufio.NewWriter(writer)}
}

// WriteLine writes line followed by a newline.
func (lineWriter *LineWriter) WriteLine(line string) error {
	if _, err := lineWriter.writer.WriteString(line); err != nil {
		return err
	}
	_, err := lineWriter.writer.WriteString(lineTerminator)
	return err
}

// Flush writes any buffered lines.
func (lineWriter *LineWriter) Flush() error {
	return lineWriter.writer.Flush()
}

// JoinLines returns lines as newline-terminated text.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, lineTerminator) + lineTerminator
}
