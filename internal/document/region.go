// Package document keeps a managed region of a text document, delimited by two anchor
// lines, in sync with generated content.
package document

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	anchorLineExpressionFormat = `(?m)^%s\r?$`
	regionExpressionFormat     = `(?ms)^%s\r?\n(.*?)^%s\r?$`

	errorAnchorCountFormat = "%w: %q occurs %d times"
)

var (
	// ErrEmptyAnchor reports an anchor configured as an empty string.
	ErrEmptyAnchor = errors.New("anchor is empty")
	// ErrAnchorNotFound reports an anchor line missing from the document.
	ErrAnchorNotFound = errors.New("anchor line not found")
	// ErrAnchorNotUnique reports an anchor line present more than once.
	ErrAnchorNotUnique = errors.New("anchor line is not unique")
	// ErrAnchorOrder reports an end anchor that does not follow the start anchor.
	ErrAnchorOrder = errors.New("end anchor does not follow start anchor")
)

// Anchors are the literal lines delimiting the managed region.
type Anchors struct {
	Start string
	End   string
}

// Validate reports whether both anchors are set.
func (anchors Anchors) Validate() error {
	if anchors.Start == "" || anchors.End == "" {
		return ErrEmptyAnchor
	}
	return nil
}

// Region is the managed text of a document: everything after the start anchor line's
// terminator and before the end anchor line. Start and End are byte offsets.
type Region struct {
	Text  string
	Start int
	End   int
}

// Extract locates the single region between anchors in content.
func Extract(content string, anchors Anchors) (Region, error) {
	if validationError := anchors.Validate(); validationError != nil {
		return Region{}, validationError
	}
	for _, anchor := range []string{anchors.Start, anchors.End} {
		if countError := requireSingleLine(content, anchor); countError != nil {
			return Region{}, countError
		}
	}

	regionExpression := regexp.MustCompile(fmt.Sprintf(regionExpressionFormat, regexp.QuoteMeta(anchors.Start), regexp.QuoteMeta(anchors.End)))
	match := regionExpression.FindStringSubmatchIndex(content)
	if match == nil {
		return Region{}, ErrAnchorOrder
	}
	return Region{Text: content[match[2]:match[3]], Start: match[2], End: match[3]}, nil
}

// Replace returns content with region substituted by replacement.
func Replace(content string, region Region, replacement string) string {
	return content[:region.Start] + replacement + content[region.End:]
}

func requireSingleLine(content string, anchor string) error {
	lineExpression := regexp.MustCompile(fmt.Sprintf(anchorLineExpressionFormat, regexp.QuoteMeta(anchor)))
	occurrences := len(lineExpression.FindAllStringIndex(content, -1))
	switch {
	case occurrences == 0:
		return fmt.Errorf(errorAnchorCountFormat, ErrAnchorNotFound, anchor, occurrences)
	case occurrences > 1:
		return fmt.Errorf(errorAnchorCountFormat, ErrAnchorNotUnique, anchor, occurrences)
	default:
		return nil
	}
}
