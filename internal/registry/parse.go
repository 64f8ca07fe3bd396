package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrParse marks a catalog line that could not be turned into an Entry.
var ErrParse = errors.New("malformed registry line")

// Entry is one installed postprocessor.
type Entry struct {
	DisplayName    string
	SourceFileName string
}

// String renders the entry the way reports list it.
func (e Entry) String() string {
	if e.SourceFileName == "" {
		return e.DisplayName
	}
	return fmt.Sprintf("%s (%s)", e.DisplayName, e.SourceFileName)
}

// LineIssue describes a skipped catalog line.
type LineIssue struct {
	Line   int
	Text   string
	Reason string
}

// Error implements the error interface. LineIssue wraps ErrParse.
func (i LineIssue) Error() string {
	return fmt.Sprintf("line %d: %s: %q", i.Line, i.Reason, i.Text)
}

// Unwrap returns ErrParse.
func (i LineIssue) Unwrap() error {
	return ErrParse
}

// minFields is the number of comma-separated fields a line needs.
const minFields = 2

// placeholderRe matches environment placeholders like ${UGII_CAM_POST_DIR}.
var placeholderRe = regexp.MustCompile(`\$\{[^}]*\}`)

// Parse reads catalog lines from r in file order. Blank and comment lines
// are ignored silently; lines with fewer than two fields are returned as
// issues. The error is non-nil only if reading r itself fails, in which case
// the entries parsed so far are still returned.
func Parse(r io.Reader) ([]Entry, []LineIssue, error) {
	var (
		entries []Entry
		issues  []LineIssue
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < minFields {
			issues = append(issues, LineIssue{Line: lineNo, Text: line, Reason: "expected at least 2 comma-separated fields"})
			continue
		}

		entries = append(entries, Entry{
			DisplayName:    strings.TrimSpace(fields[0]),
			SourceFileName: sourceFileName(fields[1]),
		})
	}

	if err := scanner.Err(); err != nil {
		return entries, issues, fmt.Errorf("failed to read registry after line %d: %w", lineNo, err)
	}
	return entries, issues, nil
}

// sourceFileName strips placeholders from a path field and keeps only its
// final segment. Both slash styles are accepted.
func sourceFileName(field string) string {
	path := placeholderRe.ReplaceAllString(strings.TrimSpace(field), "")
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return strings.TrimSpace(path)
}
