package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/vk/nxpost/internal/fsutil"
)

// Document is the single text artifact produced for one part: the group
// structure followed by the postprocessors available to convert it.
type Document struct {
	Part           string
	Structure      string
	Postprocessors []string
}

// Render returns the document as newline-delimited text.
func (d Document) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Part: %s\n", partOrDefault(d.Part))
	sb.WriteString("CAM group structure:\n")
	if strings.TrimSpace(d.Structure) == "" {
		sb.WriteString("(no setup groups found)\n")
	} else {
		sb.WriteString(d.Structure)
		if !strings.HasSuffix(d.Structure, "\n") {
			sb.WriteByte('\n')
		}
	}

	sb.WriteString("\nAvailable postprocessors:\n")
	if len(d.Postprocessors) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, p := range d.Postprocessors {
		sb.WriteString(DefaultIndent)
		sb.WriteString(p)
		sb.WriteByte('\n')
	}

	sb.WriteString("=== End of report ===\n")
	return sb.String()
}

// FileName returns the log file name used when the document is saved.
func (d Document) FileName() string {
	return fsutil.SafeFileName(partOrDefault(d.Part)) + "_structure.log"
}

// Save writes the rendered document into dir, creating it when needed, and
// returns the path of the written file.
func Save(fs afero.Fs, dir string, d Document) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, d.FileName())
	if err := afero.WriteFile(fs, path, []byte(d.Render()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}

func partOrDefault(part string) string {
	if strings.TrimSpace(part) == "" {
		return "workpiece"
	}
	return part
}
