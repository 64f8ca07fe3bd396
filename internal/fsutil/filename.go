package fsutil

import "strings"

var unsafeFileChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
)

// SafeFileName turns a session object name into a single path element.
// Separators and characters Windows rejects become underscores, and names
// that would resolve to a directory ("", ".", "..") become "_".
func SafeFileName(name string) string {
	safe := unsafeFileChars.Replace(strings.TrimSpace(name))
	switch safe {
	case "", ".", "..":
		return "_"
	}
	return safe
}
