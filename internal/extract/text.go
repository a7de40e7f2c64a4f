package extract

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
)

// Text reads plain text files. Older circulars arrive in Windows-1252, so
// byte sequences that fail UTF-8 validation are re-decoded through that
// charmap instead of being dropped.
type Text struct{}

// ExtractText reads the whole file and returns its trimmed content.
func (Text) ExtractText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "extract: read %s", path)
	}

	if !utf8.Valid(data) {
		decoded, derr := charmap.Windows1252.NewDecoder().Bytes(data)
		if derr == nil {
			data = decoded
		}
	}
	return strings.TrimSpace(string(data)), nil
}
