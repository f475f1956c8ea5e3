package pgn

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Decode returns an uploaded PGN file as text. A UTF-8 byte order mark is
// dropped, non-UTF-8 input is read as Windows-1252 and line endings are
// normalised to \n.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		reader := transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder())
		decoded, err := io.ReadAll(reader)
		if err != nil {
			return "", fmt.Errorf("decode windows-1252 pgn: %w", err)
		}
		data = decoded
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}
