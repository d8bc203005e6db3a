package parser

import (
	"bytes"
	"unicode/utf8"

	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// fallbackEncodings is the fixed, ordered ladder tried after UTF-8 (with
// or without BOM) is ruled out. The single-byte charmaps accept any input,
// so the ladder always terminates.
var fallbackEncodings = []encoding.Encoding{
	charmap.ISO8859_1, // latin-1
	charmap.Windows1252,
}

// decodeText decodes raw upload bytes under the first encoding of the
// ladder that accepts them.
func decodeText(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", &apperrors.MalformedInputError{Reason: "empty file"}
	}

	if bytes.HasPrefix(raw, utf8BOM) {
		trimmed := bytes.TrimPrefix(raw, utf8BOM)
		if utf8.Valid(trimmed) {
			return string(trimmed), nil
		}
		raw = trimmed
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	for _, enc := range fallbackEncodings {
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", &apperrors.MalformedInputError{Reason: "undecodable bytes under all supported encodings"}
}
