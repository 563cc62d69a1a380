package transform

import (
	"errors"
	"fmt"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf-8"

// ErrUnsupportedEncoding reports an encoding label that is not recognized.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// LookupEncoding resolves a WHATWG encoding label such as "utf-8",
// "latin1" or "windows-1251". It returns the encoding and its canonical
// name. The empty label means DefaultEncoding.
func LookupEncoding(label string) (encoding.Encoding, string, error) {
	if label == "" {
		label = DefaultEncoding
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label)
	}
	return enc, name, nil
}
