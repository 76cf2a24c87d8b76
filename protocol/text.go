package protocol

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText converts documentation bytes to a string. Devices should send
// UTF-8, anything else is taken as ISO8859-1.
func decodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
