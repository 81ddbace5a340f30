package network

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultCharset is used when the configuration leaves the charset empty.
const DefaultCharset = "utf-8"

// Charset converts between the server's character set and UTF-8.
// The zero value passes bytes through unchanged.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// LookupCharset resolves a WHATWG encoding label such as "utf-8",
// "windows-1251" or "koi8-r".
func LookupCharset(name string) (Charset, error) {
	if name == "" {
		name = DefaultCharset
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return Charset{}, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	return Charset{name: name, enc: enc}, nil
}

// Name returns the label the charset was looked up with.
func (c Charset) Name() string {
	if c.name == "" {
		return DefaultCharset
	}
	return c.name
}

// Decode converts server bytes to a UTF-8 string.
func (c Charset) Decode(b []byte) string {
	if c.enc == nil {
		return string(b)
	}
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// Encode converts a UTF-8 string to server bytes. Characters the server's
// charset cannot represent are sent as-is.
func (c Charset) Encode(s string) []byte {
	if c.enc == nil {
		return []byte(s)
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
