// Package jsonconv converts between JSON text and simpleRPC values. Byte
// strings of the device are converted with a configurable charset.
package jsonconv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Converter converts command line arguments and call results.
type Converter struct {
	// charset of device byte strings, nil means UTF-8
	Encoding encoding.Encoding
}

// LookupEncoding returns the encoding for a charset label (e.g. utf-8,
// latin1, windows-1252). UTF-8 and the empty label return nil.
func LookupEncoding(label string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		// HTML maps these labels to windows-1252
		return charmap.ISO8859_1, nil
	}
	e, _ := charset.Lookup(label)
	if e == nil {
		return nil, fmt.Errorf("Unknown encoding: %s", label)
	}
	return e, nil
}

// DecodeArg parses a command line argument as JSON. Text that is not valid
// JSON is used as a plain string.
func DecodeArg(s string) interface{} {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	return v
}

// Args converts command line arguments to call arguments. Strings become
// byte strings, JSON numbers become int64 or float64.
func (c *Converter) Args(ss []string) ([]interface{}, error) {
	args := make([]interface{}, len(ss))
	for i, s := range ss {
		v, err := c.encode(DecodeArg(s))
		if err != nil {
			return nil, fmt.Errorf("Conversion of argument %d failed: %w", i+1, err)
		}
		args[i] = v
	}
	return args, nil
}

func (c *Converter) encode(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case string:
		if c.Encoding == nil {
			return []byte(v), nil
		}
		return c.Encoding.NewEncoder().Bytes([]byte(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		return v.Float64()
	case []interface{}:
		vs := make([]interface{}, len(v))
		for i, e := range v {
			var err error
			vs[i], err = c.encode(e)
			if err != nil {
				return nil, err
			}
		}
		return vs, nil
	case map[string]interface{}:
		return nil, fmt.Errorf("JSON objects are not supported")
	}
	return v, nil
}

// Text converts all byte strings in a call result to text.
func (c *Converter) Text(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case []byte:
		if c.Encoding == nil {
			return string(v), nil
		}
		b, err := c.Encoding.NewDecoder().Bytes(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case []interface{}:
		vs := make([]interface{}, len(v))
		for i, e := range v {
			var err error
			vs[i], err = c.Text(e)
			if err != nil {
				return nil, err
			}
		}
		return vs, nil
	}
	return v, nil
}

// Marshal renders a call result as a single line of JSON.
func (c *Converter) Marshal(v interface{}) ([]byte, error) {
	t, err := c.Text(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err = enc.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("Encoding of result failed: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
