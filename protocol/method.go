package protocol

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jfjlaros/arduino-simple-rpc/format"
	"github.com/mdzio/go-logging"
)

var log = logging.Get("simplerpc-protocol")

// Parameter describes a method parameter.
type Parameter struct {
	Name string
	Doc  string
	Type *format.Node
}

// Return describes the return value of a method. Type is Empty for methods
// without return value.
type Return struct {
	Doc  string
	Type *format.Node
}

// Method describes a remote procedure.
type Method struct {
	// selector sent to call the method
	Index      int
	Name       string
	Doc        string
	Parameters []*Parameter
	Return     Return
}

// ParseLine parses a catalog line of the form "signature;documentation" as
// sent by a device. Malformed documentation is ignored, the method keeps its
// default names then. A malformed signature is an error.
func ParseLine(index int, line []byte) (*Method, error) {
	sig, doc := line, []byte{}
	if i := bytes.IndexByte(line, ';'); i >= 0 {
		sig, doc = line[:i], line[i+1:]
	}
	m, err := parseSignature(index, string(sig))
	if err != nil {
		return nil, fmt.Errorf("Invalid signature of method %d: %w", index, err)
	}
	if !m.addDoc(decodeText(doc)) && len(doc) > 0 {
		log.Warningf("Ignoring malformed documentation of method %d: %q", index, doc)
	}
	return m, nil
}

func parseSignature(index int, sig string) (*Method, error) {
	m := &Method{
		Index: index,
		Name:  fmt.Sprintf("method%d", index),
	}
	i := strings.IndexByte(sig, ':')
	if i < 0 {
		return nil, fmt.Errorf("Missing ':' in signature %q", sig)
	}
	ret, err := format.Parse(strings.TrimSpace(sig[:i]))
	if err != nil {
		return nil, err
	}
	m.Return.Type = ret
	for idx, tok := range strings.Fields(sig[i+1:]) {
		t, err := format.Parse(tok)
		if err != nil {
			return nil, err
		}
		m.Parameters = append(m.Parameters, &Parameter{
			Name: fmt.Sprintf("arg%d", idx),
			Type: t,
		})
	}
	return m, nil
}

// addDoc applies a documentation string like
// "name: Method doc. @p1: Parameter doc. @return: Return doc.".
func (m *Method) addDoc(doc string) bool {
	segs := strings.Split(doc, "@")
	parts := make([][2]string, len(segs))
	for i, seg := range segs {
		kv := strings.SplitN(seg, ":", 2)
		if len(kv) != 2 {
			return false
		}
		parts[i] = [2]string{strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])}
	}

	m.Name, m.Doc = parts[0][0], parts[0][1]
	next := 0
	for _, p := range parts[1:] {
		if p[0] == "return" {
			m.Return.Doc = p[1]
			continue
		}
		if next < len(m.Parameters) {
			m.Parameters[next].Name = p[0]
			m.Parameters[next].Doc = p[1]
		}
		next++
	}
	return true
}

// Describe returns a human readable description of the method.
func (m *Method) Describe() string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	for _, p := range m.Parameters {
		sb.WriteString(" " + p.Name)
	}
	if m.Doc != "" {
		sb.WriteString("\n    " + m.Doc)
	}
	if len(m.Parameters) > 0 {
		sb.WriteString("\n")
	}
	for _, p := range m.Parameters {
		fmt.Fprintf(&sb, "\n    %s %s", p.Type.TypeName(), p.Name)
		if p.Doc != "" {
			sb.WriteString(": " + p.Doc)
		}
	}
	if !m.Return.Type.IsEmpty() {
		sb.WriteString("\n\n    returns " + m.Return.Type.TypeName())
		if m.Return.Doc != "" {
			sb.WriteString(": " + m.Return.Doc)
		}
	}
	return sb.String()
}
