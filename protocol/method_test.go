package protocol

import (
	"errors"
	"testing"

	"github.com/jfjlaros/arduino-simple-rpc/format"
	_ "github.com/mdzio/go-lib/testutil"
	"github.com/stretchr/testify/assert"
)

func TestParseSignature(t *testing.T) {
	m, err := parseSignature(1, ": c f")
	if err != nil {
		t.Fatal(err)
	}
	want := &Method{
		Index: 1,
		Name:  "method1",
		Parameters: []*Parameter{
			{Name: "arg0", Type: format.Prim('c')},
			{Name: "arg1", Type: format.Prim('f')},
		},
		Return: Return{Type: &format.Node{Kind: format.Empty}},
	}
	assert.Equal(t, want, m)

	m, err = parseSignature(2, "f: [c] (cf)")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "method2", m.Name)
	assert.Equal(t, "f", m.Return.Type.String())
	assert.Equal(t, "[c]", m.Parameters[0].Type.String())
	assert.Equal(t, "[bytes]", m.Parameters[0].Type.TypeName())
	assert.Equal(t, "(cf)", m.Parameters[1].Type.String())
	assert.Equal(t, "(bytes, float)", m.Parameters[1].Type.TypeName())
}

func TestParseSignatureErrors(t *testing.T) {
	for _, sig := range []string{"ff: [c]", "B", "B: [c", "B: c)", "B: ic"} {
		_, err := parseSignature(0, sig)
		assert.Error(t, err, sig)
	}
	_, err := parseSignature(0, "if: B")
	assert.True(t, errors.Is(err, format.ErrTupleRequired))
}

func TestAddDoc(t *testing.T) {
	m, _ := parseSignature(1, "i: c f")
	ok := m.addDoc("name: Test. @p1: Char. @p2: Float. @return: Int.")
	assert.True(t, ok)
	assert.Equal(t, "name", m.Name)
	assert.Equal(t, "Test.", m.Doc)
	assert.Equal(t, "p1", m.Parameters[0].Name)
	assert.Equal(t, "Char.", m.Parameters[0].Doc)
	assert.Equal(t, "p2", m.Parameters[1].Name)
	assert.Equal(t, "Float.", m.Parameters[1].Doc)
	assert.Equal(t, "Int.", m.Return.Doc)
}

func TestAddDocMissingName(t *testing.T) {
	m, _ := parseSignature(1, ": c f")
	ok := m.addDoc("@p1: Char. @p2: Float.")
	assert.False(t, ok)
	assert.Equal(t, "method1", m.Name)
	assert.Equal(t, "", m.Doc)
	assert.Equal(t, "arg0", m.Parameters[0].Name)
	assert.Equal(t, "arg1", m.Parameters[1].Name)
}

func TestAddDocMissingParameter(t *testing.T) {
	m, _ := parseSignature(1, ": c f")
	ok := m.addDoc("name: Test. @p1: Char")
	assert.True(t, ok)
	assert.Equal(t, "name", m.Name)
	assert.Equal(t, "p1", m.Parameters[0].Name)
	assert.Equal(t, "arg1", m.Parameters[1].Name)
	assert.Equal(t, "", m.Parameters[1].Doc)
}

func TestAddDocExtraSegments(t *testing.T) {
	m, _ := parseSignature(0, ": B")
	ok := m.addDoc("name: Test. @a: A. @return: Nothing. @b: B.")
	assert.True(t, ok)
	assert.Len(t, m.Parameters, 1)
	assert.Equal(t, "a", m.Parameters[0].Name)
	assert.Equal(t, "Nothing.", m.Return.Doc)
}

func TestParseLine(t *testing.T) {
	m, err := ParseLine(1, []byte("i: c f;name: Test. @p1: Char. @p2: Float. @return: Int."))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, "name", m.Name)
	assert.Equal(t, "Int.", m.Return.Doc)

	// the first ';' separates, the documentation may contain more
	m, err = ParseLine(0, []byte("B: B;ping: Echo; a value. @data: Value."))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "ping", m.Name)
	assert.Equal(t, "Echo; a value.", m.Doc)
	assert.Equal(t, "data", m.Parameters[0].Name)
}

func TestParseLineMalformedDoc(t *testing.T) {
	m, err := ParseLine(3, []byte("B: B h;just some words"))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "method3", m.Name)
	assert.Equal(t, "arg0", m.Parameters[0].Name)
	assert.Equal(t, "arg1", m.Parameters[1].Name)
	assert.Equal(t, "B", m.Return.Type.String())
	assert.Equal(t, "B", m.Parameters[0].Type.String())
	assert.Equal(t, "h", m.Parameters[1].Type.String())

	// no documentation at all
	m, err = ParseLine(4, []byte(":"))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "method4", m.Name)
	assert.Empty(t, m.Parameters)
	assert.True(t, m.Return.Type.IsEmpty())
}

func TestParseLineLatin1Doc(t *testing.T) {
	m, err := ParseLine(0, []byte("B:;temp: Temperature in \xb0C."))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "Temperature in °C.", m.Doc)
}

func TestDescribe(t *testing.T) {
	m := &Method{
		Name: "test",
		Doc:  "Test.",
		Parameters: []*Parameter{
			{Name: "a", Type: format.Prim('i'), Doc: "Parameter a."},
			{Name: "b", Type: format.Prim('s'), Doc: "Parameter b."},
		},
		Return: Return{Type: format.Prim('f'), Doc: "Return value."},
	}
	assert.Equal(t,
		"test a b\n    Test.\n\n    int a: Parameter a.\n"+
			"    bytes b: Parameter b.\n\n    returns float: Return value.",
		m.Describe())

	m = &Method{Name: "reset", Return: Return{Type: format.MustParse("")}}
	assert.Equal(t, "reset", m.Describe())
}
