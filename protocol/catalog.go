package protocol

import (
	"fmt"
	"io"

	"github.com/jfjlaros/arduino-simple-rpc/codec"
	"github.com/jfjlaros/arduino-simple-rpc/format"
	"gopkg.in/yaml.v3"
)

// YAML document of a saved catalog. Fields are ordered alphabetically, as
// generated by earlier tools.

type catalogDoc struct {
	Endianness string               `yaml:"endianness"`
	Methods    map[string]methodDoc `yaml:"methods"`
	Protocol   string               `yaml:"protocol"`
	SizeT      string               `yaml:"size_t"`
	Version    []int                `yaml:"version"`
}

type methodDoc struct {
	Doc        string     `yaml:"doc"`
	Index      int        `yaml:"index"`
	Name       string     `yaml:"name"`
	Parameters []paramDoc `yaml:"parameters"`
	Return     returnDoc  `yaml:"return"`
}

type paramDoc struct {
	Doc      string `yaml:"doc"`
	Fmt      string `yaml:"fmt"`
	Name     string `yaml:"name"`
	Typename string `yaml:"typename"`
}

type returnDoc struct {
	Doc      string `yaml:"doc"`
	Fmt      string `yaml:"fmt"`
	Typename string `yaml:"typename"`
}

// Save writes the device descriptor as YAML document.
func (d *Device) Save(w io.Writer) error {
	doc := catalogDoc{
		Endianness: string(d.Params.Endianness),
		Methods:    make(map[string]methodDoc, len(d.Methods)),
		Protocol:   d.Protocol,
		SizeT:      string(d.Params.SizeT),
		Version:    []int{int(d.Version[0]), int(d.Version[1]), int(d.Version[2])},
	}
	for name, m := range d.Methods {
		md := methodDoc{
			Doc:        m.Doc,
			Index:      m.Index,
			Name:       m.Name,
			Parameters: []paramDoc{},
			Return: returnDoc{
				Doc:      m.Return.Doc,
				Fmt:      m.Return.Type.String(),
				Typename: m.Return.Type.TypeName(),
			},
		}
		for _, p := range m.Parameters {
			md.Parameters = append(md.Parameters, paramDoc{
				Doc:      p.Doc,
				Fmt:      p.Type.String(),
				Name:     p.Name,
				Typename: p.Type.TypeName(),
			})
		}
		doc.Methods[name] = md
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(&doc)
	if err != nil {
		return fmt.Errorf("Encoding of catalog failed: %w", err)
	}
	return enc.Close()
}

// LoadDevice reads a device descriptor from a YAML document written by Save.
// The protocol tag and version are checked like during discovery.
func LoadDevice(r io.Reader) (*Device, error) {
	var doc catalogDoc
	err := yaml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("Decoding of catalog failed: %w", err)
	}

	err = CheckTag(doc.Protocol)
	if err != nil {
		return nil, err
	}
	if len(doc.Version) != 3 {
		return nil, fmt.Errorf("Invalid version in catalog: %v", doc.Version)
	}
	var v Version
	for i, n := range doc.Version {
		if n < 0 || n > 0xff {
			return nil, fmt.Errorf("Invalid version in catalog: %v", doc.Version)
		}
		v[i] = uint8(n)
	}
	err = CheckVersion(v)
	if err != nil {
		return nil, err
	}
	params, err := codec.ParseParams([]byte(doc.Endianness + doc.SizeT))
	if err != nil {
		return nil, err
	}

	d := NewDevice()
	d.Protocol = doc.Protocol
	d.Version = v
	d.Params = params
	for key, md := range doc.Methods {
		m := &Method{
			Index: md.Index,
			Name:  md.Name,
			Doc:   md.Doc,
		}
		if m.Name == "" {
			m.Name = key
		}
		m.Return.Doc = md.Return.Doc
		m.Return.Type, err = format.Parse(md.Return.Fmt)
		if err != nil {
			return nil, fmt.Errorf("Invalid return type of method %s: %w", m.Name, err)
		}
		for _, pd := range md.Parameters {
			t, err := format.Parse(pd.Fmt)
			if err != nil {
				return nil, fmt.Errorf("Invalid type of parameter %s.%s: %w", m.Name, pd.Name, err)
			}
			if t.IsEmpty() {
				return nil, fmt.Errorf("Missing type of parameter %s.%s", m.Name, pd.Name)
			}
			m.Parameters = append(m.Parameters, &Parameter{Name: pd.Name, Doc: pd.Doc, Type: t})
		}
		d.Add(m)
	}
	return d, nil
}
