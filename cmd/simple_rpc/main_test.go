package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jfjlaros/arduino-simple-rpc/itf"
	"github.com/jfjlaros/arduino-simple-rpc/jsonconv"
	"github.com/jfjlaros/arduino-simple-rpc/transport/transporttest"
	_ "github.com/mdzio/go-lib/testutil"
	"github.com/stretchr/testify/assert"
)

var testLines = []string{
	"B: B;ping: Echo a value. @data: Value. @return: Value of data.",
	"s: s;echo: Echo a string. @text: Text. @return: Text.",
	": ?;set_led: Set the LED. @on: State.",
}

func testInterface(replies ...[]byte) (*itf.Interface, *transporttest.Device) {
	hs := transporttest.Handshake("simpleRPC", [3]byte{3, 0, 0}, "<H", testLines...)
	dev := transporttest.New(append([][]byte{hs}, replies...)...)
	return &itf.Interface{Addr: "test", Transport: dev}, dev
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	err := ioutil.WriteFile(p, []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseFlags(t *testing.T) {
	c := newCommand("call", &bytes.Buffer{})
	args, err := c.parse([]string{"-b", "115200", "-w", "0.5", "-t", "3", "/dev/ttyACM0", "ping", "1"})
	if assert.NoError(t, err) {
		assert.Equal(t, 115200, c.settings.BaudRate)
		assert.Equal(t, 500*time.Millisecond, c.settings.Wait)
		assert.Equal(t, 3*time.Second, c.settings.ReadTimeout)
		args, err = c.device(args, 1)
		assert.NoError(t, err)
		assert.Equal(t, "/dev/ttyACM0", c.settings.Device)
		assert.Equal(t, []string{"ping", "1"}, args)
	}

	c = newCommand("list", &bytes.Buffer{})
	_, err = c.parse(nil)
	assert.NoError(t, err)
	assert.Equal(t, 9600, c.settings.BaudRate)
	assert.Equal(t, 2*time.Second, c.settings.Wait)
	assert.Zero(t, c.settings.ReadTimeout)
	_, err = c.device(nil, 0)
	assert.Equal(t, errUsage, err)

	var stderr bytes.Buffer
	c = newCommand("list", &stderr)
	_, err = c.parse([]string{"-x"})
	assert.Equal(t, errUsage, err)
	assert.Contains(t, stderr.String(), "usage: simple_rpc list")
}

func TestConfig(t *testing.T) {
	cfg := writeFile(t, "simple_rpc.toml", `
device = "socket://192.168.1.50:1025"
baudrate = 57600
wait = "0s"
read_timeout = "1500ms"
encoding = "latin1"
`)
	c := newCommand("call", &bytes.Buffer{})
	args, err := c.parse([]string{"-c", cfg, "-b", "19200", "ping", "5"})
	if err != nil {
		t.Fatal(err)
	}
	args, err = c.device(args, 1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"ping", "5"}, args)
	assert.Equal(t, "socket://192.168.1.50:1025", c.settings.Device)
	// flags win over the configuration file
	assert.Equal(t, 19200, c.settings.BaudRate)
	assert.Zero(t, c.settings.Wait)
	assert.Equal(t, 1500*time.Millisecond, c.settings.ReadTimeout)
	assert.Equal(t, "latin1", c.settings.Encoding)

	i := c.settings.newInterface()
	assert.Equal(t, "socket://192.168.1.50:1025", i.Addr)
	assert.Equal(t, 19200, i.BaudRate)
	assert.Equal(t, 1500*time.Millisecond, i.ReadTimeout)
}

func TestConfigErrors(t *testing.T) {
	cases := []string{
		`wait = "soon"`,
		`read_timeout = "-1s"`,
		`baudrate = 0`,
		`baudrate = "fast"`,
		`device = `,
	}
	for _, content := range cases {
		s := defaultSettings()
		err := loadConfig(writeFile(t, "c.toml", content), &s, nil)
		assert.Error(t, err, content)
	}

	s := defaultSettings()
	err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), &s, nil)
	assert.Error(t, err)

	// skipped keys keep their values
	s = defaultSettings()
	err = loadConfig(writeFile(t, "c.toml", `wait = "5s"`), &s, map[string]bool{"wait": true})
	assert.NoError(t, err)
	assert.Equal(t, 2*time.Second, s.Wait)
}

func TestList(t *testing.T) {
	i, _ := testInterface()
	var out bytes.Buffer
	err := rpcList(&out, i, nil)
	assert.NoError(t, err)
	assert.False(t, i.IsOpen())
	assert.Equal(t,
		"ping data\n    Echo a value.\n\n    int data: Value.\n\n    returns int: Value of data.\n\n\n"+
			"echo text\n    Echo a string.\n\n    bytes text: Text.\n\n    returns bytes: Text.\n\n\n"+
			"set_led on\n    Set the LED.\n\n    bool on: State.\n\n\n",
		out.String())
}

func TestSaveAndCall(t *testing.T) {
	i, _ := testInterface()
	var out, catalog bytes.Buffer
	err := rpcList(&out, i, &catalog)
	assert.NoError(t, err)
	assert.Empty(t, out.String())
	assert.True(t, strings.HasPrefix(catalog.String(), "endianness:"), catalog.String())

	// call through the saved catalog, no discovery
	dev := transporttest.New([]byte("hi\x00"))
	i = &itf.Interface{Addr: "test", Transport: dev}
	err = rpcCall(&out, i, &catalog, &jsonconv.Converter{}, "echo", []string{"hi"})
	assert.NoError(t, err)
	assert.Equal(t, "\"hi\"\n", out.String())
	assert.Equal(t, "0100"+"686900", hex.EncodeToString(dev.Written.Bytes()))
}

func TestCall(t *testing.T) {
	i, dev := testInterface([]byte{5})
	var out bytes.Buffer
	err := rpcCall(&out, i, nil, &jsonconv.Converter{}, "ping", []string{"5"})
	assert.NoError(t, err)
	assert.Equal(t, "5\n", out.String())
	assert.Equal(t, "ff00"+"0000"+"05", hex.EncodeToString(dev.Written.Bytes()))
	assert.False(t, i.IsOpen())

	// no output for void methods
	i, _ = testInterface()
	out.Reset()
	err = rpcCall(&out, i, nil, &jsonconv.Converter{}, "set_led", []string{"true"})
	assert.NoError(t, err)
	assert.Empty(t, out.String())

	i, _ = testInterface()
	err = rpcCall(&out, i, nil, &jsonconv.Converter{}, "blink", nil)
	assert.True(t, errors.Is(err, itf.ErrInvalidName))

	i, _ = testInterface()
	err = rpcCall(&out, i, nil, &jsonconv.Converter{}, "ping", []string{`{"a": 1}`})
	assert.Error(t, err)
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, errUsage, run(nil, &stdout, &stderr))
	assert.Equal(t, errUsage, run([]string{"reset"}, &stdout, &stderr))
	assert.Equal(t, errUsage, run([]string{"call", "/dev/ttyACM0"}, &stdout, &stderr))
	assert.Equal(t, errUsage, run([]string{"list", "/dev/ttyACM0", "extra"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: simple_rpc")

	stdout.Reset()
	assert.NoError(t, run([]string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "commands:")

	err := run([]string{"call", "-encoding", "no-such-charset", "/dev/ttyACM0", "ping"}, &stdout, &stderr)
	assert.EqualError(t, err, "Unknown encoding: no-such-charset")
}
