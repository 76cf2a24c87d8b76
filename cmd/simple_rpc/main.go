/*
simple_rpc lists and calls the methods of a simpleRPC device.

	simple_rpc list [flags] [DEVICE]
	simple_rpc call [flags] [DEVICE] NAME [ARG...]

DEVICE is a serial device (e.g. /dev/ttyACM0) or socket://host:port. It is
omitted if the configuration file (-c) names a device. Arguments of call are
parsed as JSON if possible and used as plain strings otherwise. The result is
printed as JSON.
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jfjlaros/arduino-simple-rpc/itf"
	"github.com/jfjlaros/arduino-simple-rpc/jsonconv"
	"github.com/mdzio/go-logging"
)

var log = logging.Get("simplerpc-cli")

// errUsage signals a command line error, the usage was already printed.
var errUsage = errors.New("Invalid command line")

// flag names and the configuration keys they override
var flagKeys = map[string]string{
	"b":        "baudrate",
	"w":        "wait",
	"t":        "read_timeout",
	"encoding": "encoding",
	"log":      "log",
}

type command struct {
	fs       *flag.FlagSet
	settings settings
	output   string
	config   string
	wait     float64
	timeout  float64
	// interface definition file: -s for list, -l for call
	catalog string
}

func newCommand(name string, stderr io.Writer) *command {
	c := &command{settings: defaultSettings()}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.output, "o", "-", "output `file`")
	fs.StringVar(&c.config, "c", "", "configuration `file` (TOML)")
	fs.IntVar(&c.settings.BaudRate, "b", c.settings.BaudRate, "baud `rate`")
	fs.Float64Var(&c.wait, "w", c.settings.Wait.Seconds(), "time in `seconds` before communication starts")
	fs.Float64Var(&c.timeout, "t", 0, "read timeout in `seconds`, 0 waits forever")
	fs.StringVar(&c.settings.Encoding, "encoding", "", "`charset` of device strings, e.g. latin1 (default utf-8)")
	fs.Var(
		&c.settings.LogLevel,
		"log",
		"specifies the minimum `severity` of printed log messages: off, error, warning, info, debug or trace",
	)
	switch name {
	case "list":
		fs.StringVar(&c.catalog, "s", "", "save the interface definition to `file` instead of listing")
		fs.Usage = func() {
			fmt.Fprintln(stderr, "usage: simple_rpc list [flags] [DEVICE]")
			fs.PrintDefaults()
		}
	case "call":
		fs.StringVar(&c.catalog, "l", "", "load the interface definition from `file`")
		fs.Usage = func() {
			fmt.Fprintln(stderr, "usage: simple_rpc call [flags] [DEVICE] NAME [ARG...]")
			fs.PrintDefaults()
		}
	}
	c.fs = fs
	return c
}

// parse parses the flags and applies the configuration file. The remaining
// positional arguments are returned.
func (c *command) parse(args []string) ([]string, error) {
	err := c.fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		// the flag set already printed the error and the usage
		return nil, errUsage
	}
	if c.wait < 0 || c.timeout < 0 {
		return nil, errors.New("Negative durations are not allowed")
	}
	c.settings.Wait = seconds(c.wait)
	c.settings.ReadTimeout = seconds(c.timeout)
	if c.config != "" {
		skip := make(map[string]bool)
		c.fs.Visit(func(f *flag.Flag) {
			if k, ok := flagKeys[f.Name]; ok {
				skip[k] = true
			}
		})
		err = loadConfig(c.config, &c.settings, skip)
		if err != nil {
			return nil, err
		}
	}
	logging.SetLevel(c.settings.LogLevel)
	return c.fs.Args(), nil
}

// device takes the device from the positional arguments, unless the
// configuration names one.
func (c *command) device(args []string, min int) ([]string, error) {
	if c.settings.Device == "" {
		if len(args) == 0 {
			c.fs.Usage()
			return nil, errUsage
		}
		c.settings.Device, args = args[0], args[1:]
	}
	if len(args) < min {
		c.fs.Usage()
		return nil, errUsage
	}
	return args, nil
}

func (c *command) converter() (*jsonconv.Converter, error) {
	e, err := jsonconv.LookupEncoding(c.settings.Encoding)
	if err != nil {
		return nil, err
	}
	return &jsonconv.Converter{Encoding: e}, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (c *command) openOutput(stdout io.Writer) (io.WriteCloser, error) {
	if c.output == "-" {
		return nopCloser{stdout}, nil
	}
	return os.Create(c.output)
}

// rpcList lists the device methods, or saves the interface definition if
// save is not nil.
func rpcList(w io.Writer, i *itf.Interface, save io.Writer) error {
	return itf.With(i, nil, func(i *itf.Interface) error {
		if save != nil {
			return i.Save(save)
		}
		for _, m := range i.Device().Sorted() {
			_, err := fmt.Fprint(w, m.Describe()+"\n\n\n")
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// rpcCall executes a method and prints the result. The methods are loaded
// from catalog, if not nil.
func rpcCall(w io.Writer, i *itf.Interface, catalog io.Reader, conv *jsonconv.Converter, name string, args []string) error {
	vals, err := conv.Args(args)
	if err != nil {
		return err
	}
	return itf.With(i, catalog, func(i *itf.Interface) error {
		res, err := i.Call(name, vals...)
		if err != nil {
			return err
		}
		if res == nil {
			return nil
		}
		b, err := conv.Marshal(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	})
}

func runList(args []string, stdout, stderr io.Writer) (err error) {
	c := newCommand("list", stderr)
	args, err = c.parse(args)
	if err != nil {
		return err
	}
	args, err = c.device(args, 0)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		c.fs.Usage()
		return errUsage
	}

	var save io.Writer
	if c.catalog != "" {
		f, ferr := os.Create(c.catalog)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		save = f
	}
	out, err := c.openOutput(stdout)
	if err != nil {
		return err
	}
	defer out.Close()
	return rpcList(out, c.settings.newInterface(), save)
}

func runCall(args []string, stdout, stderr io.Writer) error {
	c := newCommand("call", stderr)
	args, err := c.parse(args)
	if err != nil {
		return err
	}
	args, err = c.device(args, 1)
	if err != nil {
		return err
	}
	conv, err := c.converter()
	if err != nil {
		return err
	}

	var catalog io.Reader
	if c.catalog != "" {
		f, err := os.Open(c.catalog)
		if err != nil {
			return err
		}
		defer f.Close()
		catalog = f
	}
	out, err := c.openOutput(stdout)
	if err != nil {
		return err
	}
	defer out.Close()
	return rpcCall(out, c.settings.newInterface(), catalog, conv, args[0], args[1:])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: simple_rpc <command> [flags] ...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  list   list the device methods")
	fmt.Fprintln(w, "  call   execute a method")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run simple_rpc <command> -h for the flags of a command.")
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}
	switch args[0] {
	case "list":
		return runList(args[1:], stdout, stderr)
	case "call":
		return runCall(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return nil
	}
	usage(stderr)
	return errUsage
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
		os.Exit(0)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		// log fatal error
		log.Error(err)
		os.Exit(1)
	}
}
