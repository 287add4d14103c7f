package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/mojom/bindings"
	"github.com/wippyai/mojom/message"
	"github.com/wippyai/mojom/system"
)

type options struct {
	hexInput    bool
	raw         bool
	demo        bool
	interactive bool
	verbose     bool
	format      string
	color       string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("mojodump", pflag.ContinueOnError)
	flagSet.BoolVar(&opts.hexInput, "hex", false, "input is hex text instead of raw bytes")
	flagSet.BoolVar(&opts.raw, "raw", false, "input is a bare serialized struct without a message header")
	flagSet.BoolVar(&opts.demo, "demo", false, "dump a built-in sample message")
	flagSet.BoolVarP(&opts.interactive, "interactive", "i", false, "browse the dump in a terminal UI")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log decoder activity to stderr")
	flagSet.StringVarP(&opts.format, "format", "f", "text", "output format: text or cbor")
	flagSet.StringVar(&opts.color, "color", "auto", "colorize text output: auto, always or never")
	flagSet.Usage = func() { printUsage(flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		bindings.SetLogger(logger.Named("bindings"))
		message.SetLogger(logger.Named("message"))
		system.SetLogger(logger.Named("system"))
	}

	data, name, err := readInput(flagSet.Args(), stdin, opts)
	if err != nil {
		return err
	}
	rep := buildReport(data, opts.raw)

	switch opts.format {
	case "text":
	case "cbor":
		if opts.interactive {
			return fmt.Errorf("-i cannot be combined with -format cbor")
		}
		out, err := encodeCBOR(rep)
		if err != nil {
			return fmt.Errorf("encode cbor: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	if opts.interactive {
		return runInteractive(name, rep)
	}

	color, err := useColor(opts.color, stdout)
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, renderText(rep, newStyles(color)))
	return err
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage: mojodump [flags] <file|->")
	fmt.Fprintln(os.Stderr, "       mojodump -demo [-i]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprint(os.Stderr, flagSet.FlagUsages())
}

func readInput(args []string, stdin io.Reader, opts options) ([]byte, string, error) {
	if opts.demo {
		if len(args) > 0 {
			return nil, "", fmt.Errorf("unexpected argument %q with -demo", args[0])
		}
		data, err := demoMessage()
		return data, "demo", err
	}
	if len(args) != 1 {
		return nil, "", fmt.Errorf("expected one input file, got %d", len(args))
	}

	name := args[0]
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
		name = "stdin"
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}

	if opts.hexInput {
		data, err = decodeHex(data)
		if err != nil {
			return nil, "", err
		}
	}
	return data, name, nil
}

// decodeHex accepts hex digits separated by any whitespace.
func decodeHex(text []byte) ([]byte, error) {
	digits := bytes.Join(bytes.Fields(text), nil)
	out := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return out, nil
}

func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("unknown color mode %q", mode)
	}
}
