package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/connesc/appticket/ticketutil"
	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
)

type outputFlags struct {
	flags   *pflag.FlagSet
	compact bool
	format  string
	input   string
}

func newOutputFlags() *outputFlags {
	o := &outputFlags{flags: pflag.NewFlagSet("output", pflag.ContinueOnError)}
	o.flags.BoolVarP(&o.compact, "compact", "c", false, "disable pretty-printing of JSON output")
	o.flags.StringVarP(&o.format, "format", "f", "json", "output format: json or cbor")
	o.flags.StringVarP(&o.input, "input", "i", "auto", "input encoding: auto, binary, hex or base64")
	return o
}

type encoder interface {
	Encode(v any) error
}

func (o *outputFlags) encoder(w io.Writer) (encoder, error) {
	switch o.format {
	case "json":
		e := json.NewEncoder(w)
		if !o.compact {
			e.SetIndent("", "  ")
		}
		e.SetEscapeHTML(false)
		return e, nil
	case "cbor":
		opts := cbor.CoreDetEncOptions()
		opts.TextMarshaler = cbor.TextMarshalerTextString
		mode, err := opts.EncMode()
		if err != nil {
			return nil, err
		}
		return mode.NewEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", o.format)
	}
}

// processFunc handles one input. The result is encoded unless nil, and ok is false
// when the input has been rejected.
type processFunc func(filename *string, ticket []byte) (result any, ok bool)

// processFiles runs process on every file, or on stdin if none is given. It returns
// an exitError when at least one input has been rejected.
func (a *app) processFiles(o *outputFlags, filenames []string, process processFunc) error {
	e, err := o.encoder(a.stdout)
	if err != nil {
		return err
	}
	encoding, err := ticketutil.ParseEncoding(o.input)
	if err != nil {
		return err
	}

	// Text encodings at most double the size of a ticket.
	limit := 2*int64(a.cfg.MaxTicketSize) + 2

	rejected := false
	handle := func(filename *string, input io.Reader) error {
		data, err := ticketutil.ReadAll(input, limit)
		if err != nil {
			fmt.Fprintf(a.stderr, "Unable to read ticket: %v\n", err)
			return &exitError{code: exitInput, err: err}
		}
		ticket, err := encoding.Decode(data)
		if err != nil {
			fmt.Fprintf(a.stderr, "Unable to decode ticket: %v\n", err)
			return &exitError{code: exitInput, err: err}
		}
		result, ok := process(filename, ticket)
		if !ok {
			rejected = true
		}
		if result == nil {
			return nil
		}
		return e.Encode(result)
	}

	if len(filenames) == 0 {
		if err := handle(nil, a.stdin); err != nil {
			return err
		}
	}

	for _, filename := range filenames {
		if err := a.processFile(filename, handle); err != nil {
			return err
		}
	}

	if rejected {
		return &exitError{code: exitRejected, err: errors.New("rejected tickets")}
	}
	return nil
}

func (a *app) processFile(filename string, handle func(*string, io.Reader) error) error {
	file, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(a.stderr, "Unable to open file: %v\n", err)
		return &exitError{code: exitInput, err: err}
	}
	defer file.Close()

	return handle(&filename, file)
}
