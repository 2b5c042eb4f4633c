// Command slidefill runs the slide engine offline: it reads fields out of a
// slide, reports its headings, or writes a field record into it.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/dgallion1/slidedit/internal/document"
	"github.com/dgallion1/slidedit/internal/extract"
	"github.com/dgallion1/slidedit/internal/record"
	"github.com/dgallion1/slidedit/internal/schema"
	"github.com/dgallion1/slidedit/internal/synth"
)

const usage = `usage: slidefill <command> [flags]

commands:
  extract   print the slide's fields as a JSON record
  headings  print the detected section headings as JSON
  apply     write a JSON record into the slide and print the HTML

flags:
`

var errUsage = errors.New("usage")

type options struct {
	in      string
	out     string
	fields  string
	variant string
	lang    string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "slidefill: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("slidefill", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVarP(&opts.in, "in", "i", "", "input slide HTML (\"-\" for stdin; apply uses the built-in skeleton when empty)")
	fs.StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	fs.StringVarP(&opts.fields, "fields", "f", "", "JSON field record to apply (\"-\" for stdin)")
	fs.StringVar(&opts.variant, "variant", string(schema.VariantNotes), "template variant: footer or notes")
	fs.StringVar(&opts.lang, "lang", "", "heading language for apply: sl or en")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	variant, err := schema.ParseVariant(opts.variant)
	if err != nil {
		return err
	}
	sch := schema.For(variant)

	w := stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch cmd := fs.Arg(0); cmd {
	case "extract":
		doc, err := readDoc(opts.in, stdin)
		if err != nil {
			return err
		}
		return record.Encode(w, extract.Extract(doc, sch), sch)
	case "headings":
		doc, err := readDoc(opts.in, stdin)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(extract.DetectHeadings(doc))
	case "apply":
		return apply(w, opts, sch, stdin)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func apply(w io.Writer, opts options, sch *schema.Schema, stdin io.Reader) error {
	if opts.in == "-" && opts.fields == "-" {
		return errors.New("--in and --fields cannot both read stdin")
	}
	lang := schema.ParseLang(opts.lang)
	if opts.lang != "" && !lang.Valid() {
		return fmt.Errorf("--lang must be sl or en, got %q", opts.lang)
	}

	var base *document.Document
	if opts.in != "" {
		doc, err := readDoc(opts.in, stdin)
		if err != nil {
			return err
		}
		base = doc
	}

	fields := sch.Defaults()
	if opts.fields != "" {
		r, closeFn, err := openInput(opts.fields, stdin)
		if err != nil {
			return err
		}
		defer closeFn()
		fields, err = record.Decode(r, sch)
		if err != nil {
			return fmt.Errorf("read fields: %w", err)
		}
	}

	out := synth.Synthesize(base, sch, fields, lang)
	return out.Render(w)
}

func readDoc(path string, stdin io.Reader) (*document.Document, error) {
	if path == "" {
		return nil, errors.New("--in is required")
	}
	if path != "-" && !document.IsSupportedExtension(path) {
		return nil, fmt.Errorf("%s: not an .html or .htm file", path)
	}
	r, closeFn, err := openInput(path, stdin)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return document.Parse(r)
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}
