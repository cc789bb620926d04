// Command fastaframes converts UniProt FASTA files to tables and back.
//
//	fastaframes to-table [-format csv|tsv|json] [-o out] [-protein-id] <input.fasta|->
//	fastaframes to-fasta [-format csv|tsv|json] [-width N] [-o out] <table|->
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/fastaframes/internal/config"
	"github.com/JonMunkholm/fastaframes/internal/core"
	"github.com/JonMunkholm/fastaframes/internal/logging"
	"github.com/JonMunkholm/fastaframes/internal/tableio"
)

const usage = `usage:
  fastaframes to-table [-format csv|tsv|json] [-o out] [-protein-id] <input.fasta|->
  fastaframes to-fasta [-format csv|tsv|json] [-width N] [-o out] <table|->
`

var errUsage = errors.New("invalid usage")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "fastaframes: %v\n%s\n", err, core.FormatUserError(err))
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)

	switch args[0] {
	case "to-table":
		return runToTable(ctx, args[1:], stdin, stdout, stderr)
	case "to-fasta":
		return runToFasta(ctx, cfg, args[1:], stdin, stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return errUsage
	}
}

func runToTable(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("to-table", flag.ContinueOnError)
	fs.SetOutput(stderr)
	formatName := fs.String("format", "", "output table format: csv, tsv or json (default from -o, else csv)")
	out := fs.String("o", "", "output path (default stdout)")
	withID := fs.Bool("protein-id", false, "add the derived protein_id column")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	input, err := singleArg(fs)
	if err != nil {
		return err
	}

	format, err := outputFormat(*formatName, *out)
	if err != nil {
		return err
	}

	var source any = input
	if input == "-" {
		source = stdin
	}

	svc := core.NewService()
	entries, _, err := svc.ReadEntries(ctx, source)
	if err != nil {
		return err
	}
	if *withID {
		entries = core.WithProteinIDs(entries)
	}
	t := core.EntriesToTable(entries)

	if *out != "" {
		return tableio.WriteFile(*out, t, format)
	}
	if err := tableio.Write(stdout, t, format); err != nil {
		return &core.SourceError{Op: "write", Err: err}
	}
	return nil
}

func runToFasta(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("to-fasta", flag.ContinueOnError)
	fs.SetOutput(stderr)
	formatName := fs.String("format", "", "input table format: csv, tsv or json (default from extension, else csv)")
	width := fs.Int("width", cfg.Fasta.WrapWidth, "residues per sequence line, 0 for no wrapping")
	out := fs.String("o", "", "output path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	input, err := singleArg(fs)
	if err != nil {
		return err
	}
	if *width < 0 {
		fmt.Fprintln(stderr, "-width must be non-negative")
		return errUsage
	}

	t, err := readTable(input, *formatName, stdin)
	if err != nil {
		return err
	}

	svc := core.NewService(core.WithWrapWidth(*width))
	if *out != "" {
		_, err := svc.ToText(ctx, t, *out)
		return err
	}
	return svc.WriteText(ctx, stdout, t)
}

func singleArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		fmt.Fprintf(fs.Output(), "%s: expected exactly one input (use - for stdin)\n", fs.Name())
		return "", errUsage
	}
	return fs.Arg(0), nil
}

// outputFormat resolves -format, falling back to the output extension.
func outputFormat(name, out string) (tableio.Format, error) {
	if name != "" {
		return tableio.ParseFormat(name)
	}
	if f, ok := tableio.FormatFromPath(out); ok {
		return f, nil
	}
	return tableio.FormatCSV, nil
}

func readTable(input, formatName string, stdin io.Reader) (*core.Table, error) {
	if formatName == "" {
		if input == "-" {
			return tableio.Read(stdin, tableio.FormatCSV)
		}
		return tableio.ReadFile(input)
	}

	format, err := tableio.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	if input == "-" {
		return tableio.Read(stdin, format)
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, &core.SourceError{Op: "open", Path: input, Err: err}
	}
	defer f.Close()
	return tableio.Read(f, format)
}
