// Command rencode converts between rencode and JSON, YAML or CBOR, and
// prints annotated dumps of encoded data.
//
// Usage:
//
//	rencode encode [--from json|yaml|cbor] [--frame] [--compress none|zstd|lz4] [file]
//	rencode decode [--to json|yaml|cbor] [--frame] [--offset N] [--compact] [file]
//	rencode diag   [--frame] [file]
//	rencode version
//
// Input is read from file, or stdin when no file is given, and output
// goes to stdout.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env carries the streams and resolved settings of one invocation.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	*settings
}

type command struct {
	name    string
	summary string
	flags   func(fs *pflag.FlagSet)
	run     func(e *env, args []string) error
}

func commands() []*command {
	return []*command{
		encodeCommand(),
		decodeCommand(),
		diagCommand(),
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("no command given")
	}
	name := args[0]
	switch name {
	case "version", "--version":
		fmt.Fprintf(stdout, "rencode %s\n", version)
		return nil
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	}

	var cmd *command
	for _, c := range commands() {
		if c.name == name {
			cmd = c
			break
		}
	}
	if cmd == nil {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	fs := pflag.NewFlagSet("rencode "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var g globalFlags
	g.register(fs)
	cmd.flags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	s, err := g.resolve(fs)
	if err != nil {
		return err
	}
	logger, err := newLogger(stderr, s.logFormat, s.verbose)
	if err != nil {
		return err
	}
	stop, err := startProfiling(logger, s.cpuProfile, s.memProfile)
	if err != nil {
		return err
	}
	defer stop()

	e := &env{stdin: stdin, stdout: stdout, stderr: stderr, logger: logger, settings: s}
	logger.Debug("running command", "command", name, "config", s.configPath, "max_depth", s.maxDepth)
	return cmd.run(e, fs.Args())
}

// readInput reads the single optional file argument, or stdin.
func (e *env) readInput(args []string) ([]byte, string, error) {
	if len(args) > 1 {
		return nil, "", fmt.Errorf("expected at most one input file, got %d", len(args))
	}
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("read input: %w", err)
		}
		return data, args[0], nil
	}
	data, err := io.ReadAll(e.stdin)
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}
	return data, "stdin", nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: rencode <command> [flags] [file]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "  %-8s %s\n", "version", "print the version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "global flags: --config, --verbose, --log-format, --max-depth, --cpuprofile, --memprofile")
}
