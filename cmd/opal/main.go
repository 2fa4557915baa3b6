package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oar06g/opal/opal"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "build":
		return buildCommand(args[2:])
	case "repl":
		return runREPL()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	checkOnly := fs.Bool("check", false, "only parse the script without executing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("opal run: script path required")
	}
	input, err := os.ReadFile(remaining[0])
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if *checkOnly {
		_, err := opal.Parse(string(input))
		return err
	}
	interp := opal.NewInterpreter(opal.Config{})
	if _, err := interp.RunSource(context.Background(), string(input)); err != nil {
		return err
	}
	return nil
}

func buildCommand(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	output := fs.String("o", "", "output executable path (defaults next to the script)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("opal build: script path required")
	}
	built, err := opal.BuildExecutableFromFile(context.Background(), remaining[0], *output)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Printf("wrote %s\n", built)
	return nil
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] <script>\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [-check] <script>")
	fmt.Fprintln(os.Stderr, "    interpret a script")
	fmt.Fprintln(os.Stderr, "  build [-o <path>] <script>")
	fmt.Fprintln(os.Stderr, "    compile a script to a native executable")
	fmt.Fprintln(os.Stderr, "  repl")
	fmt.Fprintln(os.Stderr, "    start an interactive session")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
