package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v2"

	"github.com/daveroberts0321/renewdsl/generator"
	"github.com/daveroberts0321/renewdsl/model"
	"github.com/daveroberts0321/renewdsl/parser"
	"github.com/daveroberts0321/renewdsl/parser/grammar"
	"github.com/daveroberts0321/renewdsl/project"
	"github.com/daveroberts0321/renewdsl/watch"
)

const version = "0.3.0"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run dispatches one command. Results go to out; logs go to stderr.
func run(out io.Writer, args []string) error {
	if len(args) == 0 {
		printUsage(out)
		return nil
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "init":
		if len(args) < 1 {
			return usage("init <project-name>")
		}
		if err := project.Init(args[0]); err != nil {
			return fmt.Errorf("error initializing project: %w", err)
		}
		fmt.Fprintf(out, "Project '%s' initialized\n", args[0])
		fmt.Fprintf(out, "   cd %s\n", args[0])
		fmt.Fprintf(out, "   renewdsl check\n")
		return nil

	case "new":
		return runNew(out, args)

	case "check":
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		return runCheck(out, dir)

	case "dump":
		if len(args) < 1 {
			return usage("dump <file>")
		}
		m, err := parser.ParseFile(args[0])
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(m)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err

	case "grammar":
		fmt.Fprintln(out, grammar.EBNF())
		return nil

	case "watch":
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		return runWatch(dir)

	case "version":
		fmt.Fprintf(out, "RenewDSL v%s - renewable energy site description language\n", version)
		return nil

	case "help", "--help", "-h":
		printUsage(out)
		return nil

	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func runNew(out io.Writer, args []string) error {
	if len(args) < 1 {
		return usage("new <site|equipment> [args...]")
	}

	switch args[0] {
	case "site":
		if len(args) < 2 {
			return usage("new site <name> [dir]")
		}
		cfg, err := project.LoadConfig(".")
		if err != nil {
			return err
		}
		dir := cfg.SourceDirs(".")[0]
		if len(args) > 2 {
			dir = args[2]
		}
		path, err := generator.WriteSite(dir, args[1], cfg.Extension)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created %s\n", path)
		return nil

	case "equipment":
		if len(args) < 4 {
			return usage("new equipment <file> <panel|inverter|turbine|battery> <name>")
		}
		kind, err := model.ParseEquipmentKind(args[2])
		if err != nil {
			return err
		}
		if err := generator.AddEquipment(args[1], kind, args[3]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added %s %q to %s\n", kind, args[3], args[1])
		return nil

	default:
		return fmt.Errorf("unknown new command: %s", args[0])
	}
}

func runCheck(out io.Writer, dir string) error {
	cfg, err := project.LoadConfig(dir)
	if err != nil {
		return err
	}

	report, err := project.Check(context.Background(), dir, cfg, cfg.Logger(os.Stderr))
	if err != nil {
		return err
	}
	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Fprintf(out, "FAIL %s\n", res.Err)
			continue
		}
		fmt.Fprintf(out, "ok   %s  %s\n", res.Path, res.Model)
	}
	return report.Err()
}

func runWatch(dir string) error {
	cfg, err := project.LoadConfig(dir)
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for changes", "dirs", cfg.SourceDirs(dir), "extension", cfg.Extension)
	return watch.Watch(ctx, watch.Options{
		Dirs:      cfg.SourceDirs(dir),
		Extension: cfg.Extension,
		Logger:    logger,
	}, func(path string) error {
		m, err := parser.ParseFile(path)
		if err != nil {
			return err
		}
		logger.Info("parsed", "file", path, "model", m.String())
		return nil
	})
}

func usage(synopsis string) error {
	return errors.New("usage: renewdsl " + synopsis)
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `RenewDSL - renewable energy site description language

USAGE:
    renewdsl <command> [arguments]

COMMANDS:
    init <name>                        Initialize a new workspace
    new site <name> [dir]              Write a starter site document
    new equipment <file> <kind> <name> Append an equipment item to a document
    check [dir]                        Parse every document in the workspace
    dump <file>                        Print the parsed model as YAML
    grammar                            Print the grammar in EBNF
    watch [dir]                        Re-check documents when they change
    version                            Show version information
    help                               Show this help message

EXAMPLES:
    renewdsl init mojave
    renewdsl new site "Mojave North"
    renewdsl new equipment sites/mojave.renew battery "Pack A"
    renewdsl dump sites/mojave.renew`)
}
