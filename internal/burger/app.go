package burger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/lvillar/pdfburger/codec"
	"github.com/lvillar/pdfburger/internal/config"
	"github.com/lvillar/pdfburger/internal/console"
)

const description = "Stack multiple PDFs and directories into a single file."

const examples = `examples:
   pdf-burger a.pdf b.pdf                  merge two PDFs (-> merged.pdf)
   pdf-burger ./docs/ -o combined.pdf      merge all PDFs in a directory
   pdf-burger ./docs/ -r                   search subdirectories recursively
   pdf-burger *.pdf --dry-run              preview target files only`

// valueFlags names the flags that consume the following argument.
var valueFlags = map[string]bool{
	"o": true, "output": true,
	"codec": true, "format": true,
	"history": true, "list-history": true, "delete-run": true,
	"config": true,
}

// NewApp builds the command line application.
func NewApp(version string) *cli.App {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version and exit",
	}
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "%s %s\n", c.App.Name, c.App.Version)
	}

	return &cli.App{
		Name:            "pdf-burger",
		Usage:           description,
		UsageText:       "pdf-burger [options] INPUT...",
		ArgsUsage:       "INPUT...",
		Description:     examples,
		Version:         version,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file path (default: merged.pdf)"},
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "search directories recursively"},
			&cli.BoolFlag{Name: "overwrite", Usage: "allow overwriting an existing output file"},
			&cli.BoolFlag{Name: "verbose", Usage: "show detailed log"},
			&cli.BoolFlag{Name: "dry-run", Usage: "list target files without merging"},
			&cli.StringFlag{Name: "codec", Value: codec.Default, Usage: fmt.Sprintf("PDF codec %v", codec.Names())},
			&cli.StringFlag{Name: "format", Value: string(FormatText), Usage: "output format: text, yaml or json"},
			&cli.StringFlag{Name: "history", Usage: "record the run in this SQLite database"},
			&cli.IntFlag{Name: "list-history", Usage: "print the last `N` recorded runs and exit"},
			&cli.Int64Flag{Name: "delete-run", Usage: "remove run `ID` from the history and exit"},
			&cli.StringFlag{Name: "config", Usage: "YAML config file (default: " + config.DefaultPath() + ")"},
			&cli.BoolFlag{Name: "log-json", Usage: "write diagnostic logs as JSON"},
		},
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return cli.Exit(err.Error(), ExitUsage)
		},
		// Exit codes are returned from Main rather than calling os.Exit.
		ExitErrHandler: func(*cli.Context, error) {},
		Action:         Action,
	}
}

// Action merges the inputs named on the command line. Flags that were set
// explicitly override the config file.
func Action(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}

	opts := Options{
		Inputs:      c.Args().Slice(),
		Output:      c.String("output"),
		Recursive:   boolOption(c, "recursive", cfg.Recursive),
		Overwrite:   boolOption(c, "overwrite", cfg.Overwrite),
		Verbose:     boolOption(c, "verbose", cfg.Verbose),
		DryRun:      c.Bool("dry-run"),
		Codec:       stringOption(c, "codec", cfg.Codec),
		Format:      stringOption(c, "format", cfg.Format),
		History:     stringOption(c, "history", cfg.History),
		ListHistory: c.Int("list-history"),
		DeleteRun:   c.Int64("delete-run"),
		LogJSON:     c.Bool("log-json"),
	}
	if code := Run(opts, c.App.Writer, c.App.ErrWriter); code != ExitOK {
		return cli.Exit("", code)
	}
	return nil
}

func boolOption(c *cli.Context, name string, fromFile *bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return config.Bool(fromFile, c.Bool(name))
}

func stringOption(c *cli.Context, name, fromFile string) string {
	if c.IsSet(name) || fromFile == "" {
		return c.String(name)
	}
	return fromFile
}

// Main runs the application with args, including the program name, and
// returns the exit code.
func Main(args []string, version string, stdout, stderr io.Writer) int {
	app := NewApp(version)
	app.Writer, app.ErrWriter = stdout, stderr

	err := app.Run(hoistFlags(args))
	if err == nil {
		return ExitOK
	}
	con := console.New(stderr, false)
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		if msg := err.Error(); msg != "" {
			con.Error(msg)
		}
		return ec.ExitCode()
	}
	con.Error(err.Error())
	return ExitUsage
}

// hoistFlags moves flags ahead of positional arguments so that options may
// follow the inputs, as in "pdf-burger docs/ -o out.pdf". Arguments after
// "--" stay positional.
func hoistFlags(args []string) []string {
	if len(args) == 0 {
		return args
	}
	flags := []string{args[0]}
	var positional []string
	for i := 1; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case len(a) > 1 && strings.HasPrefix(a, "-"):
			flags = append(flags, a)
			name := strings.TrimLeft(a, "-")
			if !strings.Contains(name, "=") && valueFlags[name] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			positional = append(positional, a)
		}
	}
	if len(positional) == 0 {
		return flags
	}
	return append(append(flags, "--"), positional...)
}

// HandleInterrupt reports "interrupted" and calls exit with ExitInterrupted
// on the first SIGINT. The returned function stops watching.
func HandleInterrupt(stderr io.Writer, exit func(int)) (stop func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			console.New(stderr, false).Error("interrupted")
			exit(ExitInterrupted)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
