package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/0x4d5352/railroad/internal/driver"
	"github.com/0x4d5352/railroad/internal/loader"
	"github.com/0x4d5352/railroad/internal/render"
)

var version = "0.1.0"

func main() {
	var stdin io.Reader
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		stdin = os.Stdin
	}
	if err := run(os.Args, stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("railroad", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	outputFile := fs.StringP("output", "o", "", "Output file path (default: stdout)")
	showVersion := fs.BoolP("version", "v", false, "Show version")
	format := fs.String("format", "text", "Output format: text or svg")
	maxWidth := fs.Int("max-width", 0, "Maximum diagram width in cells (text) or pixels (svg); 0 autodetects the terminal width for text output")
	reverse := fs.Bool("reverse", false, "Render right-to-left")
	endClass := fs.String("end-class", "simple", "End-cap style: simple or complex")
	noColor := fs.Bool("no-color", false, "Disable ANSI color in text output even on a terminal")
	copyFlag := fs.Bool("copy", false, "Copy the rendered diagram to the system clipboard via an OSC52 escape sequence")
	title := fs.String("title", "", "SVG <title> element")
	desc := fs.String("desc", "", "SVG <desc> element")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "railroad - render syntax diagrams from a small declarative grammar\n\n")
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  railroad [flags] <grammar>\n")
		fmt.Fprintf(stderr, "  echo 'sequence(terminal(\"a\"), terminal(\"b\"))' | railroad [flags]\n\n")
		fmt.Fprintf(stderr, "Arguments:\n")
		fmt.Fprintf(stderr, "  grammar    Declarative element tree (reads from stdin if omitted)\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  railroad 'choice(terminal(\"a\"), terminal(\"b\"))'\n")
		fmt.Fprintf(stderr, "  railroad --format svg -o diagram.svg 'one_or_more(non_terminal(\"digit\"))'\n")
		fmt.Fprintf(stderr, "  railroad --reverse 'sequence(terminal(\"a\"), terminal(\"b\"))'\n")
	}

	err := fs.Parse(args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "railroad version %s\n", version)
		return nil
	}

	src, err := getInput(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return err
	}

	tree, err := loader.Parse(src)
	if err != nil {
		displayLoadError(stderr, src, err)
		return fmt.Errorf("parse error: %w", err)
	}

	ec := render.EndSimple
	if *endClass == "complex" {
		ec = render.EndComplex
	}

	var out string
	switch *format {
	case "svg":
		settings := render.DefaultSvgRenderSettings()
		settings.EndClass = ec
		if *maxWidth > 0 {
			settings.MaxWidth = *maxWidth
		}
		out = driver.RenderSVG(tree, settings, *reverse, *title, *desc)
	case "text":
		settings := render.DefaultTextRenderSettings()
		settings.EndClass = ec
		if *maxWidth > 0 {
			settings.MaxWidth = *maxWidth
		} else if w, ok := terminalWidth(stdout); ok {
			settings.MaxWidth = w
		}
		if !*noColor && isColorTerminal(stdout) {
			out = driver.RenderTextColor(tree, settings, *reverse, colorProfile(stdout))
		} else {
			out = driver.RenderText(tree, settings, *reverse)
		}
	default:
		err := fmt.Errorf("unknown format %q (want text or svg)", *format)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}

	if *copyFlag {
		fmt.Fprint(stdout, osc52.New(out).String())
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(out), 0644); err != nil {
			fmt.Fprintf(stderr, "Error writing output file: %v\n", err)
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", *outputFile)
		return nil
	}

	fmt.Fprintln(stdout, out)
	return nil
}

// getInput retrieves the grammar text from CLI args or stdin, args taking
// priority over a pipe.
func getInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if stdin != nil {
		input, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return strings.TrimSpace(string(input)), nil
	}
	return "", fmt.Errorf("no grammar provided")
}

// displayLoadError shows a loader error alongside the offending source.
func displayLoadError(w io.Writer, src string, err error) {
	fmt.Fprintf(w, "Error parsing grammar:\n\n")
	fmt.Fprintf(w, "  %s\n\n", src)
	fmt.Fprintf(w, "%s\n", err.Error())
}

// terminalWidth reports the stdout tty's column count, for picking a
// default max_width when the caller passed neither --max-width nor a
// redirected stdout.
func terminalWidth(stdout io.Writer) (int, bool) {
	f, ok := stdout.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return 0, false
	}
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 0, false
	}
	return int(ws.Col), true
}

func isColorTerminal(stdout io.Writer) bool {
	f, ok := stdout.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// colorProfile resolves the terminal's color capability (dumb, 256-color,
// or true-color) from the environment, so the same escape-generation code
// downgrades safely on a plain tty.
func colorProfile(stdout io.Writer) termenv.Profile {
	if _, ok := stdout.(*os.File); !ok {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
