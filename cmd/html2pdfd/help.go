package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdfd <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Serve the conversion API over HTTP")
	fmt.Fprintln(w, "  render     Render one file to PDF")
	fmt.Fprintln(w, "  doctor     Check the browser setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'html2pdfd help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --production          Production environment (managed browser, isolation)")
	fmt.Fprintln(w, "      --engine <s>          Browser driver: rod, chromedp")
	fmt.Fprintln(w, "      --browser-bin <path>  Browser executable (must exist)")
	fmt.Fprintln(w, "      --isolate             One browser process per request")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only log errors")
	fmt.Fprintln(w, "  -v, --verbose             Log debug details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (HTML2PDF_ENV, HTML2PDF_BROWSER_BIN, ...) override the")
	fmt.Fprintln(w, "config file; flags override both. VERCEL_ENV=production selects production.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdfd serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve POST /api/convert, POST /api/convert/markdown, GET /healthz and GET /metrics.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :3000)")
	fmt.Fprintln(w, "      --debug-output <path> Debug copy of each PDF outside production")
	fmt.Fprintln(w, "      --no-metrics          Disable GET /metrics")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdfd render --in <file> --out <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one HTML or Markdown file through the same pipeline as the server.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --in <path>           Input file (\"-\" = stdin)")
	fmt.Fprintln(w, "  -o, --out <path>          Output PDF")
	fmt.Fprintln(w, "  -m, --markdown            Input is Markdown")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdfd doctor [--json] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resolve the browser executable and report the environment.")
	fmt.Fprintln(w, "Outside production this may download Chromium into the cache directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print the report as JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: html2pdfd version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: html2pdfd help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
