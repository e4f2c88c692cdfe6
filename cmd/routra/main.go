package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦═╗┌─┐┬ ┬┌┬┐┬─┐┌─┐
  ╠╦╝│ ││ │ │ ├┬┘├─┤
  ╩╚═└─┘└─┘ ┴ ┴└─┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "routra",
		Short: "Convention-based view dispatch for Go web apps",
		Long: `Routra routes URLs to view functions by convention.

URLs of the form /app/page.function/param1/param2 resolve to
registered view functions, falling back to page templates when no
function exists. Features include:

  • Convention-based URL routing (app/page.function)
  • Typed URL parameter conversion
  • Class-based views routed by HTTP method
  • Internal and external redirect outcomes
  • Template fallback with hot reload in development`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		checkCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Routra ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
