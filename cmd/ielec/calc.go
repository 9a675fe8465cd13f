package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/esime/ielec/evaluate"
	"github.com/esime/ielec/history"
	"github.com/esime/ielec/report"
)

var errDegenerate = errors.New("degenerate input: result is not finite")

// readInput returns the JSON document named by path, or stdin for "" and "-".
func (e *env) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(e.stdin)
	}
	return os.ReadFile(path)
}

func calculatorArg(args []string) (history.Calculator, error) {
	c := history.Calculator(args[0])
	if !c.Valid() {
		return "", fmt.Errorf("unknown calculator %q (use %s)", args[0], strings.Join(history.CalculatorNames(), ", "))
	}
	return c, nil
}

func newCalcCmd(e *env) *cobra.Command {
	var (
		input  string
		format string
		locale string
	)
	cmd := &cobra.Command{
		Use:   "calc " + strings.Join(history.CalculatorNames(), "|"),
		Short: "Run a calculator on a JSON input",
		Long: `Reads the calculator input as JSON (from --input or stdin) and prints
the result. Omitted conductor fields take the form defaults.`,
		Example: `  echo '{"power":3500,"voltage":127}' | ielec calc conductor
  ielec calc cavity --input sala.json --format text`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: history.CalculatorNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := calculatorArg(args)
			if err != nil {
				return err
			}
			data, err := e.readInput(input)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			ev, err := evaluate.Run(c, data)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				if !ev.Finite {
					return errDegenerate
				}
				enc := json.NewEncoder(e.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(ev.Result)
			case "text":
				loc, err := report.NewLocale(locale)
				if err != nil {
					return err
				}
				doc, err := ev.Document(time.Now(), loc)
				if err != nil {
					return err
				}
				fmt.Fprintln(e.stdout, report.PlainText(doc, loc))
				if !ev.Finite {
					return errDegenerate
				}
				return nil
			}
			return fmt.Errorf("unknown format %q (use json or text)", format)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input JSON file (default: stdin)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or text")
	cmd.Flags().StringVar(&locale, "locale", report.DefaultLocale, "Number and date locale for text output")
	return cmd
}

func newReportCmd(e *env) *cobra.Command {
	var (
		input  string
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "report " + strings.Join(history.CalculatorNames(), "|"),
		Short: "Render a calculation as a PDF, HTML, Markdown or text document",
		Long: `Reads the calculator input as JSON (from --input or stdin) and writes
the report to --output (default: stdout). Organization, logo and locale
come from the report section of the configuration when one is found.`,
		Example:   `  ielec report conductor --input circuito.json --output circuito.pdf`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: history.CalculatorNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := calculatorArg(args)
			if err != nil {
				return err
			}
			cfg, err := e.loadConfig(false)
			if err != nil {
				return err
			}
			loc, err := report.NewLocale(cfg.Report.Locale)
			if err != nil {
				return err
			}
			var logo []byte
			if cfg.Report.Logo != "" {
				if logo, err = os.ReadFile(cfg.Report.Logo); err != nil {
					return fmt.Errorf("reading report logo: %w", err)
				}
			}

			data, err := e.readInput(input)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			ev, err := evaluate.Run(c, data)
			if err != nil {
				return err
			}
			doc, err := ev.Document(time.Now(), loc)
			if err != nil {
				return err
			}

			w := e.stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "pdf":
				return report.PDF(w, doc, report.Options{
					Organization: cfg.Report.Organization,
					Logo:         logo,
					Locale:       loc,
					Plot:         true,
				})
			case "html":
				return report.HTML(w, doc, loc)
			case "md":
				_, err = io.WriteString(w, report.Markdown(doc, loc))
				return err
			case "txt":
				_, err = fmt.Fprintln(w, report.PlainText(doc, loc))
				return err
			}
			return fmt.Errorf("unknown format %q (use pdf, html, md or txt)", format)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input JSON file (default: stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "Document format: pdf, html, md or txt")
	return cmd
}
