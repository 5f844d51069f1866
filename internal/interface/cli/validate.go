package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agentwire/agentwire/internal/validator/docs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var format string
	var docPaths []string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate channel messages or documentation files",
		Long: `Without flags, validate re-checks every message in the channel file
against its declared type's schema and reports the drift. With --doc,
the given markdown documents are validated against the document
protocol instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(docPaths) > 0 {
				return runValidateDocs(docPaths, format)
			}
			return runValidateMessages(format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format (json for CI integration)")
	cmd.Flags().StringArrayVar(&docPaths, "doc", nil, "Documentation file to validate (repeatable)")
	return cmd
}

func runValidateMessages(format string) error {
	p, err := newProtocol()
	if err != nil {
		return err
	}
	report, err := p.ValidateAll()
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if report.Invalid > 0 {
			return fmt.Errorf("%d invalid message(s)", report.Invalid)
		}
		return nil
	}

	if report.Invalid == 0 {
		fmt.Printf("All %d message(s) are valid\n", report.Total)
		return nil
	}
	fmt.Printf("Found %d invalid message(s) out of %d\n", report.Invalid, report.Total)
	for _, e := range report.Errors {
		fmt.Printf("ERROR: message index=%d id=%s %s\n", e.Index, e.ID, e.Error)
	}
	return fmt.Errorf("%d invalid message(s)", report.Invalid)
}

func runValidateDocs(paths []string, format string) error {
	v := docs.NewValidator(afero.NewOsFs())
	results := make([]*docs.Result, 0, len(paths))
	failed := 0
	for _, path := range paths {
		result, err := v.ValidateFile(path)
		if err != nil {
			return err
		}
		results = append(results, result)
		if !result.Passed {
			failed++
		}
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Passed {
				fmt.Printf("OK: %s %s\n", r.File, r.Message())
			} else {
				fmt.Printf("ERROR: %s %s\n", r.File, r.Message())
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d document(s) failed validation", failed)
	}
	return nil
}
