package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manvel7/Antd-small-test/internal/user"
	"github.com/manvel7/Antd-small-test/internal/validate"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                  `json:"valid"`
	Draft  user.Draft            `json:"draft"`
	Errors []validate.FieldError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var df *draftFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a user draft without sending it",
		Long: `Run the form validation rules over the field flags. Nothing is
sent to the API. Every field is checked, so missing flags report as
required.

Exit codes:
  0 - The draft is valid
  1 - One or more fields are invalid

Example:
  usertable validate --name Anna --age 25 --phone "+374 91 234 567" --country AM`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, df.draft(), cmd)
		},
	}
	df = addDraftFlags(cmd)

	return cmd
}

func runValidate(opts *RootOptions, d user.Draft, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	r := validate.Validate(d)
	result := ValidationResult{Valid: r.Valid, Draft: d, Errors: r.Errors()}
	f.VerboseLog("Validated %d field(s)", len(user.Fields))

	if f.Format == "json" {
		if !result.Valid {
			if err := f.Error(ErrCodeValidation, "draft is invalid", result.Errors); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "draft is invalid")
		}
		return f.Success(result)
	}

	if result.Valid {
		return f.Success("✓ Draft is valid")
	}
	for _, fe := range result.Errors {
		fmt.Fprintf(f.Writer, "✗ %s: %s\n", fe.Field, fe.Reason)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d invalid field(s)", len(result.Errors)))
}
