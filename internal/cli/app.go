package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manvel7/Antd-small-test/internal/app"
	"github.com/manvel7/Antd-small-test/internal/client"
	"github.com/manvel7/Antd-small-test/internal/session"
	"github.com/manvel7/Antd-small-test/internal/table"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric    = "E001"
	ErrCodeConfig     = "E002"
	ErrCodeValidation = "E100"
	ErrCodeNotFound   = "E101"
	ErrCodeConflict   = "E102"
	ErrCodeAPI        = "E200"
	ErrCodeNetwork    = "E201"
	ErrCodeTimeout    = "E202"
)

var lookupEnv = os.LookupEnv

// openApp loads the config and builds the app for a remote command.
func (o *RootOptions) openApp(cmd *cobra.Command, opts ...app.Option) (*app.App, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	opts = append([]app.Option{app.WithLogger(slog.Default())}, opts...)
	a, err := app.New(cfg, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to start", err)
	}
	slog.Debug("app configured", "api_base_url", cfg.APIBaseURL, "timeout", cfg.Timeout())
	return a, nil
}

// dumpState prints the app's debug state to stderr when dev tools are on.
func dumpState(f *OutputFormatter, a *app.App) {
	if !a.Config.EnableDevTools {
		return
	}
	data, err := json.MarshalIndent(a.State(), "", "  ")
	if err != nil {
		slog.Warn("dev tools state unavailable", "error", err)
		return
	}
	fmt.Fprintf(f.GetErrWriter(), "[dev-tools] state:\n%s\n", data)
}

// reportError prints err in the configured format and returns an ExitError
// carrying ExitFailure.
func reportError(f *OutputFormatter, err error) error {
	code, message, details := classifyError(err)
	if outErr := f.Error(code, message, details); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, message, err)
}

// classifyError maps a lifecycle error onto a CLI error code, a short
// message and optional details.
func classifyError(err error) (string, string, any) {
	if result, ok := session.IsInvalidDraft(err); ok {
		fields := make(map[string]string)
		var parts []string
		for _, fe := range result.Errors() {
			fields[string(fe.Field)] = fe.Reason
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Reason))
		}
		return ErrCodeValidation, "invalid user: " + strings.Join(parts, "; "), fields
	}

	var apiErr *client.APIError
	switch {
	case errors.Is(err, table.ErrRowNotFound):
		return ErrCodeNotFound, "user not found", nil
	case client.IsConflict(err):
		return ErrCodeConflict, "user no longer exists on the server; list again and retry", nil
	case client.IsTimeout(err):
		return ErrCodeTimeout, err.Error(), nil
	case client.IsNetworkError(err):
		return ErrCodeNetwork, err.Error(), nil
	case errors.As(err, &apiErr):
		details := map[string]any{"status": apiErr.Status}
		if apiErr.Code != "" {
			details["code"] = apiErr.Code
		}
		if len(apiErr.Fields) > 0 {
			details["fields"] = apiErr.Fields
		}
		return ErrCodeAPI, apiErr.Message, details
	default:
		return ErrCodeGeneric, err.Error(), nil
	}
}
