package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file,
USERTABLE_* environment variables and flags are applied.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			cfg, err := rootOpts.loadConfig(cmd)
			if err != nil {
				if outErr := f.Error(ErrCodeConfig, err.Error(), nil); outErr != nil {
					return outErr
				}
				return err
			}
			if f.Format == "json" {
				return f.Success(cfg)
			}

			tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "api_base_url\t%s\n", cfg.APIBaseURL)
			fmt.Fprintf(tw, "api_timeout_ms\t%d\n", cfg.APITimeoutMS)
			fmt.Fprintf(tw, "environment\t%s\n", cfg.Environment)
			fmt.Fprintf(tw, "enable_logging\t%t\n", cfg.EnableLogging)
			fmt.Fprintf(tw, "enable_dev_tools\t%t\n", cfg.EnableDevTools)
			fmt.Fprintf(tw, "page_size\t%d\n", cfg.PageSize)
			fmt.Fprintf(tw, "server.addr\t%s\n", cfg.Server.Addr)
			fmt.Fprintf(tw, "server.db_path\t%s\n", cfg.Server.DBPath)
			fmt.Fprintf(tw, "server.base_path\t%s\n", cfg.Server.BasePath)
			return tw.Flush()
		},
	}
}
