package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manvel7/Antd-small-test/internal/app"
	"github.com/manvel7/Antd-small-test/internal/confirm"
	"github.com/manvel7/Antd-small-test/internal/table"
	"github.com/manvel7/Antd-small-test/internal/user"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Page int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users one table page at a time",
		Long: `Fetch the users list and print one page of the table.

Examples:
  usertable list
  usertable list --page 2
  usertable list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number (1-based)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer dumpState(f, a)

	a.Table.SetPage(opts.Page)
	view, err := a.Load(cmd.Context())
	if err != nil {
		return reportError(f, err)
	}

	if f.Format == "json" {
		return f.Success(view)
	}
	writeTable(f.Writer, view.Rows)
	if view.Total == 0 {
		fmt.Fprintln(f.Writer, view.EmptyText)
		return nil
	}
	fmt.Fprintf(f.Writer, "Page %d of %d (%d users)\n", view.Page, view.TotalPages, view.Total)
	return nil
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search users by name, phone or country",
		Args:  cobra.ExactArgs(1),
		Example: `  usertable search anna
  usertable search +374`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return err
			}
			records, err := a.Client.Search(cmd.Context(), args[0])
			if err != nil {
				return reportError(f, err)
			}
			if f.Format == "json" {
				return f.Success(records)
			}
			rows := make([]table.Row, 0, len(records))
			for _, r := range records {
				rows = append(rows, table.Row{
					Key: r.ID, Name: r.Name, Age: r.Age, Phone: r.Phone,
					Country: r.Country, CountryName: user.CountryName(r.Country),
				})
			}
			writeTable(f.Writer, rows)
			fmt.Fprintf(f.Writer, "%d match(es)\n", len(records))
			return nil
		},
	}
	return cmd
}

// writeTable renders rows as aligned columns.
func writeTable(w io.Writer, rows []table.Row) {
	if len(rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tAGE\tPHONE\tCOUNTRY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.Key, r.Name, r.Age, r.Phone, r.CountryName)
	}
	tw.Flush()
}

// draftFlags binds one flag per form field.
type draftFlags struct {
	values map[user.Field]*string
}

func addDraftFlags(cmd *cobra.Command) *draftFlags {
	df := &draftFlags{values: make(map[user.Field]*string)}
	for _, d := range user.Descriptors() {
		df.values[d.Field] = cmd.Flags().String(string(d.Field), "", d.Label)
	}
	return df
}

// apply copies the flags that were set into the session, in form order.
func (df *draftFlags) apply(cmd *cobra.Command, a *app.App) error {
	for _, f := range user.Fields {
		if !cmd.Flags().Changed(string(f)) {
			continue
		}
		if err := a.SetField(f, *df.values[f]); err != nil {
			return err
		}
	}
	return nil
}

// draft returns the flag values as a draft.
func (df *draftFlags) draft() user.Draft {
	var d user.Draft
	for _, f := range user.Fields {
		d, _ = d.Set(f, *df.values[f])
	}
	return d
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var df *draftFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Fill in the create form from flags and submit it.

The draft is validated before anything is sent. On success the
users list is fetched again.

Example:
  usertable create --name "Anna" --age 25 --phone "+374 91 234 567" --country AM`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return err
			}
			defer dumpState(f, a)

			if err := a.OpenCreate(); err != nil {
				return reportError(f, err)
			}
			if err := df.apply(cmd, a); err != nil {
				return reportError(f, err)
			}
			rec, err := a.Submit(cmd.Context())
			if err != nil {
				return reportError(f, err)
			}
			if f.Format == "json" {
				return f.Success(rec)
			}
			return f.Success(fmt.Sprintf("Created user %s (%s)", rec.ID, rec.Name))
		},
	}
	df = addDraftFlags(cmd)

	return cmd
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	var df *draftFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a user",
		Long: `Open the edit form for a user, change the fields given as flags
and submit it. Fields without a flag keep their current value.

Example:
  usertable edit u-1 --age 26`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd)
			if err != nil {
				return err
			}
			defer dumpState(f, a)

			if _, err := a.Load(cmd.Context()); err != nil {
				return reportError(f, err)
			}
			if err := a.OpenEdit(args[0]); err != nil {
				return reportError(f, err)
			}
			if err := df.apply(cmd, a); err != nil {
				return reportError(f, err)
			}
			rec, err := a.Submit(cmd.Context())
			if err != nil {
				return reportError(f, err)
			}
			if f.Format == "json" {
				return f.Success(rec)
			}
			return f.Success(fmt.Sprintf("Updated user %s (%s)", rec.ID, rec.Name))
		},
	}
	df = addDraftFlags(cmd)

	return cmd
}

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Yes bool
}

// DeleteResult is the JSON payload of the delete command.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user after confirmation",
		Long: `Delete a user. The confirmation dialog is shown as a prompt on
stdin unless --yes is given.

Exit codes:
  0 - Deleted, or the confirmation was declined
  1 - The delete failed

Example:
  usertable delete u-2
  usertable delete u-2 --yes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm without prompting")

	return cmd
}

func runDelete(opts *DeleteOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	var a *app.App
	present := func(d confirm.Dialog) {
		var err error
		if opts.Yes || promptConfirm(cmd.InOrStdin(), f.GetErrWriter(), d) {
			err = a.Gate.Accept()
		} else {
			err = a.Gate.Reject()
		}
		if err != nil {
			f.VerboseLog("confirmation answer ignored: %v", err)
		}
	}

	a, err := opts.openApp(cmd, app.WithPresenter(present))
	if err != nil {
		return err
	}
	defer dumpState(f, a)

	if _, err := a.Load(cmd.Context()); err != nil {
		return reportError(f, err)
	}
	deleted, err := a.Delete(cmd.Context(), id)
	if err != nil {
		return reportError(f, err)
	}

	if f.Format == "json" {
		return f.Success(DeleteResult{ID: id, Deleted: deleted})
	}
	if !deleted {
		return f.Success("Delete cancelled")
	}
	return f.Success("Deleted user " + id)
}

// promptConfirm shows the dialog on w and reads a yes/no answer from r.
// Anything but y or yes declines.
func promptConfirm(r io.Reader, w io.Writer, d confirm.Dialog) bool {
	fmt.Fprintf(w, "%s: %s [y/N]: ", d.Options.Title, d.Options.Message)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
