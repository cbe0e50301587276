package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/unsplash-picker/internal/api/client"
	"github.com/donaldgifford/unsplash-picker/internal/api/handlers"
)

func remoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Drive a running picker server",
		Long: "Commands that talk to the HTTP API started by serve. The server keeps\n" +
			"the session, so successive commands page through the same listing.",
	}

	cmd.PersistentFlags().String("server", "http://localhost:8080", "picker API server URL")
	cobra.CheckErr(viper.BindPFlag("server", cmd.PersistentFlags().Lookup("server")))

	cmd.AddCommand(remoteStatusCmd())
	cmd.AddCommand(remotePhotoCmd())
	cmd.AddCommand(remoteSearchCmd())
	cmd.AddCommand(remoteCollectionCmd())
	cmd.AddCommand(remoteFetchCmd("next", "Load the next page", (*apiclient.Client).FetchNext))
	cmd.AddCommand(remoteFetchCmd("refresh", "Reload the first page of an empty listing", (*apiclient.Client).Refresh))
	cmd.AddCommand(remoteCancelFetchCmd())
	cmd.AddCommand(remoteSelectCmd())
	cmd.AddCommand(remoteDismissCmd())
	cmd.AddCommand(remoteQuotaCmd())

	return cmd
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func showStatus(cmd *cobra.Command, st *handlers.StatusBody, offset int) error {
	if jsonOutput() {
		return outputJSON(cmd.OutOrStdout(), st)
	}
	return printRemoteStatus(cmd.OutOrStdout(), cmd.ErrOrStderr(), st, offset)
}

func remoteStatusCmd() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the loaded photos and paging state",
		Example: `  unsplash-picker remote status
  unsplash-picker remote status --offset 20 --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := newClient().Status(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}
			return showStatus(cmd, st, offset)
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "index of the first photo shown")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum photos shown, 0 for all")

	return cmd
}

func remotePhotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "photo <index>",
		Short: "Show one loaded photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[0])
			if err != nil || i < 0 {
				return fmt.Errorf("invalid index %q", args[0])
			}
			p, err := newClient().Photo(cmd.Context(), i)
			if err != nil {
				return err
			}
			return outputJSON(cmd.OutOrStdout(), p)
		},
	}
}

func remoteSearchCmd() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search photos, or return to the editorial feed with an empty query",
		Example: `  unsplash-picker remote search "mountain lake" --wait
  unsplash-picker remote search ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newClient().Search(cmd.Context(), args[0], wait)
			if err != nil {
				return err
			}
			return showStatus(cmd, st, 0)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", true, "wait for the first page")

	return cmd
}

func remoteCollectionCmd() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "collection <id>",
		Short: "Show the photos of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newClient().Collection(cmd.Context(), args[0], wait)
			if err != nil {
				return err
			}
			return showStatus(cmd, st, 0)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", true, "wait for the first page")

	return cmd
}

type fetchFunc func(*apiclient.Client, context.Context, bool) (*apiclient.FetchResult, error)

func remoteFetchCmd(use, short string, fetch fetchFunc) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := fetch(newClient(), cmd.Context(), wait)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), res)
			}
			if !res.Started {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing to fetch")
			}
			return printRemoteStatus(cmd.OutOrStdout(), cmd.ErrOrStderr(), &res.Status, 0)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", true, "wait for the page")

	return cmd
}

func remoteCancelFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-fetch",
		Short: "Abandon the page being loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := newClient().CancelFetch(cmd.Context())
			if err != nil {
				return err
			}
			return showStatus(cmd, st, 0)
		},
	}
}

func remoteSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "select <index>...",
		Short:   "Select photos by index and commit them",
		Example: `  unsplash-picker remote select 0 4 7`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices := make([]int, 0, len(args))
			for _, a := range args {
				i, err := strconv.Atoi(a)
				if err != nil || i < 0 {
					return fmt.Errorf("invalid index %q", a)
				}
				indices = append(indices, i)
			}

			photos, err := newClient().Commit(cmd.Context(), indices)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), photos)
			}
			if err := printPhotoTable(cmd.OutOrStdout(), photos, 0); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "committed %d photo(s)\n", len(photos))
			return err
		},
	}
}

func remoteDismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss",
		Short: "Dismiss the picker without a selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := newClient().Cancel(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.ErrOrStderr(), "picker dismissed")
			return err
		},
	}
}

func remoteQuotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show the server's Unsplash API quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := newClient().Quota(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), q)
			}
			tw := newTabWriter(cmd.OutOrStdout())
			tw.writef("LIMIT\tUSED\tREMAINING\tRESETS\n")
			tw.writef("%d\t%d\t%d\t%s\n", q.HourlyLimit, q.HourlyUsed, q.Remaining, q.ResetAt.Local().Format(time.Kitchen))
			return tw.finish()
		},
	}
}
