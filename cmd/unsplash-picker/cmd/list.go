package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/unsplash-picker/internal/config"
	"github.com/donaldgifford/unsplash-picker/internal/picker"
)

func browseCmd() *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List photos from the editorial feed",
		Example: `  unsplash-picker browse
  unsplash-picker browse --pages 3 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListing(cmd, pages, nil, func(*picker.Picker) error { return nil })
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")

	return cmd
}

func searchCmd() *cobra.Command {
	var (
		pages  int
		filter string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search Unsplash for photos",
		Example: `  unsplash-picker search "mountain lake"
  unsplash-picker search cats --filter high --select 0,2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var overrides []config.Override
			if filter != "" {
				overrides = append(overrides, func(c *config.Config) { c.Picker.ContentFilter = filter })
			}
			return runListing(cmd, pages, overrides, func(p *picker.Picker) error {
				return p.SetSearchText(args[0])
			})
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().StringVar(&filter, "filter", "", "content filter (low, high)")

	return cmd
}

func collectionCmd() *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:     "collection <id>",
		Short:   "List photos from a collection",
		Example: `  unsplash-picker collection 317099 --pages 2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListing(cmd, pages, nil, func(p *picker.Picker) error {
				return p.SetCollection(args[0])
			})
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")

	return cmd
}

// runListing loads pages from the source chosen by choose, prints them, and
// commits --select when given.
func runListing(
	cmd *cobra.Command,
	pages int,
	overrides []config.Override,
	choose func(*picker.Picker) error,
) error {
	selection, err := parseIndices(viper.GetString("select"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(overrides...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error("closing services", "error", err)
		}
	}()

	multiple := cfg.Picker.AllowsMultipleSelection || len(selection) > 1
	p, err := a.newPicker(picker.WithMultipleSelection(multiple))
	if err != nil {
		return err
	}
	defer p.Close()

	if err := choose(p); err != nil {
		return err
	}

	ctx := cmd.Context()
	for range max(pages, 1) {
		if !p.FetchNext(ctx) {
			break
		}
		if err := p.Wait(ctx); err != nil {
			return err
		}
		if st := p.Status(); st.LastError != nil {
			return fmt.Errorf("loading photos: %w", st.LastError)
		}
	}

	st := p.Status()
	out := cmd.OutOrStdout()
	if jsonOutput() {
		err = outputJSON(out, newListingView(&st))
	} else {
		err = printListing(out, cmd.ErrOrStderr(), &st)
	}
	if err != nil {
		return err
	}

	if len(selection) == 0 {
		return nil
	}
	for _, i := range selection {
		if err := p.Select(i); err != nil {
			return err
		}
	}
	photos, err := p.Commit(ctx)
	if err != nil {
		return fmt.Errorf("committing selection: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "committed %d photo(s)\n", len(photos))
	return nil
}

// parseIndices parses a comma-separated list such as "0, 2,5".
func parseIndices(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid --select index %q", part)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid --select index %d: must not be negative", n)
		}
		indices = append(indices, n)
	}
	return indices, nil
}
