package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect generated draft history",
}

// -- drafts list --

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored drafts, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openDraftStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company, _ := cmd.Flags().GetString("company")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		drafts, err := st.ListDrafts(ctx, store.DraftFilter{Company: company, Limit: limit, Offset: offset})
		if err != nil {
			return eris.Wrap(err, "drafts list")
		}

		if len(drafts) == 0 {
			fmt.Fprintln(os.Stderr, "No drafts found.")
			return nil
		}

		formatDraftsList(os.Stdout, drafts)
		return nil
	},
}

// -- drafts show --

var draftsShowCmd = &cobra.Command{
	Use:   "show <draft-id>",
	Short: "Show a stored draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openDraftStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec, err := st.GetDraft(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "drafts show")
		}

		body, _ := cmd.Flags().GetBool("body")
		if body {
			fmt.Fprintf(os.Stdout, "Subject: %s\n\n%s\n", rec.Draft.Subject, rec.Draft.Body)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	draftsListCmd.Flags().String("company", "", "filter by company name")
	draftsListCmd.Flags().Int("limit", 50, "max number of drafts to display")
	draftsListCmd.Flags().Int("offset", 0, "number of drafts to skip")

	draftsShowCmd.Flags().Bool("body", false, "print only the subject and email body")

	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsShowCmd)
	rootCmd.AddCommand(draftsCmd)
}

// openDraftStore opens the configured history store.
func openDraftStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("drafts: store driver is none, history is disabled")
	}
	return st, nil
}

// formatDraftsList writes a tabular list of drafts to out.
func formatDraftsList(out io.Writer, drafts []model.DraftRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tCEO\tGENERATED_BY\tCACHE\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t-------\t---\t------------\t-----\t-------\t--------")

	for _, d := range drafts {
		ceo := d.Facts.CEOName
		if ceo == "" {
			ceo = d.Facts.FounderName
		}
		if ceo == "" {
			ceo = "-"
		}
		cacheHit := ""
		if d.CacheHit {
			cacheHit = "hit"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%dms\n",
			truncateID(d.ID),
			truncate(d.CompanyName, 30),
			ceo,
			d.Draft.GeneratedBy,
			cacheHit,
			d.CreatedAt.Format("2006-01-02 15:04"),
			d.DurationMS,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
