package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDuplicatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "Check the saved draft against existing policies",
		Long: `Duplicates runs advisory similarity detection for the current draft
session. With a stored embedding the check is local cosine similarity;
otherwise a single AI comparison runs against a bounded candidate set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess, err := a.draftSession()
			if err != nil {
				return err
			}
			draft, ok := sess.Restore()
			if !ok {
				return fmt.Errorf("no draft session found, run 'policyhub draft' first")
			}

			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			matches := svc.CheckDuplicates(ctx, draft, a.detectOptions())
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No likely duplicates found.")
				return nil
			}

			for _, m := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "%-38s %3d  %s\n", m.Policy.ID, m.Score, m.Policy.TitleAr)
				if m.Justification != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", m.Justification)
				}
			}
			return nil
		},
	}
}
