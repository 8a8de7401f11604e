package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/innovagov/policyhub/policy"
)

func newSubmitCmd(a *app) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Create a policy record from the saved draft",
		Long: `Submit runs the blocking create flow: validation, Arabic to English
translation, and persistence. If translation fails nothing is created
and the draft session is preserved. On success the session is cleared
and the embedding pipeline is triggered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var draft *policy.Draft
			sess, err := a.draftSession()
			if err != nil {
				return err
			}

			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read draft file: %w", err)
				}
				draft = &policy.Draft{}
				if err := json.Unmarshal(data, draft); err != nil {
					return fmt.Errorf("parse draft file: %w", err)
				}
			} else {
				restored, ok := sess.Restore()
				if !ok {
					return fmt.Errorf("no draft session found, run 'policyhub draft' first")
				}
				draft = restored
			}

			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			p, err := svc.Create(ctx, draft)
			if err != nil {
				// The draft session survives every failure.
				return fmt.Errorf("%s: %w", policy.UserMessage(err), err)
			}

			if fromFile == "" {
				if err := sess.Complete(); err != nil {
					a.logger.Warn("Clearing draft session failed", "error", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", p.Code, p.ID)
			return printJSON(cmd, p)
		},
	}

	cmd.Flags().StringVar(&fromFile, "file", "", "Submit a draft JSON file instead of the saved session")
	return cmd
}
