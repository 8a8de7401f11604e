package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/innovagov/policyhub/assistant"
	"github.com/innovagov/policyhub/policy"
	"github.com/innovagov/policyhub/refsource"
)

func newDraftCmd(a *app) *cobra.Command {
	var (
		title string
		links []string
		refs  []string
	)

	cmd := &cobra.Command{
		Use:   "draft [notes...]",
		Short: "Generate or complete a policy draft with AI assistance",
		Long: `Draft merges AI-generated content into the saved draft session,
filling only fields the operator has not already set. Notes are free
text in Arabic or English; --ref URLs are fetched and summarized as
drafting context.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess, err := a.draftSession()
			if err != nil {
				return err
			}
			draft := policy.Draft{}
			if restored, ok := sess.Restore(); ok {
				draft = *restored
			}
			if title != "" {
				draft.TitleAr = title
			}
			for _, link := range links {
				ref, err := parseLink(link)
				if err != nil {
					return err
				}
				draft.LinkedEntities = append(draft.LinkedEntities, ref)
			}

			notes := strings.Join(args, " ")
			if len(refs) > 0 {
				resolver := refsource.NewResolver(refsource.NewFetcher(0, 0), a.logger)
				for _, r := range resolver.ResolveAll(ctx, refs) {
					notes += "\n" + r.Summarize()
				}
			}

			result, err := assistant.New(a.invoker(), a.logger).Assist(ctx, draft, notes, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", policy.UserMessage(err), err)
			}

			sess.Update(result.Draft)
			if err := sess.SaveNow(); err != nil {
				return fmt.Errorf("save draft: %w", err)
			}

			if result.AdvancedStage {
				fmt.Fprintln(os.Stderr, "Draft is now structured; review the generated fields before submitting.")
			}
			return printJSON(cmd, result.Draft)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Arabic policy title")
	cmd.Flags().StringArrayVar(&links, "link", nil, "Linked entity as type:id (challenge, pilot, rd_project, program)")
	cmd.Flags().StringArrayVar(&refs, "ref", nil, "Reference URL to fetch as drafting context (HTTPS only)")
	return cmd
}

// parseLink parses a type:id pair into a LinkRef.
func parseLink(s string) (policy.LinkRef, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return policy.LinkRef{}, fmt.Errorf("invalid link %q, expected type:id", s)
	}
	ref := policy.LinkRef{Type: policy.EntityType(parts[0]), ID: parts[1]}
	if !policy.ValidEntityType(ref.Type) {
		return policy.LinkRef{}, fmt.Errorf("unknown linked entity type %q", parts[0])
	}
	return ref, nil
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
