package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innovagov/policyhub/filestore"
)

func newAttachCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <path-or-pattern>...",
		Short: "Upload attachments and add their URLs to the saved draft",
		Long: `Attach stores files in the attachment store and records their URLs on
the current draft session. Arguments may be plain paths or doublestar
patterns like 'docs/**/*.pdf'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.draftSession()
			if err != nil {
				return err
			}
			draft, ok := sess.Restore()
			if !ok {
				return fmt.Errorf("no draft session found, run 'policyhub draft' first")
			}

			store, err := filestore.New(a.cfg.Store.AttachmentsDir, filestore.WithLogger(a.logger))
			if err != nil {
				return err
			}

			for _, arg := range args {
				urls, err := store.UploadGlob(arg)
				if err != nil {
					return err
				}
				if len(urls) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No files matched %s\n", arg)
					continue
				}
				draft.AttachmentURLs = append(draft.AttachmentURLs, urls...)
				for _, u := range urls {
					fmt.Fprintln(cmd.OutOrStdout(), u)
				}
			}

			sess.Update(*draft)
			return sess.SaveNow()
		},
	}
}
