package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/innovagov/policyhub/policy"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all policy records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			policies, err := svc.List(ctx)
			if err != nil {
				return err
			}
			sort.Slice(policies, func(i, j int) bool {
				return policies[i].CreatedAt.Before(policies[j].CreatedAt)
			})

			for _, p := range policies {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-20s %s\n", p.Code, p.Status, p.TitleAr)
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one policy record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			p, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
}

func newTransitionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transition <id> <status>",
		Short: "Move a policy to a new lifecycle status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			p, err := svc.Transition(ctx, args[0], policy.Status(args[1]))
			if err != nil {
				// Help the operator with the legal moves.
				if current, getErr := svc.Get(ctx, args[0]); getErr == nil {
					next := policy.NextStatuses(current.Status)
					if len(next) > 0 {
						return fmt.Errorf("%w (from %s you can move to: %s)",
							err, current.Status, joinStatuses(next))
					}
					return fmt.Errorf("%w (%s is a terminal status)", err, current.Status)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", p.Code, p.Status)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a policy record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			if err := svc.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func joinStatuses(statuses []policy.Status) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
