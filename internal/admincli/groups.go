package admincli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yatube/community/internal/services"
	"github.com/yatube/community/pkg/utils"
)

const groupListPageSize = 20

func (a *app) groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage communities",
	}
	cmd.AddCommand(a.groupCreateCmd(), a.groupListCmd(), a.groupDeleteCmd())
	return cmd
}

func (a *app) groupCreateCmd() *cobra.Command {
	var input services.GroupInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a community",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			group, err := services.NewGroupService(db).Create(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("creating group: %w", err)
			}

			if a.flagJSON {
				return a.printJSON(cmd, group)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created group %q (/group/%s)\n", group.Title, group.Slug)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "Display title (required)")
	cmd.Flags().StringVar(&input.Slug, "slug", "", "URL slug: letters, digits, - and _ (required)")
	cmd.Flags().StringVar(&input.Description, "description", "", "Short description")
	return cmd
}

func (a *app) groupListCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List communities by title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			groups, err := services.NewGroupService(db).List(cmd.Context())
			if err != nil {
				return err
			}
			items, p := utils.Paginate(groups, groupListPageSize, page)

			if a.flagJSON {
				return a.printJSON(cmd, map[string]interface{}{"data": items, "pagination": p})
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No groups found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tTITLE\tDESCRIPTION")
			for _, g := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", g.Slug, g.Title, g.Description)
			}
			w.Flush()
			if p.TotalPages > 1 {
				fmt.Fprintf(out, "Page %d of %d\n", p.Number, p.TotalPages)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page to show")
	return cmd
}

func (a *app) groupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a community; its posts stay without a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}
			if err := services.NewGroupService(db).Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting group: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s\n", args[0])
			return nil
		},
	}
}
