package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/table"
)

func (a *app) trackCmd() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "track <token>",
		Short: "View an anonymous submission by tracking token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if comment != "" {
				added, err := a.tracking.AddComment(cmd.Context(), args[0], comment)
				if err != nil {
					return err
				}
				fmt.Printf("comment %s added\n", added.ID)
				return nil
			}

			complaint, err := a.tracking.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printComplaint(complaint)
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "add a reply instead of viewing")
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	return a.referenceCmd("categories", "List complaint categories",
		[]column{{Title: "ID", Field: "id"}, {Title: "NAME", Field: "name"}, {Title: "ACTIVE", Field: "is_active"}},
		func(cmd *cobra.Command) (any, error) { return a.reference.Categories(cmd.Context()) })
}

func (a *app) statusesCmd() *cobra.Command {
	return a.referenceCmd("statuses", "List complaint statuses",
		[]column{{Title: "ID", Field: "id"}, {Title: "NAME", Field: "name"}, {Title: "TERMINAL", Field: "terminal"}},
		func(cmd *cobra.Command) (any, error) { return a.reference.Statuses(cmd.Context()) })
}

func (a *app) prioritiesCmd() *cobra.Command {
	return a.referenceCmd("priorities", "List active complaint priorities",
		[]column{{Title: "ID", Field: "id"}, {Title: "NAME", Field: "name"}, {Title: "WEIGHT", Field: "weight"}},
		func(cmd *cobra.Command) (any, error) { return a.reference.ActivePriorities(cmd.Context()) })
}

func (a *app) departmentsCmd() *cobra.Command {
	return a.referenceCmd("departments", "List departments",
		[]column{{Title: "ID", Field: "id"}, {Title: "NAME", Field: "name"}, {Title: "ACTIVE", Field: "is_active"}},
		func(cmd *cobra.Command) (any, error) { return a.reference.Departments(cmd.Context()) })
}

func (a *app) referenceCmd(use, short string, columns []column, fetch func(*cobra.Command) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := fetch(cmd)
			if err != nil {
				return err
			}
			rows, err := table.ToRows(items)
			if err != nil {
				return err
			}
			t := table.New(rows, table.Config{PageSize: 50})
			fmt.Print(renderTable(t, columns))
			return nil
		},
	}
}

func (a *app) dashboardCmd() *cobra.Command {
	var roleName string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the role-scoped dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := a.store.Current()
			if !state.IsAuthenticated {
				return fmt.Errorf("not logged in")
			}

			role := state.User.Role
			if roleName != "" {
				parsed, err := domain.ParseRole(roleName)
				if err != nil {
					return err
				}
				role = parsed
			}
			if !state.HasRole(role) {
				return fmt.Errorf("requires at least role %s", role)
			}

			summary, err := a.dashboard.Summary(cmd.Context(), role)
			if err != nil {
				return err
			}

			fmt.Printf("dashboard (%s)\n", summary.Role)
			fmt.Printf("open=%d resolved=%d overdue=%d\n", summary.OpenCount, summary.ResolvedCount, summary.OverdueCount)
			printBreakdown("by status", summary.ByStatus)
			printBreakdown("by category", summary.ByCategory)
			return nil
		},
	}

	cmd.Flags().StringVar(&roleName, "role", "", "dashboard role (defaults to your own)")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <it|hr>",
		Short: "Fetch the IT or HR report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			state := a.store.Current()
			required := domain.RoleITOfficer
			if kind == "hr" {
				required = domain.RoleHRAdmin
			}
			if !state.HasRole(required) {
				return fmt.Errorf("requires at least role %s", required)
			}

			report, err := a.dashboard.Report(cmd.Context(), kind)
			if err != nil {
				return err
			}

			fmt.Printf("%s report, generated %s\n", report.Kind, report.GeneratedAt.Format("2006-01-02 15:04"))
			printBreakdown("totals", report.Totals)
			if len(report.Rows) > 0 {
				t := table.New(report.Rows, table.Config{PageSize: 50})
				fmt.Print(renderTable(t, []column{
					{Title: "REF", Field: "reference"},
					{Title: "SUBJECT", Field: "subject"},
					{Title: "STATUS", Field: "status_id"},
				}))
			}
			return nil
		},
	}
}

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change UI preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("sidebar collapsed: %v\n", a.store.Current().SidebarCollapsed)
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "sidebar <collapsed|expanded>",
		Short: "Set the sidebar preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "collapsed":
				a.store.SetSidebarCollapsed(true)
			case "expanded":
				a.store.SetSidebarCollapsed(false)
			default:
				return fmt.Errorf("expected collapsed or expanded, got %q", args[0])
			}
			return nil
		},
	}
	cmd.AddCommand(toggle)
	return cmd
}

func printBreakdown(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, counts[k])
	}
}
