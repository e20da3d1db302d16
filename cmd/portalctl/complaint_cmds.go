package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/complaint-portal/internal/api"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/table"
)

var complaintColumns = []column{
	{Title: "REF", Field: "reference_key"},
	{Title: "SUBJECT", Field: "subject"},
	{Title: "STATUS", Field: "status_id"},
	{Title: "PRIORITY", Field: "priority_id"},
	{Title: "CATEGORY", Field: "category_id"},
	{Title: "CREATED", Field: "created_at"},
}

func (a *app) complaintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complaint",
		Short: "Work with complaints",
	}
	cmd.AddCommand(
		a.complaintListCmd(),
		a.complaintShowCmd(),
		a.complaintCreateCmd(),
		a.complaintCommentCmd(),
		a.complaintCloseCmd(),
		a.complaintAttachCmd(),
		a.complaintAttachmentsCmd(),
	)
	return cmd
}

func (a *app) complaintListCmd() *cobra.Command {
	var (
		statuses   []string
		categories []string
		department string
		search     string
		page       int
		pageSize   int
		local      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List complaints",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := api.ComplaintListQuery{
				StatusIDs:    statuses,
				CategoryIDs:  categories,
				DepartmentID: department,
				Page:         page,
				PageSize:     pageSize,
			}
			if !local {
				query.Search = search
			}

			result, err := a.complaints.List(cmd.Context(), query)
			if err != nil {
				return err
			}

			rows, err := table.ToRows(result.Complaints)
			if err != nil {
				return err
			}

			var t *table.Table
			if local {
				// Full client-side mode: search and slice the fetched set.
				t = table.New(rows, table.Config{
					SearchFields: []string{"subject", "description", "reference_key"},
					PageSize:     pageSize,
				})
				t.SetSearch(search)
			} else {
				// Server already paged; render the page as-is.
				t = table.NewExternal(rows, result.Meta.Page, result.Meta.PageSize, result.Meta.Total)
			}

			fmt.Print(renderTable(t, complaintColumns))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by status id (repeatable)")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "filter by category id (repeatable)")
	cmd.Flags().StringVar(&department, "department", "", "filter by department id")
	cmd.Flags().StringVar(&search, "search", "", "free-text search")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "rows per page")
	cmd.Flags().BoolVar(&local, "local", false, "filter and page client-side")
	return cmd
}

func (a *app) complaintShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one complaint with its thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			complaint, err := a.complaints.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printComplaint(complaint)
			return nil
		},
	}
}

func (a *app) complaintCreateCmd() *cobra.Command {
	var req api.CreateComplaintRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new complaint",
		RunE: func(cmd *cobra.Command, args []string) error {
			complaint, err := a.complaints.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("created %s (%s)\n", complaint.ReferenceKey, complaint.ID)
			if complaint.TrackingToken != nil {
				fmt.Println(notice("tracking token (keep it safe): %s", *complaint.TrackingToken))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Subject, "subject", "", "short summary")
	cmd.Flags().StringVar(&req.Description, "description", "", "full description")
	cmd.Flags().StringVar(&req.CategoryID, "category", "", "category id")
	cmd.Flags().StringVar(&req.DepartmentID, "department", "", "department id")
	cmd.Flags().StringVar(&req.PriorityID, "priority", "", "priority id")
	cmd.Flags().BoolVar(&req.Anonymous, "anonymous", false, "submit anonymously with a tracking token")
	return cmd
}

func (a *app) complaintCommentCmd() *cobra.Command {
	var internal bool

	cmd := &cobra.Command{
		Use:   "comment <id> <body>",
		Short: "Add a comment to a complaint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comment, err := a.complaints.AddComment(cmd.Context(), args[0], api.AddCommentRequest{
				Body:     args[1],
				Internal: internal,
			})
			if err != nil {
				return err
			}
			fmt.Printf("comment %s added\n", comment.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&internal, "internal", false, "visible to officers only")
	return cmd
}

func (a *app) complaintCloseCmd() *cobra.Command {
	var statusID string

	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Resolve a complaint (officer and above)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.store.Current().HasRole(domain.RoleDepartmentOfficer) {
				return fmt.Errorf("requires at least role %s", domain.RoleDepartmentOfficer)
			}
			complaint, err := a.complaints.Update(cmd.Context(), args[0], api.UpdateComplaintRequest{
				StatusID: &statusID,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", complaint.ReferenceKey, complaint.StatusID)
			return nil
		},
	}

	cmd.Flags().StringVar(&statusID, "status", "st-resolved", "terminal status id")
	return cmd
}

func (a *app) complaintAttachCmd() *cobra.Command {
	var mimeType string

	cmd := &cobra.Command{
		Use:   "attach <id> <file>",
		Short: "Upload a file attachment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			attachment, err := a.attachments.UploadFile(cmd.Context(), args[0], args[1], mimeType,
				func(sent, total int64) {
					if total > 0 {
						fmt.Printf("\ruploading... %d%%", sent*100/total)
					}
				})
			if err != nil {
				fmt.Println()
				return err
			}
			fmt.Printf("\ruploaded %s (%d bytes)\n", attachment.FileName, attachment.SizeBytes)
			return nil
		},
	}

	cmd.Flags().StringVar(&mimeType, "mime-type", "application/octet-stream", "content type of the file")
	return cmd
}

func (a *app) complaintAttachmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attachments <id>",
		Short: "List attachments on a complaint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attachments, err := a.attachments.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows, err := table.ToRows(attachments)
			if err != nil {
				return err
			}
			t := table.New(rows, table.Config{PageSize: 50})
			fmt.Print(renderTable(t, []column{
				{Title: "ID", Field: "id"},
				{Title: "FILE", Field: "file_name"},
				{Title: "TYPE", Field: "mime_type"},
				{Title: "SIZE", Field: "size_bytes"},
			}))
			return nil
		},
	}
}

func printComplaint(complaint domain.Complaint) {
	fmt.Printf("%s  %s\n", complaint.ReferenceKey, complaint.Subject)
	fmt.Printf("status=%s priority=%s category=%s department=%s\n",
		complaint.StatusID, complaint.PriorityID, complaint.CategoryID, complaint.DepartmentID)
	if complaint.Anonymous {
		fmt.Println("submitted anonymously")
	}
	fmt.Printf("\n%s\n", complaint.Description)
	if len(complaint.Comments) > 0 {
		fmt.Println("\ncomments:")
		for _, comment := range complaint.Comments {
			marker := ""
			if comment.Internal {
				marker = " [internal]"
			}
			fmt.Printf("  %s%s: %s\n", comment.AuthorName, marker, comment.Body)
		}
	}
	if len(complaint.Attachments) > 0 {
		fmt.Println("\nattachments:")
		for _, att := range complaint.Attachments {
			fmt.Printf("  %s (%d bytes)\n", att.FileName, att.SizeBytes)
		}
	}
}
