package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/session"
	"github.com/spec-kit/complaint-portal/internal/table"
	"github.com/spec-kit/complaint-portal/internal/worker"
)

func (a *app) notificationsCmd() *cobra.Command {
	var (
		unreadOnly bool
		markRead   string
	)

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show the notifications panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if markRead != "" {
				if err := a.notifications.MarkRead(cmd.Context(), markRead); err != nil {
					return err
				}
				fmt.Println("marked read")
				return nil
			}

			items, err := a.notifications.List(cmd.Context(), unreadOnly)
			if err != nil {
				return err
			}
			rows, err := table.ToRows(items)
			if err != nil {
				return err
			}
			t := table.New(rows, table.Config{
				SearchFields: []string{"title", "body"},
				PageSize:     30,
			})
			fmt.Print(renderTable(t, []column{
				{Title: "ID", Field: "id"},
				{Title: "TITLE", Field: "title"},
				{Title: "BODY", Field: "body"},
				{Title: "READ", Field: "read"},
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")
	cmd.Flags().StringVar(&markRead, "mark-read", "", "mark a notification as read by id")
	return cmd
}

// panelCmd runs the long-lived session: pre-emptive token refresh, CSRF
// rotation, the notification poller, and the session-file watcher all stay up
// until interrupted.
func (a *app) panelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "panel",
		Short: "Run the live notifications panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.manager.Restore(); !ok {
				return fmt.Errorf("not logged in")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.dispatcher.Subscribe(events.EventNotificationReceived, func(ctx context.Context, event events.Event) error {
				payload, ok := event.Payload.(events.NotificationReceivedPayload)
				if !ok {
					return nil
				}
				fmt.Println(notice("[%s] %s: %s",
					payload.Notification.CreatedAt.Format("15:04"),
					payload.Notification.Title,
					payload.Notification.Body))
				return nil
			})
			a.dispatcher.Subscribe(events.EventSessionCleared, func(ctx context.Context, event events.Event) error {
				fmt.Println(notice("session ended"))
				stop()
				return nil
			})

			go a.manager.RunRefreshLoop(ctx, a.cfg.API.RefreshInterval())
			go a.http.CSRF().RunRotationLoop(ctx, a.cfg.API.CSRFRotateInterval(), a.logger)
			if a.cfg.Session.WatchFile {
				go func() {
					if err := session.WatchFile(ctx, a.store, a.storage, a.logger); err != nil && ctx.Err() == nil {
						a.logger.Warn("session watcher stopped")
					}
				}()
			}

			poller := worker.NewNotificationPoller(a.notifications, a.store, a.dispatcher, a.logger)
			fmt.Println("watching for notifications, ctrl-c to quit")
			poller.Run(ctx, a.cfg.API.NotifyPollInterval())
			return nil
		},
	}
}
