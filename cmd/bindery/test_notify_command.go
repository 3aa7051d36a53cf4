package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bindery/internal/notifications"
)

func newTestNotifyCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No ntfy topic configured; nothing sent")
				return nil
			}
			svc := notifications.NewService(cfg)
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
