package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/email"
	obligationStore "github.com/tiagotdas/calendario-fiscal/internal/adapters/storage/obligation"
	"github.com/tiagotdas/calendario-fiscal/internal/application/bootstrap"
	"github.com/tiagotdas/calendario-fiscal/internal/application/orchestrators"
	"github.com/tiagotdas/calendario-fiscal/internal/config"
)

// NewRemindCommand creates the remind command.
func NewRemindCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Email subscribers about obligations due soon",
		Long: `Send one reminder run now: every subscriber receives a digest of the
obligations due today or exactly CALENDARIO_REMINDER_LEAD_DAYS from today.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.cfg
			rt, release := startRuntime(cmd.Context(), cfg, nil)
			defer release()
			if err := requireLive(cfg, rt, "remind"); err != nil {
				return err
			}
			res, err := sendReminders(cmd.Context(), cfg, rt, dryRun)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "due: %d, recipients: %d, sent: %d\n", res.Due, res.Recipients, res.Sent)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the messages without sending them")
	return cmd
}

// sendReminders runs one reminder pass against the live backend.
// PRE: rt is live
func sendReminders(ctx context.Context, cfg *config.Config, rt *bootstrap.Runtime, dryRun bool) (orchestrators.SendRemindersResult, error) {
	sender := email.NewSender(cfg.ResendKey, cfg.EmailFrom)
	if dryRun {
		sender = email.NewNoopSender()
	}
	return orchestrators.ExecuteSendReminders(ctx, orchestrators.SendRemindersDeps{
		Obligations: obligationStore.NewSQLStore(rt.Client.DB()),
		Subscribers: rt.Subscribers,
		Sender:      sender,
		Now:         time.Now,
		LeadDays:    cfg.ReminderLeadDays,
		From:        cfg.EmailFrom,
		ReplyTo:     cfg.ReplyTo,
	})
}
