package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	emailAdapter "github.com/tiagotdas/calendario-fiscal/internal/adapters/email"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/subscriber"
)

// ObligationLister reads the whole obligation collection.
type ObligationLister interface {
	List(ctx context.Context) ([]obligation.Obligation, error)
}

// SubscriberLister reads every subscriber.
type SubscriberLister interface {
	List(ctx context.Context) ([]subscriber.Subscriber, error)
}

// SendRemindersDeps holds dependencies for SendReminders.
type SendRemindersDeps struct {
	Obligations ObligationLister
	Subscribers SubscriberLister
	Sender      emailAdapter.Sender
	Now         func() time.Time
	LeadDays    int
	From        string
	ReplyTo     string
}

// SendRemindersResult summarises one reminder run.
type SendRemindersResult struct {
	Due        int
	Recipients int
	Sent       int
}

// ExecuteSendReminders emails every subscriber a digest of obligations due today
// or exactly LeadDays from today. Dates are compared as YYYY-MM-DD strings.
// PRE: deps are non-nil
// POST: nothing is sent when no obligation is due or nobody is subscribed;
//
//	otherwise one message per subscriber is handed to Sender.SendBatch
func ExecuteSendReminders(ctx context.Context, deps SendRemindersDeps) (SendRemindersResult, error) {
	now := deps.Now()
	today := now.Format(obligation.DateLayout)
	ahead := now.AddDate(0, 0, deps.LeadDays).Format(obligation.DateLayout)

	all, err := deps.Obligations.List(ctx)
	if err != nil {
		return SendRemindersResult{}, fmt.Errorf("list obligations: %w", err)
	}
	var due []obligation.Obligation
	for _, o := range all {
		if o.Date == today || o.Date == ahead {
			due = append(due, o)
		}
	}
	res := SendRemindersResult{Due: len(due)}
	if len(due) == 0 {
		slog.Info("reminder_event", "event", "reminders_skipped", "reason", "nothing_due")
		return res, nil
	}

	subs, err := deps.Subscribers.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list subscribers: %w", err)
	}
	res.Recipients = len(subs)
	if len(subs) == 0 {
		slog.Info("reminder_event", "event", "reminders_skipped", "reason", "no_subscribers")
		return res, nil
	}

	html, err := RenderReminderHTML(ReminderDigest(due, today, deps.LeadDays))
	if err != nil {
		return res, err
	}
	subject := reminderSubject(len(due))

	msgs := make([]emailAdapter.Message, 0, len(subs))
	for _, s := range subs {
		msgs = append(msgs, emailAdapter.Message{
			To:      []string{s.Email},
			From:    deps.From,
			Subject: subject,
			HTML:    html,
			ReplyTo: deps.ReplyTo,
		})
	}
	receipts, err := deps.Sender.SendBatch(ctx, msgs)
	res.Sent = len(receipts)
	if err != nil {
		return res, fmt.Errorf("send reminders: %w", err)
	}
	slog.Info("reminder_event", "event", "reminders_sent", "due", res.Due, "sent", res.Sent)
	return res, nil
}

func reminderSubject(n int) string {
	if n == 1 {
		return "Lembrete: 1 obrigação fiscal próxima"
	}
	return fmt.Sprintf("Lembrete: %d obrigações fiscais próximas", n)
}

// ReminderDigest composes the markdown body for the due obligations, grouped
// by date and sorted by title within a date.
func ReminderDigest(due []obligation.Obligation, today string, leadDays int) string {
	sorted := make([]obligation.Obligation, len(due))
	copy(sorted, due)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].Title < sorted[j].Title
	})

	var b strings.Builder
	b.WriteString("# Obrigações fiscais próximas\n")
	current := ""
	for _, o := range sorted {
		if o.Date != current {
			current = o.Date
			when := fmt.Sprintf("Vencem em %d dias", leadDays)
			if o.Date == today {
				when = "Vencem hoje"
			}
			fmt.Fprintf(&b, "\n**%s (%s)**\n\n", when, brDate(o.Date))
		}
		fmt.Fprintf(&b, "- %s (%s)\n", o.Title, obligation.StyleFor(o.Sphere).Label)
	}
	return b.String()
}

// RenderReminderHTML converts the markdown digest to HTML.
func RenderReminderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render reminder: %w", err)
	}
	return buf.String(), nil
}

// brDate turns YYYY-MM-DD into DD/MM/YYYY; malformed dates are returned unchanged.
func brDate(date string) string {
	t, err := time.Parse(obligation.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}
