package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/lejapetric/simon/models"
)

// Notifier forwards contact form submissions to the business
type Notifier interface {
	NotifyContact(ctx context.Context, msg models.ContactMessage) error
}

// NoopNotifier drops every message. Used when forwarding is not configured;
// the submission is still logged by the handler.
type NoopNotifier struct{}

func (NoopNotifier) NotifyContact(context.Context, models.ContactMessage) error {
	return nil
}

type EmailSender interface {
	SendEmail(ctx context.Context, subject, html, text, replyTo string, recipients []string) error
}

// EmailNotifier emails every submission to a fixed list of recipients
type EmailNotifier struct {
	sender     EmailSender
	recipients []string
}

func NewEmailNotifier(sender EmailSender, recipients []string) *EmailNotifier {
	return &EmailNotifier{sender: sender, recipients: recipients}
}

func (n *EmailNotifier) NotifyContact(ctx context.Context, msg models.ContactMessage) error {
	subject, htmlBody, textBody := formatContactEmail(msg)
	if err := n.sender.SendEmail(ctx, subject, htmlBody, textBody, msg.ReplyTo(), n.recipients); err != nil {
		return fmt.Errorf("forward contact message: %w", err)
	}
	return nil
}

func formatContactEmail(msg models.ContactMessage) (subject, htmlBody, textBody string) {
	from := msg.Name
	if from == "" {
		from = firstNonEmpty(msg.Email, msg.Phone)
	}
	subject = "New inquiry from " + from

	rows := [][2]string{
		{"Name", msg.Name},
		{"Email", msg.Email},
		{"Phone", msg.Phone},
		{"Received", msg.ReceivedAt.Format("2006-01-02 15:04 MST")},
	}

	var h, t strings.Builder
	h.WriteString("<h2>New inquiry</h2><table>")
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(&h, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", r[0], html.EscapeString(r[1]))
		fmt.Fprintf(&t, "%s: %s\n", r[0], r[1])
	}
	h.WriteString("</table><p>")
	h.WriteString(strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>"))
	h.WriteString("</p>")
	t.WriteString("\n")
	t.WriteString(msg.Message)

	return subject, h.String(), t.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
