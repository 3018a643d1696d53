package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// SMTPNotifier delivers messages over plain SMTP. Auth is optional; leave
// Username empty for an open relay (local dev mailcatchers).
type SMTPNotifier struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	host, _, ok := strings.Cut(n.Addr, ":")
	if !ok {
		return fmt.Errorf("notify: invalid smtp address %q", n.Addr)
	}

	var auth smtp.Auth
	if n.Username != "" {
		auth = smtp.PlainAuth("", n.Username, n.Password, host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(n.Addr, auth, n.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	return nil
}

// LogNotifier writes messages to the log instead of delivering them. Used
// when no SMTP relay is configured and in tests.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.Logger.Info("notification (not delivered, no relay configured)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}
