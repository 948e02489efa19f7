/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package mail

import (
    "context"
    "fmt"

    "github.com/kpcwatson/CI-Utils/internal/config"
    "github.com/rs/zerolog"
    gomail "github.com/wneessen/go-mail"
)

type Client struct {
    host string
    port int
    user string
    pass string
    from string
    log  zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        host: cfg.SMTPHost,
        port: cfg.SMTPPort,
        user: cfg.SMTPUsername,
        pass: cfg.SMTPPassword,
        from: cfg.MailFrom,
        log:  log,
    }
}

// Send delivers one HTML message to all recipients. One shot, no retry:
// the build pipeline decides whether a failed notification fails the build.
func (c *Client) Send(ctx context.Context, to []string, subject, htmlBody string) error {
    if c.host == "" { return fmt.Errorf("mail: missing SMTP host") }
    if len(to) == 0 { return fmt.Errorf("mail: no recipients") }
    m := gomail.NewMsg()
    if err := m.From(c.from); err != nil { return fmt.Errorf("mail: from %q: %w", c.from, err) }
    if err := m.To(to...); err != nil { return fmt.Errorf("mail: to %v: %w", to, err) }
    m.Subject(subject)
    m.SetBodyString(gomail.TypeTextHTML, htmlBody)

    opts := []gomail.Option{
        gomail.WithPort(c.port),
        gomail.WithTLSPolicy(gomail.TLSOpportunistic),
    }
    if c.user != "" {
        opts = append(opts, gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
            gomail.WithUsername(c.user), gomail.WithPassword(c.pass))
    }
    cl, err := gomail.NewClient(c.host, opts...)
    if err != nil { return err }
    if err := cl.DialAndSendWithContext(ctx, m); err != nil {
        return fmt.Errorf("mail: send via %s:%d: %w", c.host, c.port, err)
    }
    c.log.Info().Int("recipients", len(to)).Str("subject", subject).Msg("mail sent")
    return nil
}
