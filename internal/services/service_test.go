package services

import (
    "context"
    "errors"
    "strings"
    "testing"

    "github.com/kpcwatson/CI-Utils/internal/config"
    "github.com/kpcwatson/CI-Utils/internal/domain"
    "github.com/rs/zerolog"
)

type fakeSearcher struct {
    body []byte
    err  error
    jql  string
}

func (f *fakeSearcher) Search(ctx context.Context, jql string, fields []string) ([]byte, error) {
    f.jql = jql
    return f.body, f.err
}

type sentMail struct {
    to      []string
    subject string
    body    string
}

type fakeMailer struct {
    sent []sentMail
    err  error
}

func (f *fakeMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
    if f.err != nil { return f.err }
    f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
    return nil
}

const goodBody = `{"issues":[{"key":"X-1","fields":{"summary":"Fix crash","updated":"2023-01-01T10:00:00.000+0000","fixVersions":[{"name":"1.0"}],"issuetype":{"name":"Bug","iconUrl":"u1"},"reporter":{"displayName":"Ann","avatarUrls":{"16x16":"u2"}},"priority":{"name":"High","iconUrl":"u3"}}}]}`

const mixedBody = `{"issues":[{"key":"X-1","fields":{"summary":"Fix crash","updated":"2023-01-01T10:00:00.000+0000","fixVersions":[{"name":"1.0"}],"issuetype":{"name":"Bug","iconUrl":"u1"},"reporter":{"displayName":"Ann","avatarUrls":{"16x16":"u2"}},"priority":{"name":"High","iconUrl":"u3"}}},{"key":"X-2","fields":{"summary":"broken"}}]}`

func newTestService(cfg config.Config, js *fakeSearcher, m *fakeMailer) *Service {
    return New(cfg, zerolog.Nop(), nil, js, m, nil)
}

func baseConfig() config.Config {
    return config.Config{
        JiraBaseURL: "https://tracker.example.com",
        JiraProject: "PROJ",
        FixVersion:  "1.0",
        BuildLabel:  "42",
        MailTo:      []string{"team@example.com"},
    }
}

func TestRunReleaseNotes_SendsRenderedReport(t *testing.T) {
    js := &fakeSearcher{body: []byte(goodBody)}
    m := &fakeMailer{}
    svc := newTestService(baseConfig(), js, m)
    if err := svc.RunReleaseNotes(context.Background()); err != nil { t.Fatalf("run failed: %v", err) }
    if len(m.sent) != 1 { t.Fatalf("expected 1 mail, got %d", len(m.sent)) }
    msg := m.sent[0]
    if msg.subject != "Release Notes - 1.0 build 42" { t.Fatalf("subject = %q", msg.subject) }
    if msg.to[0] != "team@example.com" { t.Fatalf("to = %v", msg.to) }
    if !strings.Contains(msg.body, "https://tracker.example.com/browse/X-1") { t.Fatalf("body missing link:\n%s", msg.body) }
    if !strings.Contains(msg.body, "<h2>Bug</h2>") { t.Fatalf("body missing group:\n%s", msg.body) }
    if js.jql != `project = "PROJ" AND fixVersion = "1.0"` { t.Fatalf("jql = %q", js.jql) }
}

func TestRunReleaseNotes_ExplicitJQLWins(t *testing.T) {
    cfg := baseConfig()
    cfg.JiraJQL = "fixVersion = \"1.0\" ORDER BY key"
    js := &fakeSearcher{body: []byte(goodBody)}
    svc := newTestService(cfg, js, &fakeMailer{})
    if err := svc.RunReleaseNotes(context.Background()); err != nil { t.Fatalf("run failed: %v", err) }
    if js.jql != cfg.JiraJQL { t.Fatalf("jql = %q", js.jql) }
}

func TestRunReleaseNotes_EmptyResultSendsNothing(t *testing.T) {
    js := &fakeSearcher{body: []byte(`{"issues":[]}`)}
    m := &fakeMailer{}
    svc := newTestService(baseConfig(), js, m)
    if err := svc.RunReleaseNotes(context.Background()); err != nil { t.Fatalf("empty result must not fail: %v", err) }
    if len(m.sent) != 0 { t.Fatalf("no mail expected, got %d", len(m.sent)) }
}

func TestRunReleaseNotes_StrictDecodeFailureAborts(t *testing.T) {
    js := &fakeSearcher{body: []byte(mixedBody)}
    m := &fakeMailer{}
    svc := newTestService(baseConfig(), js, m)
    err := svc.RunReleaseNotes(context.Background())
    var re *domain.RecordError
    if !errors.As(err, &re) { t.Fatalf("expected RecordError, got %v", err) }
    if len(m.sent) != 0 { t.Fatalf("no mail may be sent on decode failure") }
}

func TestRunReleaseNotes_LenientDropsAndSends(t *testing.T) {
    cfg := baseConfig()
    cfg.DecodeLenient = true
    js := &fakeSearcher{body: []byte(mixedBody)}
    m := &fakeMailer{}
    svc := newTestService(cfg, js, m)
    if err := svc.RunReleaseNotes(context.Background()); err != nil { t.Fatalf("lenient run failed: %v", err) }
    if len(m.sent) != 1 { t.Fatalf("expected 1 mail, got %d", len(m.sent)) }
    if !strings.Contains(m.sent[0].body, "X-1") { t.Fatalf("good record missing from report") }
    if strings.Contains(m.sent[0].body, "X-2") { t.Fatalf("bad record must not reach the report") }
}

func TestRunReleaseNotes_EnvelopeFailureAborts(t *testing.T) {
    js := &fakeSearcher{body: []byte(`{"total":0}`)}
    m := &fakeMailer{}
    svc := newTestService(baseConfig(), js, m)
    err := svc.RunReleaseNotes(context.Background())
    if !errors.Is(err, domain.ErrEnvelope) { t.Fatalf("expected ErrEnvelope, got %v", err) }
    if len(m.sent) != 0 { t.Fatalf("no mail may be sent on envelope failure") }
}

func TestRunReleaseNotes_SearchErrorPropagates(t *testing.T) {
    boom := errors.New("jira down")
    js := &fakeSearcher{err: boom}
    svc := newTestService(baseConfig(), js, &fakeMailer{})
    if err := svc.RunReleaseNotes(context.Background()); !errors.Is(err, boom) {
        t.Fatalf("expected search error, got %v", err)
    }
}

func TestRunReleaseNotes_MailErrorPropagates(t *testing.T) {
    boom := errors.New("smtp down")
    js := &fakeSearcher{body: []byte(goodBody)}
    svc := newTestService(baseConfig(), js, &fakeMailer{err: boom})
    if err := svc.RunReleaseNotes(context.Background()); !errors.Is(err, boom) {
        t.Fatalf("expected mail error, got %v", err)
    }
}

func TestPreviewReleaseNotes(t *testing.T) {
    js := &fakeSearcher{body: []byte(goodBody)}
    svc := newTestService(baseConfig(), js, &fakeMailer{})
    html, err := svc.PreviewReleaseNotes(context.Background())
    if err != nil { t.Fatalf("preview failed: %v", err) }
    if !strings.Contains(html, "X-1") { t.Fatalf("preview missing issue:\n%s", html) }

    js.body = []byte(`{"issues":[]}`)
    html, err = svc.PreviewReleaseNotes(context.Background())
    if err != nil { t.Fatalf("empty preview failed: %v", err) }
    if html != "" { t.Fatalf("empty result should preview as empty string") }
}

func TestHeadingOverride(t *testing.T) {
    cfg := baseConfig()
    cfg.ReportHeading = "Nightly build digest"
    js := &fakeSearcher{body: []byte(goodBody)}
    m := &fakeMailer{}
    svc := newTestService(cfg, js, m)
    if err := svc.RunReleaseNotes(context.Background()); err != nil { t.Fatalf("run failed: %v", err) }
    if m.sent[0].subject != "Nightly build digest" { t.Fatalf("subject = %q", m.sent[0].subject) }
}
