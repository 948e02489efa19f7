/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "strings"

    "github.com/kpcwatson/CI-Utils/internal/config"
    "github.com/kpcwatson/CI-Utils/internal/domain"
    "github.com/kpcwatson/CI-Utils/internal/jql"
    "github.com/kpcwatson/CI-Utils/internal/repo"
    "github.com/kpcwatson/CI-Utils/internal/report"
    "github.com/rs/zerolog"
)

type Searcher interface {
    Search(ctx context.Context, jql string, fields []string) ([]byte, error)
}

type Mailer interface {
    Send(ctx context.Context, to []string, subject, htmlBody string) error
}

type Summarizer interface {
    Highlights(ctx context.Context, issues []domain.Issue) (string, error)
}

// searchFields keeps the search response down to what the decoder validates.
var searchFields = []string{"summary", "updated", "fixVersions", "issuetype", "reporter", "priority", "assignee"}

type Service struct {
    cfg  config.Config
    log  zerolog.Logger
    repo *repo.Repository
    jira Searcher
    mail Mailer
    llm  Summarizer
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, jira Searcher, mail Mailer, llm Summarizer) *Service {
    return &Service{cfg: cfg, log: log, repo: r, jira: jira, mail: mail, llm: llm}
}

// RunReleaseNotes is the whole pipeline: search, decode, render, send.
// A zero-issue result is a clean no-op: nothing rendered, nothing sent.
func (s *Service) RunReleaseNotes(ctx context.Context) error {
    q := s.buildJQL()
    s.log.Info().Str("jql", q).Msg("release notes: start")

    var runID int64
    if s.repo != nil {
        id, err := s.repo.StartRun(ctx, q)
        if err != nil { s.log.Error().Err(err).Msg("start run failed") }
        runID = id
    }
    var total, dropped, sent int
    var runErr error
    defer func(){
        if runID != 0 {
            errText := ""
            if runErr != nil { errText = runErr.Error() }
            _ = s.repo.FinishRun(ctx, runID, total, dropped, sent, runErr == nil, errText)
        }
    }()

    issues, nDropped, err := s.fetchIssues(ctx, q)
    if err != nil { runErr = err; return err }
    total, dropped = len(issues), nDropped

    if len(issues) == 0 {
        s.log.Info().Msg("release notes: nothing to report, no mail sent")
        return nil
    }

    heading := s.heading()
    html := report.Render(heading, s.highlights(ctx, issues), s.cfg.JiraBaseURL, issues)

    to := s.cfg.MailTo
    if err := s.mail.Send(ctx, to, heading, html); err != nil { runErr = err; return err }
    sent = len(to)
    s.log.Info().Int("issues", total).Int("dropped", dropped).Int("recipients", sent).Msg("release notes: done")
    return nil
}

// PreviewReleaseNotes renders without sending; "" means nothing to report.
func (s *Service) PreviewReleaseNotes(ctx context.Context) (string, error) {
    q := s.buildJQL()
    issues, _, err := s.fetchIssues(ctx, q)
    if err != nil { return "", err }
    if len(issues) == 0 { return "", nil }
    return report.Render(s.heading(), "", s.cfg.JiraBaseURL, issues), nil
}

func (s *Service) fetchIssues(ctx context.Context, q string) ([]domain.Issue, int, error) {
    body, err := s.jira.Search(ctx, q, searchFields)
    if err != nil { return nil, 0, err }
    if s.cfg.DecodeLenient {
        issues, droppedRecs, err := domain.DecodeSearchLenient(body)
        if err != nil { return nil, 0, err }
        for _, d := range droppedRecs {
            d := d
            s.log.Warn().Err(&d).Int("index", d.Index).Str("path", d.Path).Msg("issue record skipped")
        }
        return issues, len(droppedRecs), nil
    }
    issues, err := domain.DecodeSearch(body)
    if err != nil { return nil, 0, err }
    return issues, 0, nil
}

func (s *Service) buildJQL() string {
    if strings.TrimSpace(s.cfg.JiraJQL) != "" { return s.cfg.JiraJQL }
    return jql.Build(
        jql.Eq("project", s.cfg.JiraProject),
        jql.Eq("fixVersion", s.cfg.FixVersion),
    )
}

func (s *Service) heading() string {
    if s.cfg.ReportHeading != "" { return s.cfg.ReportHeading }
    h := "Release Notes - " + s.cfg.FixVersion
    if s.cfg.BuildLabel != "" { h = fmt.Sprintf("%s build %s", h, s.cfg.BuildLabel) }
    return h
}

// highlights is best-effort: a missing or failing summarizer degrades to an
// empty intro.
func (s *Service) highlights(ctx context.Context, issues []domain.Issue) string {
    if s.llm == nil { return "" }
    intro, err := s.llm.Highlights(ctx, issues)
    if err != nil { s.log.Warn().Err(err).Msg("highlights skipped"); return "" }
    return intro
}

func (s *Service) GetLastRun(ctx context.Context) (any, error) {
    if s.repo == nil { return map[string]any{"history": "disabled"}, nil }
    return s.repo.GetLastRun(ctx)
}
