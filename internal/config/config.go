/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "log"
    "os"
    "strconv"
    "strings"
    "time"
)

type Config struct {
    AppEnv   string
    TZ       string
    HTTPAddr string
    RunMode  string // "once" (build-pipeline step) or "serve"

    DBDSN string

    JiraBaseURL  string
    JiraPAT      string
    JiraUsername string
    JiraPassword string
    JiraProject  string
    FixVersion   string
    JiraJQL      string // overrides the built query when set
    BuildLabel   string

    DecodeLenient bool
    ReportHeading string // overrides the derived heading when set

    SMTPHost     string
    SMTPPort     int
    SMTPUsername string
    SMTPPassword string
    MailFrom     string
    MailTo       []string
    MailToFile   string

    OpenAIKey     string
    OpenAIModel   string
    OpenAITimeout time.Duration

    ReportCron  string
    HTTPTimeout time.Duration
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func boolenv(key string, def bool) bool {
    v := os.Getenv(key)
    if v == "" { return def }
    b, err := strconv.ParseBool(v)
    if err != nil { return def }
    return b
}

func parseStrings(csv string) []string {
    if csv == "" { return nil }
    parts := strings.Split(csv, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p == "" { continue }
        out = append(out, p)
    }
    return out
}

// parseRecipients reads one address per line; blank lines and # comments are
// skipped.
func parseRecipients(data []byte) []string {
    var out []string
    for _, ln := range strings.Split(string(data), "\n") {
        ln = strings.TrimSpace(ln)
        if ln == "" || strings.HasPrefix(ln, "#") { continue }
        out = append(out, ln)
    }
    return out
}

func Load() Config {
    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        TZ:       getenv("APP_TZ", "UTC"),
        HTTPAddr: getenv("HTTP_ADDR", ":8080"),
        RunMode:  getenv("RUN_MODE", "once"),

        DBDSN: getenv("DB_DSN", ""),

        JiraBaseURL:  getenv("JIRA_BASE_URL", ""),
        JiraPAT:      getenv("JIRA_PAT", ""),
        JiraUsername: getenv("JIRA_USERNAME", ""),
        JiraPassword: getenv("JIRA_PASSWORD", ""),
        JiraProject:  getenv("JIRA_PROJECT", ""),
        FixVersion:   getenv("JIRA_FIX_VERSION", ""),
        JiraJQL:      getenv("JIRA_JQL", ""),
        BuildLabel:   getenv("BUILD_LABEL", ""),

        DecodeLenient: boolenv("DECODE_LENIENT", false),
        ReportHeading: getenv("REPORT_HEADING", ""),

        SMTPHost:     getenv("SMTP_HOST", ""),
        SMTPPort:     atoi("SMTP_PORT", 25),
        SMTPUsername: getenv("SMTP_USERNAME", ""),
        SMTPPassword: getenv("SMTP_PASSWORD", ""),
        MailFrom:     getenv("MAIL_FROM", "build@localhost"),
        MailTo:       parseStrings(getenv("MAIL_TO", "")),
        MailToFile:   getenv("MAIL_RECIPIENTS_FILE", ""),

        OpenAIKey:     getenv("OPENAI_API_KEY", ""),
        OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4.1-mini"),
        OpenAITimeout: dur("OPENAI_TIMEOUT", 15*time.Second),

        ReportCron:  getenv("CRON_SPEC", "0 9 * * MON-FRI"),
        HTTPTimeout: dur("HTTP_TIMEOUT", 15*time.Second),
    }

    // set global timezone if available
    if loc, err := time.LoadLocation(cfg.TZ); err == nil {
        time.Local = loc
    } else {
        log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
    }

    // Optional recipients file, appended to MAIL_TO
    if cfg.MailToFile != "" {
        if data, err := os.ReadFile(cfg.MailToFile); err == nil {
            cfg.MailTo = append(cfg.MailTo, parseRecipients(data)...)
        } else {
            log.Printf("warning: cannot read recipients file %s: %v", cfg.MailToFile, err)
        }
    }
    return cfg
}
