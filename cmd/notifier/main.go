/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/kpcwatson/CI-Utils/internal/adapters/jira"
    "github.com/kpcwatson/CI-Utils/internal/adapters/mail"
    "github.com/kpcwatson/CI-Utils/internal/adapters/openai"
    "github.com/kpcwatson/CI-Utils/internal/config"
    httpx "github.com/kpcwatson/CI-Utils/internal/http"
    "github.com/kpcwatson/CI-Utils/internal/jobs"
    "github.com/kpcwatson/CI-Utils/internal/logger"
    "github.com/kpcwatson/CI-Utils/internal/repo"
    "github.com/kpcwatson/CI-Utils/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // Run history is optional; without a DSN the pipeline runs stateless.
    var repository *repo.Repository
    if cfg.DBDSN != "" {
        db := repo.MustOpen(ctx, cfg, log)
        defer db.Close()
        repository = repo.NewRepository(db, log)
    }

    // Adapters
    jc := jira.NewClient(cfg, log)
    mc := mail.NewClient(cfg, log)
    var llm services.Summarizer
    if cfg.OpenAIKey != "" { llm = openai.NewClient(cfg, log) }

    svc := services.New(cfg, log, repository, jc, mc, llm)

    // Default mode: one pipeline run, exit code for the build step.
    if cfg.RunMode != "serve" {
        ctx2, cancel2 := context.WithTimeout(ctx, 5*time.Minute); defer cancel2()
        if err := svc.RunReleaseNotes(ctx2); err != nil {
            log.Error().Err(err).Msg("release notes failed")
            os.Exit(1)
        }
        return
    }

    // Serve mode: admin HTTP server plus scheduled runs.
    router := httpx.NewRouter(cfg, log, svc)
    cr := jobs.NewCron(cfg, log, svc, repository)
    cr.Start()
    defer cr.Stop()

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
