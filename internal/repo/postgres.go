package repo

import (
    "context"
    "errors"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/kpcwatson/CI-Utils/internal/config"
    "github.com/rs/zerolog"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

// RunSummary is one recorded report run.
type RunSummary struct {
    ID            int64      `json:"id"`
    StartedAt     time.Time  `json:"started_at"`
    FinishedAt    *time.Time `json:"finished_at"`
    JQL           string     `json:"jql"`
    IssuesTotal   int        `json:"issues_total"`
    IssuesDropped int        `json:"issues_dropped"`
    Recipients    int        `json:"recipients"`
    OK            bool       `json:"ok"`
    Error         string     `json:"error"`
}

func (r *Repository) StartRun(ctx context.Context, jql string) (int64, error) {
    const q = `INSERT INTO report_runs(started_at, jql) VALUES(now(), $1) RETURNING id`
    var id int64
    if err := r.db.Pool.QueryRow(ctx, q, jql).Scan(&id); err != nil { return 0, err }
    return id, nil
}

func (r *Repository) FinishRun(ctx context.Context, id int64, total, dropped, recipients int, ok bool, errText string) error {
    const q = `UPDATE report_runs SET finished_at=now(), issues_total=$2, issues_dropped=$3,
        recipients=$4, ok=$5, error=$6 WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, total, dropped, recipients, ok, errText)
    return err
}

func (r *Repository) GetLastRun(ctx context.Context) (*RunSummary, error) {
    const q = `SELECT id, started_at, finished_at, jql, COALESCE(issues_total,0),
        COALESCE(issues_dropped,0), COALESCE(recipients,0), COALESCE(ok,false), COALESCE(error,'')
        FROM report_runs ORDER BY started_at DESC LIMIT 1`
    var rs RunSummary
    err := r.db.Pool.QueryRow(ctx, q).Scan(&rs.ID, &rs.StartedAt, &rs.FinishedAt, &rs.JQL,
        &rs.IssuesTotal, &rs.IssuesDropped, &rs.Recipients, &rs.OK, &rs.Error)
    if errors.Is(err, pgx.ErrNoRows) { return nil, nil }
    if err != nil { return nil, err }
    return &rs, nil
}
