package report

import (
    "strings"
    "testing"
    "time"

    "github.com/kpcwatson/CI-Utils/internal/domain"
)

func sampleIssue(key, typ string) domain.Issue {
    return domain.Issue{
        Key:        key,
        Summary:    "Fix crash",
        FixVersion: "1.0",
        Updated:    time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC),
        Type:       domain.Entity{Name: typ, IconURL: "u1"},
        Reporter:   domain.Entity{Name: "Ann", IconURL: "u2"},
        Priority:   domain.Entity{Name: "High", IconURL: "u3"},
    }
}

func TestRender_SpecimenReport(t *testing.T) {
    out := Render("Release Notes - 1.0", "", "https://tracker.example.com", []domain.Issue{sampleIssue("X-1", "Bug")})
    for _, want := range []string{
        "<h1>Release Notes - 1.0</h1>",
        "<h2>Bug</h2>",
        `<a href="https://tracker.example.com/browse/X-1">X-1</a> Fix crash`,
        "Updated: Jan 01, 2023 10:00 AM",
        "Fix Version: 1.0",
        `<img class="icon" src="u3" alt=""/> High`,
    } {
        if !strings.Contains(out, want) { t.Fatalf("report missing %q:\n%s", want, out) }
    }
    if strings.Contains(out, "Assigned To") { t.Fatalf("unassigned issue must not render an Assigned To line:\n%s", out) }
}

func TestRender_Deterministic(t *testing.T) {
    issues := []domain.Issue{sampleIssue("X-1", "Bug"), sampleIssue("X-2", "Task"), sampleIssue("X-3", "Bug")}
    a := Render("h", "intro", "https://t", issues)
    b := Render("h", "intro", "https://t", issues)
    if a != b { t.Fatalf("rendering is not byte-identical") }
}

func TestRender_Pluralization(t *testing.T) {
    out := Render("h", "", "https://t", []domain.Issue{
        sampleIssue("X-1", "Bug"), sampleIssue("X-2", "Bug"), sampleIssue("X-3", "Task"),
    })
    if !strings.Contains(out, "<h2>Bugs</h2>") { t.Fatalf("two bugs should render as Bugs:\n%s", out) }
    if !strings.Contains(out, "<h2>Task</h2>") { t.Fatalf("single task should stay singular:\n%s", out) }
    if strings.Contains(out, "<h2>Bug</h2>") { t.Fatalf("bare Bug header must not appear alongside Bugs") }
}

func TestRender_GroupOrderAlphabetical(t *testing.T) {
    out := Render("h", "", "https://t", []domain.Issue{
        sampleIssue("X-1", "Task"), sampleIssue("X-2", "Bug"), sampleIssue("X-3", "Improvement"),
    })
    bug := strings.Index(out, "<h2>Bug</h2>")
    imp := strings.Index(out, "<h2>Improvement</h2>")
    task := strings.Index(out, "<h2>Task</h2>")
    if bug == -1 || imp == -1 || task == -1 { t.Fatalf("missing group headers:\n%s", out) }
    if !(bug < imp && imp < task) { t.Fatalf("groups out of order: bug=%d improvement=%d task=%d", bug, imp, task) }
}

func TestRender_AssigneeLine(t *testing.T) {
    is := sampleIssue("X-1", "Bug")
    is.Assignee = &domain.Entity{Name: "Cam", IconURL: "u7"}
    out := Render("h", "", "https://t", []domain.Issue{is})
    if !strings.Contains(out, `Assigned To: <img class="icon" src="u7" alt=""/> Cam`) {
        t.Fatalf("assignee line missing:\n%s", out)
    }
}

func TestRender_EscapesText(t *testing.T) {
    is := sampleIssue("X-1", "Bug")
    is.Summary = `<script>alert("hi") & such</script>`
    out := Render("Notes <1>", "", "https://t", []domain.Issue{is})
    if strings.Contains(out, "<script>") { t.Fatalf("summary not escaped:\n%s", out) }
    if !strings.Contains(out, "&lt;script&gt;") { t.Fatalf("expected escaped summary:\n%s", out) }
    if !strings.Contains(out, "<h1>Notes &lt;1&gt;</h1>") { t.Fatalf("heading not escaped:\n%s", out) }
}

func TestRender_IntroParagraph(t *testing.T) {
    with := Render("h", "Two bugs fixed.", "https://t", []domain.Issue{sampleIssue("X-1", "Bug")})
    if !strings.Contains(with, "<p>Two bugs fixed.</p>") { t.Fatalf("intro missing:\n%s", with) }
    without := Render("h", "", "https://t", []domain.Issue{sampleIssue("X-1", "Bug")})
    if strings.Contains(without, "<p>") { t.Fatalf("empty intro must render nothing:\n%s", without) }
}

func TestRender_TrimsTrackerBase(t *testing.T) {
    out := Render("h", "", "https://tracker.example.com/", []domain.Issue{sampleIssue("X-1", "Bug")})
    if !strings.Contains(out, `href="https://tracker.example.com/browse/X-1"`) {
        t.Fatalf("trailing slash not trimmed:\n%s", out)
    }
}
