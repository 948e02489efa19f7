/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package report

import (
    "fmt"
    "html"
    "strings"

    "github.com/kpcwatson/CI-Utils/internal/domain"
)

// UpdatedDisplay is the human-readable format for issue timestamps.
const UpdatedDisplay = "Jan 02, 2006 3:04 PM"

// Inline style block for the mail body: mail clients ignore external CSS.
const style = `body { font-family: sans-serif; }
ul { list-style-type: none; padding-left: 0; }
li { margin-top: 12px; margin-bottom: 12px; }
img.icon { width: 16px; height: 16px; vertical-align: text-bottom; }`

// Render produces the full HTML report for a set of decoded issues. Pure and
// deterministic: identical input always yields byte-identical output. Issues
// are grouped by type name (alphabetical groups, decoded order within a
// group). intro, when non-empty, renders as a paragraph under the heading.
func Render(heading, intro, trackerBase string, issues []domain.Issue) string {
    base := strings.TrimRight(trackerBase, "/")
    b := &strings.Builder{}
    b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<style>\n")
    b.WriteString(style)
    b.WriteString("\n</style>\n</head>\n<body>\n")
    fmt.Fprintf(b, "<h1>%s</h1>\n", html.EscapeString(heading))
    if intro != "" { fmt.Fprintf(b, "<p>%s</p>\n", html.EscapeString(intro)) }
    for _, g := range domain.GroupByType(issues) {
        name := g.Type
        if len(g.Issues) > 1 { name += "s" }
        fmt.Fprintf(b, "<h2>%s</h2>\n<ul>\n", html.EscapeString(name))
        for _, is := range g.Issues {
            writeIssue(b, base, is)
        }
        b.WriteString("</ul>\n")
    }
    b.WriteString("</body>\n</html>\n")
    return b.String()
}

func writeIssue(b *strings.Builder, base string, is domain.Issue) {
    b.WriteString("<li>\n")
    fmt.Fprintf(b, "<a href=\"%s/browse/%s\">%s</a> %s<br/>\n",
        html.EscapeString(base), html.EscapeString(is.Key), html.EscapeString(is.Key), html.EscapeString(is.Summary))
    fmt.Fprintf(b, "Priority: %s<br/>\n", entity(is.Priority))
    fmt.Fprintf(b, "Fix Version: %s<br/>\n", html.EscapeString(is.FixVersion))
    fmt.Fprintf(b, "Reported By: %s<br/>\n", entity(is.Reporter))
    if is.Assignee != nil { fmt.Fprintf(b, "Assigned To: %s<br/>\n", entity(*is.Assignee)) }
    fmt.Fprintf(b, "Updated: %s\n", is.Updated.Format(UpdatedDisplay))
    b.WriteString("</li>\n")
}

func entity(e domain.Entity) string {
    return fmt.Sprintf("<img class=\"icon\" src=\"%s\" alt=\"\"/> %s",
        html.EscapeString(e.IconURL), html.EscapeString(e.Name))
}
