package domain

import (
    "sort"
    "time"
)

// Entity is a named Jira value object with its 16x16 icon/avatar URL
// (issue type, reporter, priority, assignee).
type Entity struct {
    Name    string
    IconURL string
}

type Issue struct {
    Key        string
    Summary    string
    FixVersion string
    Updated    time.Time
    Type       Entity
    Reporter   Entity
    Priority   Entity
    Assignee   *Entity // nil when the ticket is unassigned
}

// Group holds all issues sharing one issue-type name, in decoded order.
type Group struct {
    Type   string
    Issues []Issue
}

// GroupByType partitions issues by type name. Groups are sorted
// alphabetically by type name so report output is reproducible; issues
// inside a group keep their input order.
func GroupByType(issues []Issue) []Group {
    idx := map[string]int{}
    groups := []Group{}
    for _, it := range issues {
        i, ok := idx[it.Type.Name]
        if !ok { i = len(groups); idx[it.Type.Name] = i; groups = append(groups, Group{Type: it.Type.Name}) }
        groups[i].Issues = append(groups[i].Issues, it)
    }
    sort.Slice(groups, func(i, j int) bool { return groups[i].Type < groups[j].Type })
    return groups
}
