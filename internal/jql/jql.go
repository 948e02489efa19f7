package jql

import "strings"

// Clause is one field/operator/value(s) filter expression.
type Clause struct {
    Field  string
    Op     string
    Values []string
}

func Eq(field, value string) Clause { return Clause{Field: field, Op: "=", Values: []string{value}} }

func In(field string, values ...string) Clause { return Clause{Field: field, Op: "in", Values: values} }

// Build joins clauses with AND. Clauses with an empty field or no values are
// skipped so callers can pass optional filters unconditionally.
func Build(clauses ...Clause) string {
    parts := make([]string, 0, len(clauses))
    for _, c := range clauses {
        if c.Field == "" || len(c.Values) == 0 { continue }
        switch c.Op {
        case "in":
            quoted := make([]string, 0, len(c.Values))
            for _, v := range c.Values { quoted = append(quoted, quote(v)) }
            parts = append(parts, c.Field+" in ("+strings.Join(quoted, ", ")+")")
        default:
            parts = append(parts, c.Field+" "+c.Op+" "+quote(c.Values[0]))
        }
    }
    return strings.Join(parts, " AND ")
}

func quote(v string) string {
    v = strings.ReplaceAll(v, `\`, `\\`)
    v = strings.ReplaceAll(v, `"`, `\"`)
    return `"` + v + `"`
}
