package domain

import (
    "encoding/json"
    "errors"
    "fmt"
    "time"
)

// UpdatedLayout is the timestamp format Jira uses for the updated field.
const UpdatedLayout = "2006-01-02T15:04:05.000-0700"

// ErrEnvelope marks a response body that is not a Jira search envelope:
// unparseable JSON, or no "issues" array. Always fatal for the run.
var ErrEnvelope = errors.New("jira: malformed search envelope")

// RecordError reports one issue record that failed validation, naming the
// offending field path relative to the record.
type RecordError struct {
    Index int
    Path  string
    Err   error
}

func (e *RecordError) Error() string { return fmt.Sprintf("issues[%d].%s: %v", e.Index, e.Path, e.Err) }
func (e *RecordError) Unwrap() error { return e.Err }

var (
    errMissing = errors.New("missing required field")
    errEmpty   = errors.New("empty list")
)

// Wire shapes for the search response. Pointer fields distinguish an absent
// key from a zero value; a wrong-typed value fails json.Unmarshal for the
// whole record, which is reported with the offending path.
type wireEnvelope struct {
    Issues *[]json.RawMessage `json:"issues"`
}

type wireIssue struct {
    Key    *string     `json:"key"`
    Fields *wireFields `json:"fields"`
}

type wireFields struct {
    Summary     *string      `json:"summary"`
    Updated     *string      `json:"updated"`
    FixVersions *[]wireNamed `json:"fixVersions"`
    IssueType   *wireIcon    `json:"issuetype"`
    Reporter    *wireAvatar  `json:"reporter"`
    Priority    *wireIcon    `json:"priority"`
    Assignee    *wireAvatar  `json:"assignee"`
}

type wireNamed struct {
    Name *string `json:"name"`
}

type wireIcon struct {
    Name    *string `json:"name"`
    IconURL *string `json:"iconUrl"`
}

type wireAvatar struct {
    DisplayName *string           `json:"displayName"`
    AvatarURLs  map[string]string `json:"avatarUrls"`
}

// DecodeSearch decodes a full Jira search response body into validated
// issues. Strict: the first record that fails validation aborts the whole
// decode with a *RecordError. An empty issues array is not an error.
func DecodeSearch(data []byte) ([]Issue, error) {
    recs, err := decodeEnvelope(data)
    if err != nil { return nil, err }
    out := make([]Issue, 0, len(recs))
    for i, raw := range recs {
        iss, rerr := decodeRecord(i, raw)
        if rerr != nil { return nil, rerr }
        out = append(out, iss)
    }
    return out, nil
}

// DecodeSearchLenient decodes like DecodeSearch but skips records that fail
// validation, returning them for observability. Envelope errors stay fatal.
func DecodeSearchLenient(data []byte) ([]Issue, []RecordError, error) {
    recs, err := decodeEnvelope(data)
    if err != nil { return nil, nil, err }
    out := make([]Issue, 0, len(recs))
    var dropped []RecordError
    for i, raw := range recs {
        iss, rerr := decodeRecord(i, raw)
        if rerr != nil { dropped = append(dropped, *rerr); continue }
        out = append(out, iss)
    }
    return out, dropped, nil
}

func decodeEnvelope(data []byte) ([]json.RawMessage, error) {
    var env wireEnvelope
    if err := json.Unmarshal(data, &env); err != nil { return nil, fmt.Errorf("%w: %v", ErrEnvelope, err) }
    if env.Issues == nil { return nil, fmt.Errorf("%w: no \"issues\" array", ErrEnvelope) }
    return *env.Issues, nil
}

func decodeRecord(index int, raw json.RawMessage) (Issue, *RecordError) {
    var w wireIssue
    if err := json.Unmarshal(raw, &w); err != nil {
        path := "(record)"
        var te *json.UnmarshalTypeError
        if errors.As(err, &te) && te.Field != "" { path = te.Field }
        return Issue{}, &RecordError{Index: index, Path: path, Err: err}
    }

    v := &validator{}
    key := v.str(w.Key, "key")
    if w.Fields == nil { v.fail("fields", errMissing) }
    var f wireFields
    if w.Fields != nil { f = *w.Fields }
    summary := v.str(f.Summary, "fields.summary")
    updatedRaw := v.str(f.Updated, "fields.updated")
    fixVersion := v.firstVersion(f.FixVersions, "fields.fixVersions")
    typ := v.icon(f.IssueType, "fields.issuetype")
    reporter := v.avatar(f.Reporter, "fields.reporter")
    priority := v.icon(f.Priority, "fields.priority")
    if v.err != nil { return Issue{}, &RecordError{Index: index, Path: v.path, Err: v.err} }

    updated, err := time.Parse(UpdatedLayout, updatedRaw)
    if err != nil { return Issue{}, &RecordError{Index: index, Path: "fields.updated", Err: err} }

    // Assignee is optional, but all-or-nothing when the key is present.
    var assignee *Entity
    if f.Assignee != nil {
        av := &validator{}
        a := av.avatar(f.Assignee, "fields.assignee")
        if av.err != nil { return Issue{}, &RecordError{Index: index, Path: av.path, Err: av.err} }
        assignee = &a
    }

    return Issue{
        Key:        key,
        Summary:    summary,
        FixVersion: fixVersion,
        Updated:    updated,
        Type:       typ,
        Reporter:   reporter,
        Priority:   priority,
        Assignee:   assignee,
    }, nil
}

// validator accumulates the first failed field path so required sub-paths
// can be checked in a flat sequence instead of nested conditionals.
type validator struct {
    path string
    err  error
}

func (v *validator) fail(path string, err error) {
    if v.err == nil { v.path, v.err = path, err }
}

func (v *validator) str(p *string, path string) string {
    if p == nil { v.fail(path, errMissing); return "" }
    return *p
}

func (v *validator) firstVersion(p *[]wireNamed, path string) string {
    if p == nil { v.fail(path, errMissing); return "" }
    if len(*p) == 0 { v.fail(path, errEmpty); return "" }
    return v.str((*p)[0].Name, path+"[0].name")
}

func (v *validator) icon(p *wireIcon, path string) Entity {
    if p == nil { v.fail(path, errMissing); return Entity{} }
    return Entity{
        Name:    v.str(p.Name, path+".name"),
        IconURL: v.str(p.IconURL, path+".iconUrl"),
    }
}

func (v *validator) avatar(p *wireAvatar, path string) Entity {
    if p == nil { v.fail(path, errMissing); return Entity{} }
    name := v.str(p.DisplayName, path+".displayName")
    icon, ok := p.AvatarURLs["16x16"]
    if !ok { v.fail(path+".avatarUrls.16x16", errMissing) }
    return Entity{Name: name, IconURL: icon}
}
