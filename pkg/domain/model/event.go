package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TemplateEvent is a message on one of the templatebot topics. The same
// record shape is used for prerender, postrender and render_ready messages;
// optional fields are empty until the phase that fills them.
type TemplateEvent struct {
	TemplateName     string
	Variables        map[string]string
	SlackUsername    string // empty means no user to notify
	SlackChannel     string
	SlackThreadTS    string
	GitHubRepo       string // set from the postrender phase onward
	RetryCount       int
	InitialTimestamp time.Time
}

// HasUser reports whether the event carries a Slack user to notify
func (e *TemplateEvent) HasUser() bool {
	return e.SlackUsername != ""
}

// Var returns a template variable, or the empty string if absent
func (e *TemplateEvent) Var(key string) string {
	if e.Variables == nil {
		return ""
	}
	return e.Variables[key]
}

// SetVar sets a template variable, allocating the map if needed
func (e *TemplateEvent) SetVar(key, value string) {
	if e.Variables == nil {
		e.Variables = map[string]string{}
	}
	e.Variables[key] = value
}

// FillVar sets a template variable only when it is absent or empty. User
// supplied values are never overwritten.
func (e *TemplateEvent) FillVar(key, value string) {
	if e.Var(key) == "" {
		e.SetVar(key, value)
	}
}

// Clone returns a deep copy of the event. Render-ready messages are built
// from a clone so the inbound event is never mutated.
func (e *TemplateEvent) Clone() *TemplateEvent {
	dup := *e
	dup.Variables = make(map[string]string, len(e.Variables))
	for k, v := range e.Variables {
		dup.Variables[k] = v
	}
	return &dup
}

// FormatVariables renders the variables as a deterministic key: value block
// for echoing user input back to Slack.
func (e *TemplateEvent) FormatVariables() string {
	keys := make([]string, 0, len(e.Variables))
	for k := range e.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, e.Variables[k])
	}
	return b.String()
}

// RepoOwnerAndName splits the event's github_repo URL into its owner and
// repository name components.
func (e *TemplateEvent) RepoOwnerAndName() (string, string, bool) {
	parts := strings.Split(strings.TrimSuffix(e.GitHubRepo, "/"), "/")
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[len(parts)-2], parts[len(parts)-1], true
}

// BusMessage is a raw message pulled from the bus, before deserialization
type BusMessage struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
}

// Topics holds the resolved topic names for this deployment. Names carry the
// topics-version suffix when one is configured.
type Topics struct {
	Prerender   string
	Postrender  string
	RenderReady string
}

// RenderReadySubject is the schema registry subject for the render_ready
// topic's value schema.
func (t Topics) RenderReadySubject() string {
	return t.RenderReady + "-value"
}
