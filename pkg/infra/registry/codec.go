package registry

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// encodeEvent maps an event onto the Avro record's native form. Optional
// string fields are nullable unions; an empty value encodes as null.
func encodeEvent(event *model.TemplateEvent) map[string]interface{} {
	variables := make(map[string]interface{}, len(event.Variables))
	for k, v := range event.Variables {
		variables[k] = v
	}

	ts := event.InitialTimestamp
	if ts.IsZero() {
		ts = time.Unix(0, 0).UTC()
	}

	return map[string]interface{}{
		"template_name":     event.TemplateName,
		"variables":         variables,
		"slack_username":    optionalString(event.SlackUsername),
		"slack_channel":     optionalString(event.SlackChannel),
		"slack_thread_ts":   optionalString(event.SlackThreadTS),
		"github_repo":       optionalString(event.GitHubRepo),
		"retry_count":       int32(event.RetryCount),
		"initial_timestamp": ts,
	}
}

func optionalString(v string) interface{} {
	if v == "" {
		return nil
	}
	return map[string]interface{}{"string": v}
}

// decodeEvent maps an Avro native value back onto an event
func decodeEvent(native interface{}) (*model.TemplateEvent, error) {
	record, ok := native.(map[string]interface{})
	if !ok {
		return nil, goerr.New("event payload is not a record")
	}

	templateName, ok := record["template_name"].(string)
	if !ok {
		return nil, goerr.New("event is missing template_name")
	}

	event := &model.TemplateEvent{
		TemplateName:  templateName,
		Variables:     map[string]string{},
		SlackUsername: unionString(record["slack_username"]),
		SlackChannel:  unionString(record["slack_channel"]),
		SlackThreadTS: unionString(record["slack_thread_ts"]),
		GitHubRepo:    unionString(record["github_repo"]),
	}

	if vars, ok := record["variables"].(map[string]interface{}); ok {
		for k, v := range vars {
			if s, ok := v.(string); ok {
				event.Variables[k] = s
			}
		}
	}

	switch n := record["retry_count"].(type) {
	case int32:
		event.RetryCount = int(n)
	case int64:
		event.RetryCount = int(n)
	}

	switch ts := record["initial_timestamp"].(type) {
	case time.Time:
		event.InitialTimestamp = ts.UTC()
	case int64:
		event.InitialTimestamp = time.UnixMilli(ts).UTC()
	}

	return event, nil
}

// unionString unwraps a nullable union value
func unionString(v interface{}) string {
	switch u := v.(type) {
	case string:
		return u
	case map[string]interface{}:
		if s, ok := u["string"].(string); ok {
			return s
		}
	}
	return ""
}
