package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// HandlerFunc is a workflow handler invoked for one event
type HandlerFunc func(ctx context.Context, event *model.TemplateEvent) error

type routeKey struct {
	topic string
	class model.TemplateClass
}

// Router classifies events by topic and template name and dispatches to the
// matching workflow handler through a fixed table.
type Router struct {
	topics model.Topics
	table  map[routeKey]HandlerFunc
}

// NewRouter builds the dispatch table. On the prerender topic every
// template class has a handler (generic is the fallback); on the postrender
// topic only the two enumerated classes act, everything else is ignored.
func NewRouter(topics model.Topics, wf *Workflows) *Router {
	return &Router{
		topics: topics,
		table: map[routeKey]HandlerFunc{
			{topics.Prerender, model.ClassTechnote}:  wf.TechnotePrerender,
			{topics.Prerender, model.ClassDocument}:  wf.DocumentPrerender,
			{topics.Prerender, model.ClassGeneric}:   wf.GenericPrerender,
			{topics.Postrender, model.ClassTechnote}: wf.TechnotePostrender,
			{topics.Postrender, model.ClassDocument}: wf.DocumentPostrender,
		},
	}
}

// Route dispatches one deserialized event. Tracing context (topic,
// partition, offset, schema ID) is bound into the logger that the invoked
// handler sees; it plays no part in the routing decision.
func (r *Router) Route(ctx context.Context, msg *model.BusMessage, event *model.TemplateEvent, schemaID int) error {
	logger := ctxlog.From(ctx).With(
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"schema_id", schemaID,
	)
	ctx = ctxlog.With(ctx, logger)

	handler, ok := r.table[routeKey{msg.Topic, model.Classify(event.TemplateName)}]
	if !ok {
		logger.Debug("No handler for event, ignoring",
			"template_name", event.TemplateName)
		return nil
	}

	return handler(ctx, event)
}
