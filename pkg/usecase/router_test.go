package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
	"github.com/lsst-sqre/templatebot-aide/pkg/usecase"
)

var testTopics = model.Topics{
	Prerender:   "templatebot-prerender",
	Postrender:  "templatebot-postrender",
	RenderReady: "templatebot-render_ready",
}

func TestRouterRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("technote prerender reaches the series numbering", func(t *testing.T) {
		e := newEnv()
		router := usecase.NewRouter(testTopics, e.workflows)

		event := technoteEvent()
		msg := &model.BusMessage{Topic: testTopics.Prerender, Partition: 0, Offset: 42}
		gt.NoError(t, router.Route(ctx, msg, event, 7))

		gt.Equal(t, e.github.createCalls, []string{"lsst-sqre/sqr-001"})
	})

	t.Run("unknown templates on prerender fall back to generic", func(t *testing.T) {
		e := newEnv()
		router := usecase.NewRouter(testTopics, e.workflows)

		event := &model.TemplateEvent{
			TemplateName: "some_future_template",
			Variables:    map[string]string{"github_org": "lsst", "name": "thing"},
		}
		msg := &model.BusMessage{Topic: testTopics.Prerender}
		gt.NoError(t, router.Route(ctx, msg, event, 7))

		gt.Equal(t, e.github.createCalls, []string{"lsst/thing"})
	})

	t.Run("generic templates on postrender are ignored", func(t *testing.T) {
		e := newEnv()
		router := usecase.NewRouter(testTopics, e.workflows)

		event := &model.TemplateEvent{
			TemplateName: "stack_package",
			Variables:    map[string]string{"github_org": "lsst", "package_name": "afw"},
		}
		msg := &model.BusMessage{Topic: testTopics.Postrender}
		gt.NoError(t, router.Route(ctx, msg, event, 7))

		gt.Equal(t, len(e.github.createCalls), 0)
		gt.Equal(t, len(e.publisher.published), 0)
	})

	t.Run("unknown topics are ignored", func(t *testing.T) {
		e := newEnv()
		router := usecase.NewRouter(testTopics, e.workflows)

		event := technoteEvent()
		msg := &model.BusMessage{Topic: "templatebot-render_ready"}
		gt.NoError(t, router.Route(ctx, msg, event, 7))
		gt.Equal(t, len(e.github.createCalls), 0)
	})

	t.Run("latex technote postrender opens the submodule PR", func(t *testing.T) {
		e := newEnv()
		router := usecase.NewRouter(testTopics, e.workflows)

		event := technotePostEvent()
		msg := &model.BusMessage{Topic: testTopics.Postrender}
		gt.NoError(t, router.Route(ctx, msg, event, 7))
		gt.Equal(t, len(e.github.prCalls), 1)
	})
}
