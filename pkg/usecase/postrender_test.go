package usecase_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

func technotePostEvent() *model.TemplateEvent {
	return &model.TemplateEvent{
		TemplateName: "technote_latex",
		Variables: map[string]string{
			"series":        "SQR",
			"serial_number": "032",
		},
		GitHubRepo:    "https://github.com/lsst-sqre/sqr-032",
		SlackUsername: "U123",
		SlackChannel:  "C123",
		SlackThreadTS: "111.222",
	}
}

func documentPostEvent(t *testing.T, e *env) *model.TemplateEvent {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	gt.NoError(t, err)
	e.ci.key = &key.PublicKey

	return &model.TemplateEvent{
		TemplateName: "test_report",
		Variables: map[string]string{
			"series":        "DMTR",
			"serial_number": "141",
		},
		GitHubRepo:    "https://github.com/lsst-dm/dmtr-141",
		SlackUsername: "U123",
		SlackChannel:  "C123",
		SlackThreadTS: "111.222",
	}
}

func TestTechnotePostrender(t *testing.T) {
	ctx := context.Background()

	t.Run("non-latex technotes are a no-op", func(t *testing.T) {
		e := newEnv()
		event := technotePostEvent()
		event.TemplateName = "technote_rst"

		gt.NoError(t, e.workflows.TechnotePostrender(ctx, event))
		gt.Equal(t, len(e.repoCfg.requests), 0)
		gt.Equal(t, len(e.github.prCalls), 0)
	})

	t.Run("latex technote gets a submodule PR", func(t *testing.T) {
		e := newEnv()
		event := technotePostEvent()

		gt.NoError(t, e.workflows.TechnotePostrender(ctx, event))

		gt.Equal(t, len(e.repoCfg.requests), 1)
		req := e.repoCfg.requests[0]
		gt.Equal(t, req.RepoURL, "https://github.com/lsst-sqre/sqr-032")
		gt.Equal(t, req.BranchName, "u/sqrbot/config")
		gt.NotNil(t, req.Submodule)
		gt.Equal(t, req.Submodule.Name, "lsst-texmf")
		gt.Equal(t, len(req.ExtraFiles), 0)

		gt.Equal(t, len(e.github.prCalls), 1)
		pr := e.github.prCalls[0]
		gt.Equal(t, pr.Head, "u/sqrbot/config")
		gt.Equal(t, pr.Base, "main")
		gt.String(t, pr.Body).Contains("https://sqr-032.lsst.io/v/u-sqrbot-config")

		gt.True(t, anyMessageContains(e.slack.messages, "lsst-texmf"))
	})

	t.Run("PR failure notifies but never fails the event", func(t *testing.T) {
		e := newEnv()
		e.repoCfg.err = errors.New("push rejected")
		event := technotePostEvent()

		gt.NoError(t, e.workflows.TechnotePostrender(ctx, event))
		gt.Equal(t, len(e.github.prCalls), 0)
		gt.True(t, anyMessageContains(e.slack.messages, "Contact SQuaRE"))
	})
}

func TestDocumentPostrender(t *testing.T) {
	ctx := context.Background()

	t.Run("non-latex documents are a no-op", func(t *testing.T) {
		e := newEnv()
		event := documentPostEvent(t, e)
		event.TemplateName = "latex_lsstdoc"

		gt.NoError(t, e.workflows.DocumentPostrender(ctx, event))
		gt.Equal(t, len(e.ci.activated), 0)
	})

	t.Run("activation, sync and credentials PR", func(t *testing.T) {
		e := newEnv()
		event := documentPostEvent(t, e)

		gt.NoError(t, e.workflows.DocumentPostrender(ctx, event))

		gt.Equal(t, e.ci.activated, []string{"lsst-dm/dmtr-141"})
		gt.Equal(t, e.ci.synced, []string{"lsst-dm/dmtr-141"})

		gt.Equal(t, len(e.repoCfg.requests), 1)
		req := e.repoCfg.requests[0]
		travisYML, ok := req.ExtraFiles[".travis.yml"]
		gt.True(t, ok)
		gt.String(t, travisYML).Contains("secure:")
		gt.String(t, travisYML).Contains("language: generic")

		gt.True(t, anyMessageContains(e.slack.messages, "deployment credentials"))
	})

	t.Run("CI activation failure notifies and re-raises", func(t *testing.T) {
		e := newEnv()
		e.ci.activateErr = errors.New("travis down")
		event := documentPostEvent(t, e)

		gt.Error(t, e.workflows.DocumentPostrender(ctx, event))
		gt.Equal(t, len(e.ci.synced), 0)
		gt.Equal(t, len(e.repoCfg.requests), 0)
		gt.True(t, anyMessageContains(e.slack.messages, "activating CI"))
	})

	t.Run("account sync failure notifies and re-raises", func(t *testing.T) {
		e := newEnv()
		e.ci.syncErr = errors.New("sync stuck")
		event := documentPostEvent(t, e)

		gt.Error(t, e.workflows.DocumentPostrender(ctx, event))
		gt.Equal(t, len(e.repoCfg.requests), 0)
	})

	t.Run("credentials PR failure is swallowed", func(t *testing.T) {
		e := newEnv()
		e.ci.keyErr = errors.New("no key")
		event := documentPostEvent(t, e)

		gt.NoError(t, e.workflows.DocumentPostrender(ctx, event))
		gt.Equal(t, len(e.github.prCalls), 0)
		gt.True(t, anyMessageContains(e.slack.messages, "Contact SQuaRE"))
	})

	t.Run("unusable github_repo is fatal", func(t *testing.T) {
		e := newEnv()
		event := documentPostEvent(t, e)
		event.GitHubRepo = "nonsense"

		gt.Error(t, e.workflows.DocumentPostrender(ctx, event))
		gt.Equal(t, len(e.ci.activated), 0)
	})
}
