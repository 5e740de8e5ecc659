package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// GenericPrerender handles a prerender event for templates whose GitHub
// organization and repository come directly from the template variables.
// It creates the repository and publishes a render_ready event.
func (w *Workflows) GenericPrerender(ctx context.Context, event *model.TemplateEvent) error {
	logger := ctxlog.From(ctx)
	logger.Info("Handling generic prerender", "template_name", event.TemplateName)

	org := event.Var("github_org")
	if org == "" {
		logger.Error("Event does not have a variables.github_org key")
		return goerr.Wrap(model.ErrMissingVariable, "github_org is required",
			goerr.V("template_name", event.TemplateName))
	}

	var repoName string
	if event.TemplateName == "stack_package" {
		repoName = event.Var("package_name")
	} else {
		repoName = event.Var("name")
	}
	if repoName == "" {
		logger.Error("Event does not have a repository name variable",
			"template_name", event.TemplateName)
		return goerr.Wrap(model.ErrMissingVariable, "repository name variable is required",
			goerr.V("template_name", event.TemplateName))
	}

	repo, err := w.github.CreateRepo(ctx, org, repoName, nil)
	if err != nil {
		logger.Error("Error creating the GitHub repository", "error", err)
		w.repoCreationFailed(ctx, event, org, repoName)
		return err
	}
	logger.Info("Created repo", "url", repo.HTMLURL)

	renderReady := event.Clone()
	renderReady.GitHubRepo = repo.HTMLURL
	return w.publishRenderReady(ctx, renderReady)
}
