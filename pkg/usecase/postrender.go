package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
	"github.com/lsst-sqre/templatebot-aide/pkg/infra/travis"
	"github.com/lsst-sqre/templatebot-aide/pkg/utils/backoff"
)

// TechnotePostrender handles a postrender event for technote templates.
// LaTeX technotes get a pull request adding the lsst-texmf submodule; other
// technote formats need no follow-up. PR failures never fail the event.
func (w *Workflows) TechnotePostrender(ctx context.Context, event *model.TemplateEvent) error {
	logger := ctxlog.From(ctx)
	logger.Debug("Handling technote postrender", "template_name", event.TemplateName)

	if !model.IsLaTeXTemplate(event.TemplateName) {
		return nil
	}

	pr, err := w.prLatexSubmodules(ctx, event, nil)
	if err != nil {
		logger.Error("Failed to PR latex submodules for technote",
			"github_repo", event.GitHubRepo, "error", err)
		w.notify(ctx, event, fmt.Sprintf(
			"Something went wrong adding the lsst-texmf submodule to %s. "+
				"Contact SQuaRE for help.", event.GitHubRepo))
		return nil
	}

	w.notify(ctx, event, fmt.Sprintf(
		"<@%s>, I've submitted a pull request adding the `lsst-texmf` "+
			"submodule. It's optional but recommended:\n\n%s",
		event.SlackUsername, pr.HTMLURL))
	return nil
}

// DocumentPostrender handles a postrender event for document templates.
// LaTeX documents get CI activated and a pull request carrying the
// lsst-texmf submodule plus encrypted docs-deployment credentials. CI
// failures abort the workflow after notifying; PR failures are swallowed.
func (w *Workflows) DocumentPostrender(ctx context.Context, event *model.TemplateEvent) error {
	logger := ctxlog.From(ctx)
	logger.Debug("Handling document postrender", "template_name", event.TemplateName)

	if !model.IsLaTeXTemplate(event.TemplateName) {
		return nil
	}

	owner, repoName, ok := event.RepoOwnerAndName()
	if !ok {
		return goerr.New("postrender event has no usable github_repo",
			goerr.V("github_repo", event.GitHubRepo))
	}
	slug := owner + "/" + repoName

	if err := w.ci.Activate(ctx, slug); err != nil {
		logger.Error("Failed to activate CI", "slug", slug, "error", err)
		w.notify(ctx, event, fmt.Sprintf(
			"Something went wrong activating CI for %s. Contact SQuaRE for help.",
			event.GitHubRepo))
		return err
	}

	if err := w.ci.SyncAccount(ctx, slug); err != nil {
		logger.Error("Failed to sync CI account", "slug", slug, "error", err)
		w.notify(ctx, event, fmt.Sprintf(
			"Something went wrong syncing the CI account for %s. Contact SQuaRE for help.",
			event.GitHubRepo))
		return err
	}

	pr, err := w.prDeploymentCredentials(ctx, event, slug)
	if err != nil {
		logger.Error("Failed to PR deployment credentials",
			"github_repo", event.GitHubRepo, "error", err)
		w.notify(ctx, event, fmt.Sprintf(
			"Something went wrong adding the lsst-texmf submodule to %s. "+
				"Contact SQuaRE for help.", event.GitHubRepo))
		return nil
	}

	w.notify(ctx, event, fmt.Sprintf(
		"I've submitted a PR with deployment credentials. Go and merge it "+
			"to finish your document's set up!\n\n%s", pr.HTMLURL))
	return nil
}

// prDeploymentCredentials builds the CI configuration with encrypted
// deployment credentials and submits it with the submodule PR.
func (w *Workflows) prDeploymentCredentials(ctx context.Context, event *model.TemplateEvent, slug string) (*model.PullRequest, error) {
	key, err := w.ci.RepoPublicKey(ctx, slug)
	if err != nil {
		return nil, err
	}

	vars := []struct{ name, value string }{
		{"LTD_AWS_ID", w.embedCreds.AWSAccessKeyID},
		{"LTD_AWS_SECRET", w.embedCreds.AWSSecretAccessKey},
		{"LTD_USERNAME", w.embedCreds.LTDUsername},
		{"LTD_PASSWORD", w.embedCreds.LTDPassword},
	}
	secures := make([]string, 0, len(vars))
	for _, v := range vars {
		enc, err := travis.EncryptSecureVar(key, v.name, v.value)
		if err != nil {
			return nil, err
		}
		secures = append(secures, enc)
	}

	return w.prLatexSubmodules(ctx, event, map[string]string{
		".travis.yml": buildTravisYML(secures),
	})
}

// prLatexSubmodules pushes a configuration branch adding the lsst-texmf
// submodule (plus any extra files) and opens a pull request for it.
func (w *Workflows) prLatexSubmodules(ctx context.Context, event *model.TemplateEvent, extraFiles map[string]string) (*model.PullRequest, error) {
	logger := ctxlog.From(ctx)

	owner, repoName, ok := event.RepoOwnerAndName()
	if !ok {
		return nil, goerr.New("postrender event has no usable github_repo",
			goerr.V("github_repo", event.GitHubRepo))
	}

	ltdSlug := strings.ToLower(event.Var("series")) + "-" + event.Var("serial_number")
	ltdURL := docsURL(ltdSlug)

	botUser, err := w.github.AuthenticatedUser(ctx)
	if err != nil {
		return nil, err
	}

	branchName := fmt.Sprintf("u/%s/config", w.githubUsername)
	result, err := w.repoConfig.PushConfigBranch(ctx, &model.ConfigBranchRequest{
		RepoURL:       event.GitHubRepo,
		BranchName:    branchName,
		CommitMessage: "Add lsst-texmf submodule",
		AuthorName:    botUser.Name,
		AuthorEmail:   botUser.Email,
		Submodule: &model.SubmoduleSpec{
			Name:   "lsst-texmf",
			Path:   "lsst-texmf",
			URL:    "https://github.com/lsst/lsst-texmf.git",
			Branch: "main",
		},
		ExtraFiles: extraFiles,
	})
	if err != nil {
		return nil, err
	}

	// Give the hosting provider time to register the new branch before
	// opening a PR from it.
	if err := backoff.Sleep(ctx, w.branchGrace); err != nil {
		return nil, err
	}

	branchURL := ltdURL + "/v/" + strings.ReplaceAll(branchName, "/", "-")
	dashboardURL := ltdURL + "/v"
	body := fmt.Sprintf(
		"This pull request adds the [lsst-texmf](https://lsst-texmf.lsst.io) "+
			"submodule.\n\nYou should see the doc online at %s (once this "+
			"branch is built by GitHub Actions).\n\nThe edition dashboard "+
			"is: %s.\n\nThis PR is automatically generated. Feel free to "+
			"update this PR or the underlying branch if there's an issue.",
		branchURL, dashboardURL)

	pr, err := w.github.CreatePullRequest(ctx, owner, repoName, &model.PullRequestSpec{
		Title: "Add lsst-texmf submodule",
		Body:  body,
		Head:  result.Branch,
		Base:  result.BaseBranch,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Finished pushing lsst-texmf PR", "branch", branchName, "pr", pr.HTMLURL)
	return pr, nil
}

// buildTravisYML renders the CI configuration for a document that deploys
// its own builds, with encrypted credentials in the global environment.
func buildTravisYML(secures []string) string {
	var b strings.Builder
	b.WriteString("language: generic\nsudo: false\nservices:\n  - docker\nenv:\n  global:\n")
	for _, s := range secures {
		fmt.Fprintf(&b, "    - secure: %q\n", s)
	}
	return b.String()
}
