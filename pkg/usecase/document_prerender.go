package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

var handleRe = regexp.MustCompile(`^([A-Z]+)-([0-9]+)$`)

// DocumentPrerender handles a prerender event for DocuShare-class document
// templates, where the handle is pre-assigned rather than computed here.
func (w *Workflows) DocumentPrerender(ctx context.Context, event *model.TemplateEvent) error {
	logger := ctxlog.From(ctx)
	logger.Info("Handling document prerender", "template_name", event.TemplateName)

	event.SetVar("title", CleanStringWhitespace(event.Var("title")))

	handle, series, serialNumber, err := resolveHandle(event)
	if err != nil {
		logger.Error("Could not determine the document handle")
		w.notify(ctx, event, fmt.Sprintf(
			"<@%s>, oh no! I could not determine the document's handle."+
				"I can't do anything to fix it. Could you ask someone at "+
				"SQuaRE to look into it?", event.SlackUsername))
		return err
	}

	// Catch misrouted technotes before anything is created. Technote
	// handles are numbered by this service, not pre-assigned.
	if model.IsTechnoteHandle(series) {
		w.notify(ctx, event, fmt.Sprintf(
			"<@%s>, it looks like the document is actually a technote. "+
				"You'll need to use a technote-specific template.\n\n"+
				"Run `create project` again, but select a *Technote ...* "+
				"template instead.\n\n"+
				"This is the title you entered:\n\n> %s",
			event.SlackUsername, event.Var("title")))
		return goerr.Wrap(model.ErrMisroutedTechnote, "aborting document prerender",
			goerr.V("series", series),
			goerr.V("handle", handle))
	}

	org := event.Var("github_org")
	repoName := handle
	slug := strings.ToLower(repoName)

	repo, err := w.github.CreateRepo(ctx, org, repoName, &model.RepoOptions{
		Homepage:    docsURL(slug),
		Description: event.Var("title"),
	})
	if err != nil {
		logger.Error("Error creating the GitHub repository", "error", err)
		w.repoCreationFailed(ctx, event, org, repoName)
		return err
	}
	logger.Info("Created repo", "url", repo.HTMLURL)

	// Documents track the lsst_doc edition mode, unlike technotes
	w.registerDocs(ctx, event, &model.LTDProductRequest{
		Slug:       slug,
		Title:      event.Var("title"),
		GitHubRepo: repo.HTMLURL,
		MainMode:   model.LTDModeLsstDoc,
	})

	renderReady := event.Clone()
	renderReady.FillVar("series", series)
	renderReady.FillVar("serial_number", serialNumber)

	if event.HasUser() {
		realName, err := w.slack.UserRealName(ctx, event.SlackUsername)
		if err != nil {
			logger.Warn("Failed to resolve Slack user for author fallback",
				"user", event.SlackUsername, "error", err)
		} else {
			renderReady.FillVar("author", realName)
		}
	}

	renderReady.GitHubRepo = repo.HTMLURL
	return w.publishRenderReady(ctx, renderReady)
}

// resolveHandle determines the document handle, series and serial number
// from the template variables. An explicit handle wins; otherwise series
// plus serial_number build one; otherwise nothing can.
func resolveHandle(event *model.TemplateEvent) (handle, series, serialNumber string, err error) {
	handle = event.Var("handle")

	var m []string
	if handle != "" {
		m = handleRe.FindStringSubmatch(handle)
	}

	series = event.Var("series")
	if series == "" && m != nil {
		series = m[1]
	}

	serialNumber = event.Var("serial_number")
	if serialNumber == "" && m != nil {
		serialNumber = m[2]
	}

	if handle == "" {
		if series != "" && serialNumber != "" {
			handle = fmt.Sprintf("%s-%s", series, serialNumber)
		} else {
			return "", "", "", goerr.Wrap(model.ErrNoHandle, "no handle, series or serial_number",
				goerr.V("template_name", event.TemplateName))
		}
	}

	return handle, series, serialNumber, nil
}
