package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// TechnotePrerender handles a prerender event for technote templates, where
// the repository name is the next free number in the document series.
func (w *Workflows) TechnotePrerender(ctx context.Context, event *model.TemplateEvent) error {
	logger := ctxlog.From(ctx)
	logger.Info("Handling technote prerender", "template_name", event.TemplateName)

	event.SetVar("title", CleanStringWhitespace(event.Var("title")))

	renderReady := event.Clone()

	// Validate author_id before any repository exists. A bad ID is the most
	// common user mistake and must not leave an orphaned repo behind.
	if authorID := event.Var("author_id"); authorID != "" {
		author, err := w.authors.GetAuthor(ctx, authorID)
		if err != nil {
			logger.Error("Failed to find author in authordb.yaml",
				"author_id", authorID, "error", err)
			w.notify(ctx, event, fmt.Sprintf(
				"Something went wrong getting your author information from "+
					"`authordb.yaml`. Check that your author ID is correct at "+
					"http://ls.st/uyr and try again. You provided: `%s`.", authorID))
			w.echoInput(ctx, event)
			return err
		}
		renderReady.SetVar("first_author_given", author.GivenName)
		renderReady.SetVar("first_author_family", author.FamilyName)
		renderReady.SetVar("first_author_orcid", author.ORCID)
		renderReady.SetVar("first_author_affil_name", author.AffiliationName)
		renderReady.SetVar("first_author_affil_internal_id", author.AffiliationID)
		renderReady.SetVar("first_author_affil_address", author.AffiliationAddress)
	}

	org := event.Var("github_org")
	if org == "" {
		logger.Error("Event does not have a variables.github_org key")
		return goerr.Wrap(model.ErrMissingVariable, "github_org is required")
	}
	series := strings.ToLower(event.Var("series"))
	if series == "" {
		logger.Error("Event does not have a variables.series key")
		return goerr.Wrap(model.ErrMissingVariable, "series is required")
	}

	seriesNumbers, err := w.collectSeriesNumbers(ctx, org, series)
	if err != nil {
		logger.Error("Failed to enumerate series repositories", "error", err)
		return err
	}
	logger.Info("Collected existing numbers for series",
		"series", series, "series_numbers", seriesNumbers)

	number, err := ProposeNumber(seriesNumbers)
	if err != nil {
		return err
	}
	serialNumber := fmt.Sprintf("%03d", number)
	repoName := fmt.Sprintf("%s-%s", series, serialNumber)
	slug := repoName
	logger.Info("Selected new technote repo name", "name", repoName, "org", org)

	repo, err := w.github.CreateRepo(ctx, org, repoName, &model.RepoOptions{
		Homepage:    docsURL(slug),
		Description: event.Var("title"),
	})
	if err != nil {
		logger.Error("Error creating the GitHub repository", "error", err)
		w.repoCreationFailed(ctx, event, org, repoName)
		if event.HasUser() {
			w.echoInput(ctx, event)
		}
		return err
	}
	logger.Info("Created repo", "url", repo.HTMLURL)

	// Docs registration is recoverable: the technote still renders, the
	// docs just lag behind.
	w.registerDocs(ctx, event, &model.LTDProductRequest{
		Slug:       slug,
		Title:      event.Var("title"),
		GitHubRepo: repo.HTMLURL,
	})

	if event.HasUser() {
		realName, err := w.slack.UserRealName(ctx, event.SlackUsername)
		if err != nil {
			logger.Warn("Failed to resolve Slack user for author fallback",
				"user", event.SlackUsername, "error", err)
		} else {
			renderReady.FillVar("first_author", realName)
		}
	}

	renderReady.GitHubRepo = repo.HTMLURL
	renderReady.SetVar("serial_number", serialNumber)
	return w.publishRenderReady(ctx, renderReady)
}

// collectSeriesNumbers walks every repository in the organization and
// extracts the serial numbers already used by the series.
func (w *Workflows) collectSeriesNumbers(ctx context.Context, org, series string) ([]int, error) {
	pattern, err := regexp.Compile("^" + regexp.QuoteMeta(series) + `-(\d+)$`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compile series pattern", goerr.V("series", series))
	}

	names, err := w.github.ListOrgRepoNames(ctx, org)
	if err != nil {
		return nil, err
	}

	var numbers []int
	for _, name := range names {
		m := pattern.FindStringSubmatch(strings.ToLower(name))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

// registerDocs registers the docs product and tells the user where the docs
// will appear. Failures notify the user and are swallowed.
func (w *Workflows) registerDocs(ctx context.Context, event *model.TemplateEvent, req *model.LTDProductRequest) {
	logger := ctxlog.From(ctx)

	product, err := w.ltd.RegisterProduct(ctx, req)
	if err != nil {
		logger.Error("Failed to create the LTD product", "ltd_slug", req.Slug, "error", err)
		w.notify(ctx, event,
			"Something went wrong setting up _LSST the Docs._ I will "+
				"continue to configure the project, but docs won't be "+
				"available right away. Contact SQuaRE for help.")
		if event.HasUser() {
			w.echoInput(ctx, event)
		}
		return
	}

	w.notify(ctx, event, fmt.Sprintf(
		"<@%s>, the documentation URL will be:\n\n%s.\n\n"+
			"_That page will give a 404 error until the first build "+
			"completes. Hold tight!_", event.SlackUsername, product.PublishedURL))
}
