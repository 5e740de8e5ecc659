package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/ctxlog"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

// EmbeddedDocsCredentials are deployment credentials encrypted into the CI
// configuration of documents that upload their own builds.
type EmbeddedDocsCredentials struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LTDUsername        string
	LTDPassword        string
}

// WorkflowsConfig assembles the provider clients and settings shared by all
// workflow handlers. The clients are process-wide and read-only from the
// handlers' perspective.
type WorkflowsConfig struct {
	GitHub         interfaces.GitHubClient
	Slack          interfaces.SlackClient
	LTD            interfaces.LTDClient
	CI             interfaces.CIClient
	Authors        interfaces.AuthorStore
	RepoConfig     interfaces.RepoConfigurer
	Publisher      interfaces.RenderReadyPublisher
	GitHubUsername string
	EmbedCreds     EmbeddedDocsCredentials

	// BranchGrace is how long to wait after pushing a branch before opening
	// a pull request from it. Propagation headroom, not a guarantee.
	BranchGrace time.Duration
}

// Workflows implements the per-(template-class, lifecycle-phase) handlers
type Workflows struct {
	github         interfaces.GitHubClient
	slack          interfaces.SlackClient
	ltd            interfaces.LTDClient
	ci             interfaces.CIClient
	authors        interfaces.AuthorStore
	repoConfig     interfaces.RepoConfigurer
	publisher      interfaces.RenderReadyPublisher
	githubUsername string
	embedCreds     EmbeddedDocsCredentials
	branchGrace    time.Duration

	now func() time.Time
}

// NewWorkflows creates the workflow handlers
func NewWorkflows(cfg *WorkflowsConfig) *Workflows {
	grace := cfg.BranchGrace
	if grace == 0 {
		grace = 10 * time.Second
	}
	return &Workflows{
		github:         cfg.GitHub,
		slack:          cfg.Slack,
		ltd:            cfg.LTD,
		ci:             cfg.CI,
		authors:        cfg.Authors,
		repoConfig:     cfg.RepoConfig,
		publisher:      cfg.Publisher,
		githubUsername: cfg.GitHubUsername,
		embedCreds:     cfg.EmbedCreds,
		branchGrace:    grace,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// notify posts a threaded Slack message to the event's user. Events without
// a user identity are not notified anywhere. Notification failures are
// logged, never propagated: a broken chat must not change workflow outcome.
func (w *Workflows) notify(ctx context.Context, event *model.TemplateEvent, text string) {
	if !event.HasUser() {
		return
	}
	if err := w.slack.PostThreadMessage(ctx, event.SlackChannel, event.SlackThreadTS, text); err != nil {
		ctxlog.From(ctx).Warn("Failed to post Slack notification", "error", err)
	}
}

// echoInput posts the user's raw input back to the thread for debugging
func (w *Workflows) echoInput(ctx context.Context, event *model.TemplateEvent) {
	text := fmt.Sprintf("Here's what you sent me:\n\n```\n%s```\n", event.FormatVariables())
	w.notify(ctx, event, text)
}

// publishRenderReady stamps and publishes an enriched event, waiting for
// broker acknowledgment.
func (w *Workflows) publishRenderReady(ctx context.Context, event *model.TemplateEvent) error {
	event.RetryCount = 0
	event.InitialTimestamp = w.now()

	if err := w.publisher.Publish(ctx, event); err != nil {
		return err
	}
	ctxlog.From(ctx).Info("Sent render_ready message",
		"template_name", event.TemplateName,
		"github_repo", event.GitHubRepo,
	)
	return nil
}

// docsURL predicts the published documentation URL for a slug
func docsURL(slug string) string {
	return "https://" + slug + ".lsst.io"
}

// repoCreationFailed sends the standard apology for a failed repository
// creation, naming the exact identity that was attempted.
func (w *Workflows) repoCreationFailed(ctx context.Context, event *model.TemplateEvent, org, repo string) {
	if !event.HasUser() {
		return
	}
	w.notify(ctx, event, fmt.Sprintf(
		"<@%s>, oh no! :slightly_frowning_face:, something went wrong when "+
			"I tried to create a GitHub repo.\n\n"+
			"I can't do anything to fix it. Could you ask someone at SQuaRE "+
			"to look into it?", event.SlackUsername))
	w.notify(ctx, event, fmt.Sprintf("This is the repo I tried: `%s/%s`.", org, repo))
}
