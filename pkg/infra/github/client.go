package github

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/interfaces"
	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
)

type client struct {
	githubClient *github.Client
}

// NewClient creates a GitHub client authenticated with the bot's token
func NewClient(token string) interfaces.GitHubClient {
	return &client{
		githubClient: github.NewClient(nil).WithAuthToken(token),
	}
}

// CreateRepo creates an empty repository in an organization. The repository
// must stay empty so the render step can push the initial commit.
func (c *client) CreateRepo(ctx context.Context, org, name string, opts *model.RepoOptions) (*model.Repository, error) {
	repo := &github.Repository{
		Name:        github.Ptr(name),
		AutoInit:    github.Ptr(false),
		HasProjects: github.Ptr(false),
		HasWiki:     github.Ptr(false),
	}
	if opts != nil {
		if opts.Homepage != "" {
			repo.Homepage = github.Ptr(opts.Homepage)
		}
		if opts.Description != "" {
			repo.Description = github.Ptr(opts.Description)
		}
	}

	created, _, err := c.githubClient.Repositories.Create(ctx, org, repo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository",
			goerr.V("org", org),
			goerr.V("repo", name),
		)
	}

	return &model.Repository{
		Name:    created.GetName(),
		HTMLURL: created.GetHTMLURL(),
	}, nil
}

// ListOrgRepoNames returns the names of every repository in an organization,
// following pagination through the whole listing.
func (c *client) ListOrgRepoNames(ctx context.Context, org string) ([]string, error) {
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var names []string
	for {
		repos, resp, err := c.githubClient.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list org repositories", goerr.V("org", org))
		}
		for _, r := range repos {
			names = append(names, r.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}

// AuthenticatedUser returns the account behind the API token
func (c *client) AuthenticatedUser(ctx context.Context) (*model.GitHubUser, error) {
	user, _, err := c.githubClient.Users.Get(ctx, "")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get authenticated user")
	}

	return &model.GitHubUser{
		Login: user.GetLogin(),
		Name:  user.GetName(),
		Email: user.GetEmail(),
	}, nil
}

// CreatePullRequest opens a pull request
func (c *client) CreatePullRequest(ctx context.Context, owner, repo string, spec *model.PullRequestSpec) (*model.PullRequest, error) {
	pr, _, err := c.githubClient.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.Ptr(spec.Title),
		Body:  github.Ptr(spec.Body),
		Head:  github.Ptr(spec.Head),
		Base:  github.Ptr(spec.Base),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create pull request",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("head", spec.Head),
		)
	}

	return &model.PullRequest{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
	}, nil
}
