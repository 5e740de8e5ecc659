package usecase_test

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/lsst-sqre/templatebot-aide/pkg/domain/model"
	"github.com/lsst-sqre/templatebot-aide/pkg/usecase"
)

// stubGitHub records provider calls and serves canned responses
type stubGitHub struct {
	createCalls []string // "org/name"
	createErr   error
	createdURL  string

	repoNames []string
	listErr   error

	user *model.GitHubUser

	prCalls []*model.PullRequestSpec
	prErr   error
}

func (s *stubGitHub) CreateRepo(_ context.Context, org, name string, _ *model.RepoOptions) (*model.Repository, error) {
	s.createCalls = append(s.createCalls, org+"/"+name)
	if s.createErr != nil {
		return nil, s.createErr
	}
	url := s.createdURL
	if url == "" {
		url = fmt.Sprintf("https://github.com/%s/%s", org, name)
	}
	return &model.Repository{Name: name, HTMLURL: url}, nil
}

func (s *stubGitHub) ListOrgRepoNames(_ context.Context, _ string) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.repoNames, nil
}

func (s *stubGitHub) AuthenticatedUser(_ context.Context) (*model.GitHubUser, error) {
	if s.user != nil {
		return s.user, nil
	}
	return &model.GitHubUser{Login: "sqrbot", Name: "SQuaRE Bot", Email: "sqrbot@example.com"}, nil
}

func (s *stubGitHub) CreatePullRequest(_ context.Context, _, _ string, spec *model.PullRequestSpec) (*model.PullRequest, error) {
	s.prCalls = append(s.prCalls, spec)
	if s.prErr != nil {
		return nil, s.prErr
	}
	return &model.PullRequest{Number: 1, HTMLURL: "https://github.com/example/pr/1"}, nil
}

// stubSlack records posted messages
type stubSlack struct {
	messages []string
	realName string
	userErr  error
}

func (s *stubSlack) PostThreadMessage(_ context.Context, _, _, text string) error {
	s.messages = append(s.messages, text)
	return nil
}

func (s *stubSlack) UserRealName(_ context.Context, _ string) (string, error) {
	if s.userErr != nil {
		return "", s.userErr
	}
	if s.realName == "" {
		return "Jane Stacker", nil
	}
	return s.realName, nil
}

type stubLTD struct {
	requests []*model.LTDProductRequest
	err      error
}

func (s *stubLTD) RegisterProduct(_ context.Context, req *model.LTDProductRequest) (*model.LTDProduct, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &model.LTDProduct{Slug: req.Slug, PublishedURL: "https://" + req.Slug + ".lsst.io"}, nil
}

type stubCI struct {
	activated   []string
	synced      []string
	activateErr error
	syncErr     error
	key         *rsa.PublicKey
	keyErr      error
}

func (s *stubCI) Activate(_ context.Context, slug string) error {
	s.activated = append(s.activated, slug)
	return s.activateErr
}

func (s *stubCI) SyncAccount(_ context.Context, slug string) error {
	s.synced = append(s.synced, slug)
	return s.syncErr
}

func (s *stubCI) RepoPublicKey(_ context.Context, _ string) (*rsa.PublicKey, error) {
	if s.keyErr != nil {
		return nil, s.keyErr
	}
	return s.key, nil
}

type stubAuthors struct {
	authors map[string]*model.AuthorInfo
}

func (s *stubAuthors) GetAuthor(_ context.Context, id string) (*model.AuthorInfo, error) {
	if a, ok := s.authors[id]; ok {
		return a, nil
	}
	return nil, model.ErrAuthorNotFound
}

type stubRepoConfig struct {
	requests []*model.ConfigBranchRequest
	err      error
}

func (s *stubRepoConfig) PushConfigBranch(_ context.Context, req *model.ConfigBranchRequest) (*model.ConfigBranchResult, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &model.ConfigBranchResult{Branch: req.BranchName, BaseBranch: "main"}, nil
}

type stubPublisher struct {
	published []*model.TemplateEvent
	err       error
}

func (s *stubPublisher) Publish(_ context.Context, event *model.TemplateEvent) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, event)
	return nil
}

func (s *stubPublisher) Close() error { return nil }

// env bundles the stubs with a Workflows wired to them
type env struct {
	github    *stubGitHub
	slack     *stubSlack
	ltd       *stubLTD
	ci        *stubCI
	authors   *stubAuthors
	repoCfg   *stubRepoConfig
	publisher *stubPublisher
	workflows *usecase.Workflows
}

func newEnv() *env {
	e := &env{
		github:    &stubGitHub{},
		slack:     &stubSlack{},
		ltd:       &stubLTD{},
		ci:        &stubCI{},
		authors:   &stubAuthors{authors: map[string]*model.AuthorInfo{}},
		repoCfg:   &stubRepoConfig{},
		publisher: &stubPublisher{},
	}
	e.workflows = usecase.NewWorkflows(&usecase.WorkflowsConfig{
		GitHub:         e.github,
		Slack:          e.slack,
		LTD:            e.ltd,
		CI:             e.ci,
		Authors:        e.authors,
		RepoConfig:     e.repoCfg,
		Publisher:      e.publisher,
		GitHubUsername: "sqrbot",
		EmbedCreds: usecase.EmbeddedDocsCredentials{
			AWSAccessKeyID:     "AKIATEST",
			AWSSecretAccessKey: "secret",
			LTDUsername:        "ltd-user",
			LTDPassword:        "ltd-pass",
		},
		BranchGrace: 1, // effectively no wait in tests
	})
	return e
}
