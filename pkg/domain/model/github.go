package model

// RepoOptions carries the optional fields of a repository creation request
type RepoOptions struct {
	Homepage    string
	Description string
}

// Repository is the subset of the created repository resource the workflows
// care about.
type Repository struct {
	Name    string
	HTMLURL string
}

// GitHubUser identifies the bot account used for commits and pull requests
type GitHubUser struct {
	Login string
	Name  string
	Email string
}

// PullRequestSpec describes a pull request to open
type PullRequestSpec struct {
	Title string
	Body  string
	Head  string
	Base  string
}

// PullRequest is the created pull request resource
type PullRequest struct {
	Number  int
	HTMLURL string
}
