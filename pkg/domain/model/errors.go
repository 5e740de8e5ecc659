package model

import "github.com/m-mizutani/goerr/v2"

// Workflow classification errors. Workflows wrap these with goerr so the
// router boundary can log failures with their context attached.
var (
	// ErrAuthorNotFound means the author_id is not in authordb.yaml
	ErrAuthorNotFound = goerr.New("author not found in authordb.yaml")

	// ErrNoHandle means the document handle could not be determined from
	// any of the variables.
	ErrNoHandle = goerr.New("could not determine the document handle")

	// ErrMisroutedTechnote means a document request used a technote series
	// and should have been created from a technote template.
	ErrMisroutedTechnote = goerr.New("document series belongs to a technote")

	// ErrMissingVariable means a required template variable is absent
	ErrMissingVariable = goerr.New("required template variable is missing")

	// ErrWaitExhausted means a bounded poll gave up before the remote
	// condition was met.
	ErrWaitExhausted = goerr.New("bounded wait exhausted")
)
