package commitmsg

import (
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/docs_sync/docsync/git"
)

const (
	defaultCommitMessage = `Documentation sync [from {OWN_REPO}]

Automatic synchronization triggered via GitHub Action.
This sync refers to the commit {COMMIT_URL}`

	defaultTitle = "Docs sync ({OWN_REPO})"

	defaultBody = `Documentation synchronization from GitHub Actions.

This update refers to the following commit:

{COMMIT_URL}`

	defaultMergeFailure = `Failed to merge pull-request to branch "{BASE_BRANCH}"`
)

// Templates holds the text templates of a run. Empty
// fields fall back to DefaultTemplates.
type Templates struct {
	CommitMessage    string `yaml:"commit_message"`
	PullRequestTitle string `yaml:"pull_request_title"`
	PullRequestBody  string `yaml:"pull_request_body"`
	MergeFailure     string `yaml:"merge_failure"`
}

// DefaultTemplates returns the built-in wording.
func DefaultTemplates() Templates {
	return Templates{
		CommitMessage:    defaultCommitMessage,
		PullRequestTitle: defaultTitle,
		PullRequestBody:  defaultBody,
		MergeFailure:     defaultMergeFailure,
	}
}

// WithDefaults fills empty fields from
// DefaultTemplates.
func (t Templates) WithDefaults() Templates {
	d := DefaultTemplates()

	if t.CommitMessage == "" {
		t.CommitMessage = d.CommitMessage
	}

	if t.PullRequestTitle == "" {
		t.PullRequestTitle = d.PullRequestTitle
	}

	if t.PullRequestBody == "" {
		t.PullRequestBody = d.PullRequestBody
	}

	if t.MergeFailure == "" {
		t.MergeFailure = d.MergeFailure
	}

	return t
}

// Vars are the values substituted into templates.
type Vars struct {
	Own        git.RepoRef
	Upstream   git.RepoRef
	SourceSHA  string
	ServerURL  string
	BaseBranch string
	Branch     string
}

// Context returns the placeholder map of v.
func (v Vars) Context() map[string]any {
	return map[string]any{
		"OWN_REPO":      v.Own.String(),
		"UPSTREAM_REPO": v.Upstream.String(),
		"SOURCE_SHA":    v.SourceSHA,
		"COMMIT_URL":    v.CommitURL(),
		"BASE_BRANCH":   v.BaseBranch,
		"BRANCH":        v.Branch,
	}
}

// CommitURL links the source commit, or the source
// repository when the SHA is unknown.
func (v Vars) CommitURL() string {
	server := strings.TrimSuffix(v.ServerURL, "/")
	if server == "" {
		server = "https://github.com"
	}

	if v.SourceSHA == "" {
		return server + "/" + v.Own.String()
	}

	return server + "/" + v.Own.String() + "/commit/" + v.SourceSHA
}

// Texts are the rendered strings of a run.
type Texts struct {
	CommitMessage    string
	PullRequestTitle string
	PullRequestBody  string
	MergeFailure     string
}

// Render expands every template of t against v.
func (t Templates) Render(v Vars) Texts {
	t = t.WithDefaults()
	ctx := v.Context()

	return Texts{
		CommitMessage:    expand(t.CommitMessage, ctx),
		PullRequestTitle: expand(t.PullRequestTitle, ctx),
		PullRequestBody:  expand(t.PullRequestBody, ctx),
		MergeFailure:     expand(t.MergeFailure, ctx),
	}
}

func expand(tpl string, ctx map[string]any) string {
	return strings.TrimSpace(
		fasttemplate.ExecuteStringStd(tpl, "{", "}", ctx),
	)
}
