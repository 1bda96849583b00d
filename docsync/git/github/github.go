package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/docs_sync/docsync/git"
)

// ErrNotMerged is returned when GitHub answers a merge
// request without merging the pull request.
var ErrNotMerged = errors.New("pull request not merged")

var _ git.ObjectStore = (*Store)(nil)

// Config holds the settings needed to talk to the
// GitHub API.
type Config struct {
	// AccessToken is a personal access token,
	// GITHUB_TOKEN or GitHub App token used for
	// authentication.
	AccessToken string
	// APIURL is an optional REST API root such as
	// "https://git.corp.example.com/api/v3". It takes
	// precedence over EnterpriseHost.
	APIURL string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
}

// Store talks to the git database, pull request and
// issue endpoints of GitHub.
//
// Pattern: Strategy -- implements git.ObjectStore.
type Store struct {
	client *gh.Client
}

// NewStore validates cfg and returns a Store ready to
// issue API calls.
func NewStore(cfg Config) (*Store, error) {
	const errCtx = "creating github store"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	client := gh.NewClient(nil).
		WithAuthToken(cfg.AccessToken)

	baseURL, uploadURL := apiURLs(cfg)
	if baseURL != "" {
		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	return &Store{client: client}, nil
}

// apiURLs returns the base and upload URLs for a non
// default API endpoint, or empty strings for
// github.com.
func apiURLs(cfg Config) (string, string) {
	switch {
	case cfg.APIURL != "" &&
		cfg.APIURL != "https://api.github.com":
		return cfg.APIURL, cfg.APIURL
	case cfg.EnterpriseHost != "":
		return "https://" + cfg.EnterpriseHost + "/api/v3/",
			"https://" + cfg.EnterpriseHost + "/api/uploads/"
	default:
		return "", ""
	}
}

// GetRef returns the commit SHA ref points at.
func (s *Store) GetRef(
	ctx context.Context,
	repo git.RepoRef,
	ref string,
) (string, error) {
	const errCtx = "getting ref"

	r, resp, err := s.client.Git.GetRef(
		ctx, repo.Owner, repo.Name, ref,
	)
	if err != nil {
		return "", failure(errCtx, ref, resp, err)
	}

	return r.GetObject().GetSHA(), nil
}

// GetCommit returns the root tree SHA of a commit.
func (s *Store) GetCommit(
	ctx context.Context,
	repo git.RepoRef,
	sha string,
) (string, error) {
	const errCtx = "getting commit"

	c, resp, err := s.client.Git.GetCommit(
		ctx, repo.Owner, repo.Name, sha,
	)
	if err != nil {
		return "", failure(errCtx, sha, resp, err)
	}

	return c.GetTree().GetSHA(), nil
}

// GetTree lists one level of the tree sha.
func (s *Store) GetTree(
	ctx context.Context,
	repo git.RepoRef,
	sha string,
) ([]git.TreeLeaf, error) {
	const errCtx = "getting tree"

	t, resp, err := s.client.Git.GetTree(
		ctx, repo.Owner, repo.Name, sha, false,
	)
	if err != nil {
		return nil, failure(errCtx, sha, resp, err)
	}

	leaves := make([]git.TreeLeaf, 0, len(t.Entries))
	for _, e := range t.Entries {
		leaves = append(leaves, git.TreeLeaf{
			Path: e.GetPath(),
			Type: git.ObjectType(e.GetType()),
			SHA:  e.GetSHA(),
		})
	}

	return leaves, nil
}

// CreateBlob stores content and returns its SHA.
func (s *Store) CreateBlob(
	ctx context.Context,
	repo git.RepoRef,
	content string,
	encoding git.Encoding,
) (string, error) {
	const errCtx = "creating blob"

	if encoding == "" {
		encoding = git.EncodingUTF8
	}

	b, resp, err := s.client.Git.CreateBlob(
		ctx, repo.Owner, repo.Name, &gh.Blob{
			Content:  gh.Ptr(content),
			Encoding: gh.Ptr(string(encoding)),
		},
	)
	if err != nil {
		return "", failure(errCtx, repo.String(), resp, err)
	}

	return b.GetSHA(), nil
}

// CreateTree creates a tree from files layered on top
// of baseTree. Deletions are sent with a null SHA.
func (s *Store) CreateTree(
	ctx context.Context,
	repo git.RepoRef,
	baseTree string,
	files []git.FileChange,
) (string, error) {
	const errCtx = "creating tree"

	entries := make([]*gh.TreeEntry, 0, len(files))
	for _, f := range files {
		e := &gh.TreeEntry{
			Path: gh.Ptr(f.Path),
			Mode: gh.Ptr(git.FileMode),
			Type: gh.Ptr(string(git.TypeBlob)),
		}

		if !f.Delete {
			e.SHA = gh.Ptr(f.SHA)
		}

		entries = append(entries, e)
	}

	t, resp, err := s.client.Git.CreateTree(
		ctx, repo.Owner, repo.Name, baseTree, entries,
	)
	if err != nil {
		return "", failure(errCtx, baseTree, resp, err)
	}

	return t.GetSHA(), nil
}

// CreateCommit creates a commit object and returns its
// SHA.
func (s *Store) CreateCommit(
	ctx context.Context,
	repo git.RepoRef,
	message string,
	tree string,
	parents []string,
) (string, error) {
	const errCtx = "creating commit"

	pc := make([]*gh.Commit, 0, len(parents))
	for _, p := range parents {
		pc = append(pc, &gh.Commit{SHA: gh.Ptr(p)})
	}

	c, resp, err := s.client.Git.CreateCommit(
		ctx, repo.Owner, repo.Name, &gh.Commit{
			Message: gh.Ptr(message),
			Tree:    &gh.Tree{SHA: gh.Ptr(tree)},
			Parents: pc,
		}, nil,
	)
	if err != nil {
		return "", failure(errCtx, tree, resp, err)
	}

	return c.GetSHA(), nil
}

// CreateRef creates ref pointing at sha.
func (s *Store) CreateRef(
	ctx context.Context,
	repo git.RepoRef,
	ref string,
	sha string,
) error {
	const errCtx = "creating ref"

	_, resp, err := s.client.Git.CreateRef(
		ctx, repo.Owner, repo.Name, &gh.Reference{
			Ref:    gh.Ptr(ref),
			Object: &gh.GitObject{SHA: gh.Ptr(sha)},
		},
	)
	if err != nil {
		return failure(errCtx, ref, resp, err)
	}

	return nil
}

// UpdateRef moves ref to sha.
func (s *Store) UpdateRef(
	ctx context.Context,
	repo git.RepoRef,
	ref string,
	sha string,
	force bool,
) error {
	const errCtx = "updating ref"

	_, resp, err := s.client.Git.UpdateRef(
		ctx, repo.Owner, repo.Name, &gh.Reference{
			Ref:    gh.Ptr(ref),
			Object: &gh.GitObject{SHA: gh.Ptr(sha)},
		}, force,
	)
	if err != nil {
		return failure(errCtx, ref, resp, err)
	}

	return nil
}

// DeleteRef deletes ref.
func (s *Store) DeleteRef(
	ctx context.Context,
	repo git.RepoRef,
	ref string,
) error {
	const errCtx = "deleting ref"

	resp, err := s.client.Git.DeleteRef(
		ctx, repo.Owner, repo.Name, ref,
	)
	if err != nil {
		return failure(errCtx, ref, resp, err)
	}

	return nil
}

// CreatePullRequest opens a pull request from pr.Head
// into pr.Base.
func (s *Store) CreatePullRequest(
	ctx context.Context,
	repo git.RepoRef,
	pr git.NewPullRequest,
) (git.PullRequest, error) {
	const errCtx = "creating github pull request"

	created, resp, err := s.client.PullRequests.Create(
		ctx, repo.Owner, repo.Name, &gh.NewPullRequest{
			Title: gh.Ptr(pr.Title),
			Head:  gh.Ptr(pr.Head),
			Base:  gh.Ptr(pr.Base),
			Body:  gh.Ptr(pr.Body),
		},
	)
	if err != nil {
		return git.PullRequest{}, failure(
			errCtx, pr.Head, resp, err,
		)
	}

	slog.Info(
		"created pull request",
		"url", created.GetHTMLURL(),
	)

	return git.PullRequest{
		Number: created.GetNumber(),
		Head:   pr.Head,
		Base:   pr.Base,
		Title:  created.GetTitle(),
		Body:   created.GetBody(),
		URL:    created.GetHTMLURL(),
	}, nil
}

// MergePullRequest merges the pull request with
// method. A response with merged=false is reported as
// ErrNotMerged.
func (s *Store) MergePullRequest(
	ctx context.Context,
	repo git.RepoRef,
	number int,
	method string,
) error {
	const errCtx = "merging pull request"

	res, resp, err := s.client.PullRequests.Merge(
		ctx, repo.Owner, repo.Name, number, "",
		&gh.PullRequestOptions{MergeMethod: method},
	)
	if err != nil {
		return failure(
			errCtx, fmt.Sprintf("#%d", number), resp, err,
		)
	}

	if !res.GetMerged() {
		return fmt.Errorf(
			"%s: #%d: %w: %s",
			errCtx, number, ErrNotMerged, res.GetMessage(),
		)
	}

	return nil
}

// UpdatePullRequestState sets the state ("open" or
// "closed") of a pull request.
func (s *Store) UpdatePullRequestState(
	ctx context.Context,
	repo git.RepoRef,
	number int,
	state string,
) error {
	const errCtx = "updating pull request"

	_, resp, err := s.client.PullRequests.Edit(
		ctx, repo.Owner, repo.Name, number,
		&gh.PullRequest{State: gh.Ptr(state)},
	)
	if err != nil {
		return failure(
			errCtx, fmt.Sprintf("#%d", number), resp, err,
		)
	}

	return nil
}

// CreateIssueComment posts body on the issue thread of
// number.
func (s *Store) CreateIssueComment(
	ctx context.Context,
	repo git.RepoRef,
	number int,
	body string,
) error {
	const errCtx = "creating issue comment"

	_, resp, err := s.client.Issues.CreateComment(
		ctx, repo.Owner, repo.Name, number,
		&gh.IssueComment{Body: gh.Ptr(body)},
	)
	if err != nil {
		return failure(
			errCtx, fmt.Sprintf("#%d", number), resp, err,
		)
	}

	return nil
}

// failure logs the response body for debugging and
// wraps err.
func failure(
	errCtx string,
	subject string,
	resp *gh.Response,
	err error,
) error {
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close() //nolint:errcheck

		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			slog.Warn(
				"cannot read response body",
				"error", readErr,
			)
		} else if len(rb) > 0 {
			slog.Warn(
				"github response",
				"status", resp.StatusCode,
				"body", string(rb),
			)
		}
	}

	return fmt.Errorf("%s: %s: %w", errCtx, subject, err)
}
