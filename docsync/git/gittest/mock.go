// Package gittest provides a testify mock of
// git.ObjectStore for package tests.
package gittest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/byte4ever/docs_sync/docsync/git"
)

var _ git.ObjectStore = (*MockStore)(nil)

// MockStore implements git.ObjectStore with
// testify/mock.
type MockStore struct {
	mock.Mock
}

// Methods returns the names of the recorded calls in
// call order.
func (m *MockStore) Methods() []string {
	names := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		names = append(names, c.Method)
	}

	return names
}

// GetRef implements git.TreeReader.
func (m *MockStore) GetRef(ctx context.Context, repo git.RepoRef, ref string) (string, error) {
	args := m.Called(ctx, repo, ref)
	return args.String(0), args.Error(1)
}

// GetCommit implements git.TreeReader.
func (m *MockStore) GetCommit(ctx context.Context, repo git.RepoRef, sha string) (string, error) {
	args := m.Called(ctx, repo, sha)
	return args.String(0), args.Error(1)
}

// GetTree implements git.TreeReader.
func (m *MockStore) GetTree(ctx context.Context, repo git.RepoRef, sha string) ([]git.TreeLeaf, error) {
	args := m.Called(ctx, repo, sha)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]git.TreeLeaf), args.Error(1)
}

// CreateBlob implements git.ObjectWriter.
func (m *MockStore) CreateBlob(
	ctx context.Context,
	repo git.RepoRef,
	content string,
	encoding git.Encoding,
) (string, error) {
	args := m.Called(ctx, repo, content, encoding)
	return args.String(0), args.Error(1)
}

// CreateTree implements git.ObjectWriter.
func (m *MockStore) CreateTree(
	ctx context.Context,
	repo git.RepoRef,
	baseTree string,
	files []git.FileChange,
) (string, error) {
	args := m.Called(ctx, repo, baseTree, files)
	return args.String(0), args.Error(1)
}

// CreateCommit implements git.ObjectWriter.
func (m *MockStore) CreateCommit(
	ctx context.Context,
	repo git.RepoRef,
	message string,
	tree string,
	parents []string,
) (string, error) {
	args := m.Called(ctx, repo, message, tree, parents)
	return args.String(0), args.Error(1)
}

// CreateRef implements git.ObjectWriter.
func (m *MockStore) CreateRef(ctx context.Context, repo git.RepoRef, ref string, sha string) error {
	args := m.Called(ctx, repo, ref, sha)
	return args.Error(0)
}

// UpdateRef implements git.ObjectWriter.
func (m *MockStore) UpdateRef(
	ctx context.Context,
	repo git.RepoRef,
	ref string,
	sha string,
	force bool,
) error {
	args := m.Called(ctx, repo, ref, sha, force)
	return args.Error(0)
}

// DeleteRef implements git.ObjectWriter.
func (m *MockStore) DeleteRef(ctx context.Context, repo git.RepoRef, ref string) error {
	args := m.Called(ctx, repo, ref)
	return args.Error(0)
}

// CreatePullRequest implements git.PullRequests.
func (m *MockStore) CreatePullRequest(
	ctx context.Context,
	repo git.RepoRef,
	pr git.NewPullRequest,
) (git.PullRequest, error) {
	args := m.Called(ctx, repo, pr)
	return args.Get(0).(git.PullRequest), args.Error(1)
}

// MergePullRequest implements git.PullRequests.
func (m *MockStore) MergePullRequest(
	ctx context.Context,
	repo git.RepoRef,
	number int,
	method string,
) error {
	args := m.Called(ctx, repo, number, method)
	return args.Error(0)
}

// UpdatePullRequestState implements git.PullRequests.
func (m *MockStore) UpdatePullRequestState(
	ctx context.Context,
	repo git.RepoRef,
	number int,
	state string,
) error {
	args := m.Called(ctx, repo, number, state)
	return args.Error(0)
}

// CreateIssueComment implements git.PullRequests.
func (m *MockStore) CreateIssueComment(
	ctx context.Context,
	repo git.RepoRef,
	number int,
	body string,
) error {
	args := m.Called(ctx, repo, number, body)
	return args.Error(0)
}
