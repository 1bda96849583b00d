package commit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/docs_sync/docsync/commit"
	"github.com/byte4ever/docs_sync/docsync/git"
	"github.com/byte4ever/docs_sync/docsync/git/gittest"
)

var upstream = git.RepoRef{Owner: "acme", Name: "internal-docs"}

func TestCreateBranchAndCommit_call_sequence(t *testing.T) {
	t.Parallel()

	files := []git.FileChange{
		{Path: "docs/a/readme.md", SHA: "abc123"},
	}

	m := &gittest.MockStore{}
	m.On("GetRef", mock.Anything, upstream, "heads/main").
		Return("base-commit", nil).Once()
	m.On("GetCommit", mock.Anything, upstream, "base-commit").
		Return("base-tree", nil).Once()
	m.On("CreateTree", mock.Anything, upstream, "base-tree", files).
		Return("new-tree", nil).Once()
	m.On(
		"CreateCommit", mock.Anything, upstream,
		"sync docs", "new-tree", []string{"base-commit"},
	).Return("new-commit", nil).Once()
	m.On(
		"CreateRef", mock.Anything, upstream,
		"refs/heads/docs-acme-app", "new-commit",
	).Return(nil).Once()

	b := commit.Builder{Store: m, Repo: upstream}

	sha, err := b.CreateBranchAndCommit(
		context.Background(), commit.Request{
			BaseBranch: "main",
			BranchName: "docs-acme-app",
			Message:    "sync docs",
			Files:      files,
		},
	)

	require.NoError(t, err)
	assert.Equal(t, "new-commit", sha)
	assert.Equal(t, []string{
		"GetRef", "GetCommit", "CreateTree", "CreateCommit", "CreateRef",
	}, m.Methods())
	m.AssertExpectations(t)
}

func TestCreateBranchAndCommit_fails_fast(t *testing.T) {
	t.Parallel()

	errTest := errors.New("tree rejected")

	m := &gittest.MockStore{}
	m.On("GetRef", mock.Anything, upstream, "heads/main").
		Return("c", nil)
	m.On("GetCommit", mock.Anything, upstream, "c").
		Return("t", nil)
	m.On("CreateTree", mock.Anything, upstream, "t", mock.Anything).
		Return("", errTest)

	b := commit.Builder{Store: m, Repo: upstream}

	_, err := b.CreateBranchAndCommit(
		context.Background(), commit.Request{
			BaseBranch: "main",
			BranchName: "b",
			Message:    "m",
			Files:      []git.FileChange{{Path: "p", SHA: "s"}},
		},
	)

	assert.ErrorIs(t, err, errTest)
	assert.Equal(
		t, []string{"GetRef", "GetCommit", "CreateTree"}, m.Methods(),
	)
	m.AssertNotCalled(t, "CreateRef", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBranchAndCommit_invalid_request_makes_no_calls(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  commit.Request
		want string
	}{
		{
			name: "no files",
			req:  commit.Request{BaseBranch: "main", BranchName: "b"},
			want: "no files",
		},
		{
			name: "missing base branch",
			req: commit.Request{
				BranchName: "b",
				Files:      []git.FileChange{{Path: "p", SHA: "s"}},
			},
			want: "base branch",
		},
		{
			name: "missing branch name",
			req: commit.Request{
				BaseBranch: "main",
				Files:      []git.FileChange{{Path: "p", SHA: "s"}},
			},
			want: "branch name",
		},
		{
			name: "missing sha",
			req: commit.Request{
				BaseBranch: "main",
				BranchName: "b",
				Files:      []git.FileChange{{Path: "p"}},
			},
			want: "no blob sha",
		},
		{
			name: "missing path",
			req: commit.Request{
				BaseBranch: "main",
				BranchName: "b",
				Files:      []git.FileChange{{SHA: "s"}},
			},
			want: "no path",
		},
		{
			name: "duplicate path",
			req: commit.Request{
				BaseBranch: "main",
				BranchName: "b",
				Files: []git.FileChange{
					{Path: "p", SHA: "s"},
					{Path: "p", SHA: "t"},
				},
			},
			want: "listed twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := &gittest.MockStore{}
			b := commit.Builder{Store: m, Repo: upstream}

			_, err := b.CreateBranchAndCommit(context.Background(), tt.req)

			require.ErrorIs(t, err, commit.ErrInvalidChangeSet)
			assert.ErrorContains(t, err, tt.want)
			assert.Empty(t, m.Calls)
		})
	}
}

func TestRequest_Validate_allows_deletions_without_sha(t *testing.T) {
	t.Parallel()

	req := commit.Request{
		BaseBranch: "main",
		BranchName: "b",
		Files: []git.FileChange{
			{Path: "docs/x/a.md", SHA: "s"},
			{Path: "docs/x/old.md", Delete: true},
		},
	}

	assert.NoError(t, req.Validate())
}
