package git

import "context"

// Pattern: Strategy -- swap the hosting API without
// changing the sync logic. Each interface is the
// capability set one component needs.

// TreeReader resolves refs, commits and single-level
// tree listings.
type TreeReader interface {
	// GetRef returns the commit SHA a ref such as
	// "heads/main" points at.
	GetRef(ctx context.Context, repo RepoRef, ref string) (string, error)
	// GetCommit returns the root tree SHA of a commit.
	GetCommit(ctx context.Context, repo RepoRef, sha string) (string, error)
	// GetTree lists one level of a tree object.
	GetTree(ctx context.Context, repo RepoRef, sha string) ([]TreeLeaf, error)
}

// ObjectWriter creates git objects and moves refs.
type ObjectWriter interface {
	CreateBlob(
		ctx context.Context,
		repo RepoRef,
		content string,
		encoding Encoding,
	) (string, error)
	// CreateTree layers files on top of baseTree
	// with mode FileMode and type blob.
	CreateTree(
		ctx context.Context,
		repo RepoRef,
		baseTree string,
		files []FileChange,
	) (string, error)
	CreateCommit(
		ctx context.Context,
		repo RepoRef,
		message string,
		tree string,
		parents []string,
	) (string, error)
	// CreateRef creates a fully qualified ref
	// ("refs/heads/<branch>").
	CreateRef(ctx context.Context, repo RepoRef, ref string, sha string) error
	UpdateRef(
		ctx context.Context,
		repo RepoRef,
		ref string,
		sha string,
		force bool,
	) error
	// DeleteRef deletes a short ref ("heads/<branch>").
	DeleteRef(ctx context.Context, repo RepoRef, ref string) error
}

// PullRequests manages pull requests and their issue
// thread.
type PullRequests interface {
	CreatePullRequest(
		ctx context.Context,
		repo RepoRef,
		pr NewPullRequest,
	) (PullRequest, error)
	// MergePullRequest fails when the hosting
	// platform rejects the merge (conflict, branch
	// protection).
	MergePullRequest(
		ctx context.Context,
		repo RepoRef,
		number int,
		method string,
	) error
	UpdatePullRequestState(
		ctx context.Context,
		repo RepoRef,
		number int,
		state string,
	) error
	CreateIssueComment(
		ctx context.Context,
		repo RepoRef,
		number int,
		body string,
	) error
}

// ObjectStore is the full remote capability set.
type ObjectStore interface {
	TreeReader
	ObjectWriter
	PullRequests
}
