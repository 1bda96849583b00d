// Package commit publishes a set of file changes as a new branch through
// individual git object calls: ref, commit and tree lookups of the base
// branch, then a new tree, a new commit and finally the branch ref. The ref
// is created last so an aborted run only leaves unreferenced objects behind.
package commit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/byte4ever/docs_sync/docsync/git"
)

// ErrInvalidChangeSet is returned before any remote
// call when the requested files cannot form a tree.
var ErrInvalidChangeSet = errors.New("invalid change set")

// Store is the capability set the Builder needs.
type Store interface {
	git.TreeReader
	git.ObjectWriter
}

// Request describes one commit on a fresh branch.
type Request struct {
	// BaseBranch is the branch the commit is based
	// on.
	BaseBranch string
	// BranchName is the branch to create. It must
	// not exist yet.
	BranchName string
	// Message is the commit message.
	Message string
	// Files are layered on top of the base tree;
	// unlisted paths are inherited unchanged.
	Files []git.FileChange
}

// Builder creates commits on one repository.
type Builder struct {
	Store Store
	Repo  git.RepoRef
}

// CreateBranchAndCommit builds the commit described by
// req and publishes it under req.BranchName. It returns
// the new commit SHA. Any failure aborts the remaining
// steps.
func (b *Builder) CreateBranchAndCommit(
	ctx context.Context,
	req Request,
) (string, error) {
	const errCtx = "creating branch and commit"

	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	baseSHA, err := b.Store.GetRef(
		ctx, b.Repo, git.HeadRef(req.BaseBranch),
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: resolve base branch: %w", errCtx, err,
		)
	}

	baseTree, err := b.Store.GetCommit(ctx, b.Repo, baseSHA)
	if err != nil {
		return "", fmt.Errorf(
			"%s: resolve base tree: %w", errCtx, err,
		)
	}

	treeSHA, err := b.Store.CreateTree(
		ctx, b.Repo, baseTree, req.Files,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	commitSHA, err := b.Store.CreateCommit(
		ctx, b.Repo, req.Message, treeSHA, []string{baseSHA},
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := b.Store.CreateRef(
		ctx, b.Repo, git.FullHeadRef(req.BranchName), commitSHA,
	); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"pushed commit",
		"repo", b.Repo.String(),
		"branch", req.BranchName,
		"commit", commitSHA,
		"files", len(req.Files),
	)

	return commitSHA, nil
}

// Validate checks the structural preconditions of req:
// branches set, at least one file, unique non-empty
// paths and a SHA on every non-deleting change.
func (r Request) Validate() error {
	switch {
	case r.BaseBranch == "":
		return fmt.Errorf("%w: base branch must be set", ErrInvalidChangeSet)
	case r.BranchName == "":
		return fmt.Errorf("%w: branch name must be set", ErrInvalidChangeSet)
	case len(r.Files) == 0:
		return fmt.Errorf("%w: no files to commit", ErrInvalidChangeSet)
	}

	seen := make(map[string]struct{}, len(r.Files))

	for i, f := range r.Files {
		if f.Path == "" {
			return fmt.Errorf(
				"%w: file %d has no path", ErrInvalidChangeSet, i,
			)
		}

		if !f.Delete && f.SHA == "" {
			return fmt.Errorf(
				"%w: %s has no blob sha", ErrInvalidChangeSet, f.Path,
			)
		}

		if _, dup := seen[f.Path]; dup {
			return fmt.Errorf(
				"%w: %s listed twice", ErrInvalidChangeSet, f.Path,
			)
		}

		seen[f.Path] = struct{}{}
	}

	return nil
}
