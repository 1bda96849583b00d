// Package pull drives the lifecycle of a documentation pull request:
// Created, then Merged or ClosedAndCleaned. A rejected merge runs a
// compensating sequence (comment, close, delete branch) with no rollback of
// its own.
package pull

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/byte4ever/docs_sync/docsync/git"
)

// ErrCleanupFailed wraps a failure of the compensating
// sequence after a rejected merge.
var ErrCleanupFailed = errors.New("pull request cleanup failed")

// State is the lifecycle state of a pull request.
type State int

const (
	// StateCreated is an open pull request left for
	// review.
	StateCreated State = iota
	// StateMerged is a pull request merged into its
	// base branch.
	StateMerged
	// StateClosedAndCleaned is a pull request closed
	// after a rejected merge, with its branch deleted.
	StateClosedAndCleaned
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateMerged:
		return "merged"
	case StateClosedAndCleaned:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Store is the capability set the Manager needs.
type Store interface {
	git.PullRequests
	DeleteRef(ctx context.Context, repo git.RepoRef, ref string) error
}

// Manager opens and settles pull requests on one
// repository.
type Manager struct {
	Store Store
	Repo  git.RepoRef
}

// Open creates the pull request.
func (m *Manager) Open(
	ctx context.Context,
	pr git.NewPullRequest,
) (git.PullRequest, error) {
	const errCtx = "opening pull request"

	created, err := m.Store.CreatePullRequest(ctx, m.Repo, pr)
	if err != nil {
		return git.PullRequest{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if created.Head == "" {
		created.Head = pr.Head
	}

	if created.Base == "" {
		created.Base = pr.Base
	}

	slog.Info(
		"opened pull request",
		"repo", m.Repo.String(),
		"number", created.Number,
		"head", created.Head,
	)

	return created, nil
}

// Settle moves pr out of StateCreated. Without
// autoMerge the pull request stays open. A rejected
// rebase merge posts reason as a comment, closes the
// pull request and deletes its head branch; that
// outcome is not an error. A failure during the
// cleanup is returned wrapped in ErrCleanupFailed.
func (m *Manager) Settle(
	ctx context.Context,
	pr git.PullRequest,
	autoMerge bool,
	reason string,
) (State, error) {
	if !autoMerge {
		slog.Info("auto merge skipped due to action configuration")

		return StateCreated, nil
	}

	slog.Debug("trying to automatically merge pull request", "number", pr.Number)

	mergeErr := m.Store.MergePullRequest(
		ctx, m.Repo, pr.Number, git.MergeMethodRebase,
	)
	if mergeErr == nil {
		slog.Info("merged pull request", "number", pr.Number)

		return StateMerged, nil
	}

	slog.Warn(
		"pull request auto merge failed",
		"number", pr.Number,
		"error", mergeErr,
	)

	if err := m.closeAndDelete(ctx, pr, reason); err != nil {
		return StateCreated, err
	}

	return StateClosedAndCleaned, nil
}

// closeAndDelete comments on, closes and removes the
// branch of pr, stopping at the first failure.
func (m *Manager) closeAndDelete(
	ctx context.Context,
	pr git.PullRequest,
	reason string,
) error {
	const errCtx = "closing pull request"

	if err := m.Store.CreateIssueComment(
		ctx, m.Repo, pr.Number, reason,
	); err != nil {
		return fmt.Errorf(
			"%s: %w: comment: %w", errCtx, ErrCleanupFailed, err,
		)
	}

	if err := m.Store.UpdatePullRequestState(
		ctx, m.Repo, pr.Number, git.StateClosed,
	); err != nil {
		return fmt.Errorf(
			"%s: %w: close: %w", errCtx, ErrCleanupFailed, err,
		)
	}

	if err := m.Store.DeleteRef(
		ctx, m.Repo, git.HeadRef(pr.Head),
	); err != nil {
		return fmt.Errorf(
			"%s: %w: delete branch: %w", errCtx, ErrCleanupFailed, err,
		)
	}

	slog.Info(
		"closed pull request and deleted branch",
		"number", pr.Number,
		"branch", pr.Head,
	)

	return nil
}
