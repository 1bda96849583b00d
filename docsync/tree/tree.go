// Package tree reconstructs the part of a remote repository tree that lies
// on, or under, a path prefix. Only tree objects on the prefix path (and
// every tree below it) are fetched; sibling trees off the path are reported
// as tree markers without being listed.
package tree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/byte4ever/docs_sync/docsync/git"
)

// ErrDuplicatePath is returned when two flattened
// entries share a path, which a well-formed tree cannot
// produce.
var ErrDuplicatePath = errors.New("duplicate tree path")

// Walker flattens remote trees of one repository.
type Walker struct {
	Store git.TreeReader
	Repo  git.RepoRef
}

// CompleteTree resolves branch to its root tree and
// returns the flattened entries on the way to prefix
// and below it. Paths are relative to the repository
// root.
func (w *Walker) CompleteTree(
	ctx context.Context,
	branch string,
	prefix string,
) ([]git.TreeEntry, error) {
	const errCtx = "walking tree"

	commitSHA, err := w.Store.GetRef(
		ctx, w.Repo, git.HeadRef(branch),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	rootSHA, err := w.Store.GetCommit(ctx, w.Repo, commitSHA)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	entries, err := w.expand(ctx, rootSHA, "", Segments(prefix))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Path]; dup {
			return nil, fmt.Errorf(
				"%s: %w: %s", errCtx, ErrDuplicatePath, e.Path,
			)
		}

		seen[e.Path] = struct{}{}
	}

	slog.Debug(
		"walked upstream tree",
		"repo", w.Repo.String(),
		"branch", branch,
		"prefix", prefix,
		"entries", len(entries),
	)

	return entries, nil
}

// expand lists the tree sha located at dir and
// recurses into the child trees matching the head of
// rest. Once rest is empty every child tree is
// expanded.
func (w *Walker) expand(
	ctx context.Context,
	sha string,
	dir string,
	rest []string,
) ([]git.TreeEntry, error) {
	leaves, err := w.Store.GetTree(ctx, w.Repo, sha)
	if err != nil {
		return nil, err
	}

	var out []git.TreeEntry

	for _, leaf := range leaves {
		full := join(dir, leaf.Path)

		if leaf.Type != git.TypeTree {
			out = append(out, git.TreeEntry{
				Path: full,
				Type: leaf.Type,
				SHA:  leaf.SHA,
			})

			continue
		}

		if len(rest) > 0 && leaf.Path != rest[0] {
			// Off the prefix: keep a marker, do not
			// list it.
			out = append(out, git.TreeEntry{
				Path: full,
				Type: git.TypeTree,
				SHA:  leaf.SHA,
			})

			continue
		}

		next := rest
		if len(next) > 0 {
			next = next[1:]
		}

		children, err := w.expand(ctx, leaf.SHA, full, next)
		if err != nil {
			return nil, err
		}

		out = append(out, children...)
	}

	return out, nil
}

// Segments splits a slash separated prefix into its
// non-empty segments.
func Segments(prefix string) []string {
	var segs []string

	for _, s := range strings.Split(prefix, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}

	return segs
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}

	return path.Join(dir, name)
}
