package syncer

import (
	"strings"

	"github.com/google/uuid"

	"github.com/byte4ever/docs_sync/docsync/git"
)

// shortSHALen is the number of source commit SHA
// characters kept in branch names.
const shortSHALen = 9

// NewBranchName returns a disposable branch name for
// one run: docs-<owner>-<repo>-<sha[:9]>-<random>. The
// random suffix makes every call unique.
func NewBranchName(own git.RepoRef, sha string) string {
	parts := []string{"docs", own.Owner, own.Name}

	if len(sha) > shortSHALen {
		sha = sha[:shortSHALen]
	}

	if sha != "" {
		parts = append(parts, sha)
	}

	parts = append(parts, uuid.NewString()[:8])

	return sanitize(strings.Join(parts, "-"))
}

// sanitize lowercases name and replaces characters not
// allowed in a branch name segment with '-'.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
}
