// Package diff decides whether the upstream documentation differs from the
// local candidate set. Blob SHAs are content addressed, so comparing
// (path, sha) pairs is an exact equality check that never transfers file
// contents.
package diff

import (
	"slices"
	"strings"

	"github.com/byte4ever/docs_sync/docsync/git"
)

// Within reports whether p is prefix itself or lies
// under it.
func Within(p, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}

	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// Existing keeps the blob entries under prefix, sorted
// by path.
func Existing(entries []git.TreeEntry, prefix string) []git.TreeEntry {
	out := make([]git.TreeEntry, 0, len(entries))

	for _, e := range entries {
		if e.Type == git.TypeBlob && Within(e.Path, prefix) {
			out = append(out, e)
		}
	}

	slices.SortFunc(out, func(a, b git.TreeEntry) int {
		return strings.Compare(a.Path, b.Path)
	})

	return out
}

// SortBlobs sorts blobs by path in place.
func SortBlobs(blobs []git.UploadedBlob) {
	slices.SortFunc(blobs, func(a, b git.UploadedBlob) int {
		return strings.Compare(a.Path, b.Path)
	})
}

// HasChanges reports whether updated differs from
// existing. Both are compared as sets of (path, sha)
// pairs after ordinal sorting by path; the inputs are
// left untouched.
func HasChanges(existing []git.TreeEntry, updated []git.UploadedBlob) bool {
	if len(existing) != len(updated) {
		return true
	}

	ex := slices.Clone(existing)
	slices.SortFunc(ex, func(a, b git.TreeEntry) int {
		return strings.Compare(a.Path, b.Path)
	})

	up := slices.Clone(updated)
	SortBlobs(up)

	for i := range ex {
		if ex[i].Path != up[i].Path || ex[i].SHA != up[i].SHA {
			return true
		}
	}

	return false
}

// Changed returns the sorted paths of updated that are
// new or carry a different SHA than in existing.
func Changed(existing []git.TreeEntry, updated []git.UploadedBlob) []string {
	have := make(map[string]string, len(existing))
	for _, e := range existing {
		have[e.Path] = e.SHA
	}

	var out []string

	for _, u := range updated {
		if sha, ok := have[u.Path]; !ok || sha != u.SHA {
			out = append(out, u.Path)
		}
	}

	slices.Sort(out)

	return out
}

// Removed returns the sorted paths present in existing
// but absent from updated.
func Removed(existing []git.TreeEntry, updated []git.UploadedBlob) []string {
	keep := make(map[string]struct{}, len(updated))
	for _, u := range updated {
		keep[u.Path] = struct{}{}
	}

	var out []string

	for _, e := range existing {
		if _, ok := keep[e.Path]; !ok {
			out = append(out, e.Path)
		}
	}

	slices.Sort(out)

	return out
}
