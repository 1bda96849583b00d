package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/docs_sync/docsync/diff"
	"github.com/byte4ever/docs_sync/docsync/git"
)

func blob(p, sha string) git.TreeEntry {
	return git.TreeEntry{Path: p, Type: git.TypeBlob, SHA: sha}
}

func up(p, sha string) git.UploadedBlob {
	return git.UploadedBlob{Path: p, SHA: sha}
}

func TestWithin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		prefix string
		want   bool
	}{
		{"child", "docs/x/a.md", "docs/x", true},
		{"prefix itself", "docs/x", "docs/x", true},
		{"trailing slash prefix", "docs/x/a.md", "docs/x/", true},
		{"sibling sharing text", "docs/xyz/a.md", "docs/x", false},
		{"file sharing text", "docs/x.md", "docs/x", false},
		{"outside", "src/main.go", "docs/x", false},
		{"empty prefix", "anything", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, diff.Within(tt.path, tt.prefix))
		})
	}
}

func TestExisting_filters_and_sorts(t *testing.T) {
	t.Parallel()

	entries := []git.TreeEntry{
		blob("docs/x/z.md", "1"),
		{Path: "docs/x/sub", Type: git.TypeTree, SHA: "t"},
		blob("docs/y/a.md", "2"),
		blob("docs/x/a.md", "3"),
		blob("docs/x.md", "4"),
		blob("README.md", "5"),
	}

	got := diff.Existing(entries, "docs/x")

	assert.Equal(t, []git.TreeEntry{
		blob("docs/x/a.md", "3"),
		blob("docs/x/z.md", "1"),
	}, got)
}

func TestHasChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing []git.TreeEntry
		updated  []git.UploadedBlob
		want     bool
	}{
		{
			name: "identical unordered sets",
			existing: []git.TreeEntry{
				blob("docs/x/b.md", "2"),
				blob("docs/x/a.md", "1"),
			},
			updated: []git.UploadedBlob{
				up("docs/x/a.md", "1"),
				up("docs/x/b.md", "2"),
			},
			want: false,
		},
		{
			name:     "both empty",
			existing: nil,
			updated:  nil,
			want:     false,
		},
		{
			name:     "new file",
			existing: nil,
			updated:  []git.UploadedBlob{up("docs/x/a.md", "1")},
			want:     true,
		},
		{
			name: "file removed locally",
			existing: []git.TreeEntry{
				blob("docs/x/a.md", "1"),
				blob("docs/x/b.md", "2"),
			},
			updated: []git.UploadedBlob{up("docs/x/a.md", "1")},
			want:    true,
		},
		{
			name:     "content changed",
			existing: []git.TreeEntry{blob("docs/x/a.md", "1")},
			updated:  []git.UploadedBlob{up("docs/x/a.md", "9")},
			want:     true,
		},
		{
			name:     "file renamed",
			existing: []git.TreeEntry{blob("docs/x/a.md", "1")},
			updated:  []git.UploadedBlob{up("docs/x/b.md", "1")},
			want:     true,
		},
		{
			name: "ordinal ordering is case sensitive",
			existing: []git.TreeEntry{
				blob("docs/x/B.md", "1"),
				blob("docs/x/a.md", "2"),
			},
			updated: []git.UploadedBlob{
				up("docs/x/a.md", "2"),
				up("docs/x/B.md", "1"),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(
				t, tt.want, diff.HasChanges(tt.existing, tt.updated),
			)
		})
	}
}

func TestHasChanges_does_not_reorder_inputs(t *testing.T) {
	t.Parallel()

	existing := []git.TreeEntry{blob("b", "2"), blob("a", "1")}
	updated := []git.UploadedBlob{up("b", "2"), up("a", "1")}

	diff.HasChanges(existing, updated)

	assert.Equal(t, "b", existing[0].Path)
	assert.Equal(t, "b", updated[0].Path)
}

func TestChanged_and_Removed(t *testing.T) {
	t.Parallel()

	existing := []git.TreeEntry{
		blob("docs/x/keep.md", "1"),
		blob("docs/x/edit.md", "2"),
		blob("docs/x/gone.md", "3"),
	}
	updated := []git.UploadedBlob{
		up("docs/x/keep.md", "1"),
		up("docs/x/edit.md", "20"),
		up("docs/x/new.md", "4"),
	}

	assert.Equal(
		t,
		[]string{"docs/x/edit.md", "docs/x/new.md"},
		diff.Changed(existing, updated),
	)
	assert.Equal(
		t,
		[]string{"docs/x/gone.md"},
		diff.Removed(existing, updated),
	)
}

func TestSortBlobs(t *testing.T) {
	t.Parallel()

	blobs := []git.UploadedBlob{up("c", ""), up("a", ""), up("b", "")}

	diff.SortBlobs(blobs)

	assert.Equal(t, "a", blobs[0].Path)
	assert.Equal(t, "b", blobs[1].Path)
	assert.Equal(t, "c", blobs[2].Path)
}
