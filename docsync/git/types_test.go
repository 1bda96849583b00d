package git_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/docs_sync/docsync/git"
)

func TestRepoRef_String(t *testing.T) {
	t.Parallel()

	rr := git.RepoRef{Owner: "acme", Name: "internal-docs"}

	assert.Equal(t, "acme/internal-docs", rr.String())
}

func TestRepoRef_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		repo    git.RepoRef
		wantErr bool
	}{
		{
			name: "complete",
			repo: git.RepoRef{Owner: "acme", Name: "docs"},
		},
		{
			name:    "missing owner",
			repo:    git.RepoRef{Name: "docs"},
			wantErr: true,
		},
		{
			name:    "missing name",
			repo:    git.RepoRef{Owner: "acme"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.repo.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, git.ErrInvalidRepo)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestHeadRefs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "heads/main", git.HeadRef("main"))
	assert.Equal(
		t, "refs/heads/docs-acme", git.FullHeadRef("docs-acme"),
	)
}
