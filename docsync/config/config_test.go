package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/docs_sync/docsync/config"
	"github.com/byte4ever/docs_sync/docsync/git"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func valid() config.Config {
	cfg := config.Default()
	cfg.Token = "t"
	cfg.Product = "checkout"
	cfg.UpstreamOwner = "acme"
	cfg.UpstreamName = "internal-docs"
	cfg.Repository = "acme/app"

	return cfg
}

func TestLoad_defaults_without_file(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, "main", cfg.BaseBranch)
	assert.Equal(t, "docs", cfg.DocsFolder)
	assert.Empty(t, cfg.UpstreamOwner)
}

func TestLoad_yaml(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/cfg.yaml", []byte(`
product: checkout
upstream_owner: acme
upstream_name: internal-docs
auto_merge: true
prune: true
messages:
  pull_request_title: "Docs for {OWN_REPO}"
`), 0o644))

	cfg, err := config.Load(fsys, "/cfg.yaml")
	require.NoError(t, err)

	assert.Equal(t, "checkout", cfg.Product)
	assert.Equal(t, "acme", cfg.UpstreamOwner)
	assert.Equal(t, "internal-docs", cfg.UpstreamName)
	assert.True(t, cfg.AutoMerge)
	assert.True(t, cfg.Prune)
	assert.Equal(t, "main", cfg.BaseBranch)
	assert.Equal(t, "Docs for {OWN_REPO}", cfg.Messages.PullRequestTitle)
}

func TestLoad_errors(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bad.yaml", []byte("product: [\n"), 0o644))

	_, err := config.Load(fsys, "/missing.yaml")
	require.Error(t, err)

	_, err = config.Load(fsys, "/bad.yaml")
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.UpstreamOwner = "from-file"

	err := cfg.ApplyEnv(env(map[string]string{
		"INPUT_REPO-TOKEN":   "secret",
		"INPUT_DOCS-PRODUCT": " checkout ",
		"INPUT_REPO-NAME":    "internal-docs",
		"INPUT_AUTO-MERGE":   "true",
		"INPUT_PRUNE":        "false",
		"INPUT_REF":          "v1.2.0",
		"GITHUB_REPOSITORY":  "acme/app",
		"GITHUB_SHA":         "abc",
		"GITHUB_REF_NAME":    "main",
		"GITHUB_API_URL":     "https://api.github.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, "checkout", cfg.Product)
	assert.Equal(t, "from-file", cfg.UpstreamOwner)
	assert.Equal(t, "internal-docs", cfg.UpstreamName)
	assert.Equal(t, "main", cfg.BaseBranch)
	assert.True(t, cfg.AutoMerge)
	assert.False(t, cfg.Prune)
	assert.Equal(t, "acme/app", cfg.Repository)
	assert.Equal(t, "abc", cfg.SHA)
	assert.True(t, cfg.NeedsCheckout())
}

func TestApplyEnv_invalid_values(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"INPUT_AUTO-MERGE":         "maybe",
		"INPUT_UPLOAD-PARALLELISM": "many",
	}

	for k, v := range tests {
		t.Run(k, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			require.Error(t, cfg.ApplyEnv(env(map[string]string{k: v})))
		})
	}
}

func TestInputVar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "INPUT_REPO-TOKEN", config.InputVar("repo-token"))
	assert.Equal(t, "INPUT_MY_INPUT", config.InputVar("my input"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		missing bool
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "no token", mutate: func(c *config.Config) { c.Token = "" }, missing: true},
		{name: "no product", mutate: func(c *config.Config) { c.Product = " " }, missing: true},
		{name: "no owner", mutate: func(c *config.Config) { c.UpstreamOwner = "" }, missing: true},
		{name: "no repository", mutate: func(c *config.Config) { c.Repository = "" }, missing: true},
		{name: "escaping product", mutate: func(c *config.Config) { c.Product = "../x" }, wantErr: true},
		{name: "bad repository", mutate: func(c *config.Config) { c.Repository = "acme" }, wantErr: true},
		{name: "negative parallelism", mutate: func(c *config.Config) { c.UploadParallelism = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()

			switch {
			case tt.missing:
				require.ErrorIs(t, err, config.ErrMissingInput)
			case tt.wantErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestDerived(t *testing.T) {
	t.Parallel()

	cfg := valid()
	cfg.Ref = "main"
	cfg.RefName = "main"

	own, err := cfg.Own()
	require.NoError(t, err)

	assert.Equal(t, git.RepoRef{Owner: "acme", Name: "app"}, own)
	assert.Equal(t, git.RepoRef{Owner: "acme", Name: "internal-docs"}, cfg.Upstream())
	assert.Equal(t, "docs/checkout", cfg.TargetPath())
	assert.False(t, cfg.NeedsCheckout())
}
