// Package config assembles the settings of a docs sync run from an
// optional YAML file, the GitHub Actions inputs and workflow
// environment, in that order of precedence (later wins). Command line
// flags are applied on top by the driver.
package config

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/byte4ever/docs_sync/docsync/commitmsg"
	"github.com/byte4ever/docs_sync/docsync/git"
)

const (
	// DefaultBaseBranch is the upstream branch used
	// when none is configured.
	DefaultBaseBranch = "main"
	// DefaultDocsFolder is the local folder read when
	// none is configured.
	DefaultDocsFolder = "docs"
	// DefaultUploadParallelism bounds concurrent blob
	// uploads.
	DefaultUploadParallelism = 4
)

// ErrMissingInput is returned by Validate when a
// required setting is empty.
var ErrMissingInput = errors.New("missing required input")

// Config is the complete configuration of a run.
type Config struct {
	Token             string              `yaml:"token"`
	Product           string              `yaml:"product"`
	UpstreamOwner     string              `yaml:"upstream_owner"`
	UpstreamName      string              `yaml:"upstream_name"`
	BaseBranch        string              `yaml:"base_branch"`
	AutoMerge         bool                `yaml:"auto_merge"`
	Ref               string              `yaml:"ref"`
	DocsFolder        string              `yaml:"docs_folder"`
	Prune             bool                `yaml:"prune"`
	LocalDigest       bool                `yaml:"local_digest"`
	DryRun            bool                `yaml:"dry_run"`
	UploadParallelism int                 `yaml:"upload_parallelism"`
	EnterpriseHost    string              `yaml:"enterprise_host"`
	Messages          commitmsg.Templates `yaml:"messages"`

	// Workflow context, normally taken from the
	// runner environment.
	Repository string `yaml:"repository"`
	SHA        string `yaml:"sha"`
	RefName    string `yaml:"ref_name"`
	ServerURL  string `yaml:"server_url"`
	APIURL     string `yaml:"api_url"`
}

// Default returns a Config holding only the built-in
// defaults. No upstream repository is assumed.
func Default() Config {
	return Config{
		BaseBranch:        DefaultBaseBranch,
		DocsFolder:        DefaultDocsFolder,
		UploadParallelism: DefaultUploadParallelism,
	}
}

// Load reads a YAML file from fsys over the defaults.
// An empty name returns the defaults unchanged.
func Load(fsys afero.Fs, name string) (Config, error) {
	const errCtx = "loading config"

	cfg := Default()
	if name == "" {
		return cfg, nil
	}

	raw, err := afero.ReadFile(fsys, name)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf(
			"%s: decoding %s: %w", errCtx, name, err,
		)
	}

	return cfg, nil
}

// ApplyEnv overlays the action inputs (INPUT_*) and the
// workflow variables (GITHUB_*) read through getenv.
// Empty variables leave the current value untouched.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	const errCtx = "reading environment"

	input := func(name string) string {
		return strings.TrimSpace(getenv(InputVar(name)))
	}

	strs := []struct {
		dst *string
		val string
	}{
		{&c.Token, input("repo-token")},
		{&c.Product, input("docs-product")},
		{&c.UpstreamOwner, input("repo-owner")},
		{&c.UpstreamName, input("repo-name")},
		{&c.BaseBranch, input("repo-branch")},
		{&c.Ref, input("ref")},
		{&c.DocsFolder, input("docs-folder")},
		{&c.Repository, getenv("GITHUB_REPOSITORY")},
		{&c.SHA, getenv("GITHUB_SHA")},
		{&c.RefName, getenv("GITHUB_REF_NAME")},
		{&c.ServerURL, getenv("GITHUB_SERVER_URL")},
		{&c.APIURL, getenv("GITHUB_API_URL")},
	}

	for _, s := range strs {
		if s.val != "" {
			*s.dst = s.val
		}
	}

	bools := []struct {
		dst  *bool
		name string
	}{
		{&c.AutoMerge, "auto-merge"},
		{&c.Prune, "prune"},
		{&c.LocalDigest, "local-digest"},
		{&c.DryRun, "dry-run"},
	}

	for _, b := range bools {
		v := input(b.name)
		if v == "" {
			continue
		}

		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf(
				"%s: input %s: %w", errCtx, b.name, err,
			)
		}

		*b.dst = parsed
	}

	if v := input("upload-parallelism"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf(
				"%s: input upload-parallelism: %w", errCtx, err,
			)
		}

		c.UploadParallelism = n
	}

	return nil
}

// InputVar returns the environment variable carrying
// the action input name.
func InputVar(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// Validate reports the first missing or malformed
// setting.
func (c Config) Validate() error {
	const errCtx = "validating config"

	required := []struct {
		name string
		val  string
	}{
		{"repo-token", c.Token},
		{"docs-product", c.Product},
		{"repo-owner", c.UpstreamOwner},
		{"repo-name", c.UpstreamName},
		{"repo-branch", c.BaseBranch},
		{"GITHUB_REPOSITORY", c.Repository},
	}

	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			return fmt.Errorf(
				"%s: %w: %s", errCtx, ErrMissingInput, r.name,
			)
		}
	}

	if t := c.TargetPath(); !strings.HasPrefix(t, "docs/") {
		return fmt.Errorf(
			"%s: invalid docs-product %q", errCtx, c.Product,
		)
	}

	if _, err := c.Own(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if c.UploadParallelism < 0 {
		return fmt.Errorf(
			"%s: negative upload parallelism %d",
			errCtx, c.UploadParallelism,
		)
	}

	return nil
}

// Upstream returns the documentation repository.
func (c Config) Upstream() git.RepoRef {
	return git.RepoRef{Owner: c.UpstreamOwner, Name: c.UpstreamName}
}

// Own parses Repository ("owner/name").
func (c Config) Own() (git.RepoRef, error) {
	owner, name, ok := strings.Cut(c.Repository, "/")
	ref := git.RepoRef{Owner: owner, Name: name}

	if !ok {
		return git.RepoRef{}, fmt.Errorf(
			"%w: repository %q", git.ErrInvalidRepo, c.Repository,
		)
	}

	if err := ref.Validate(); err != nil {
		return git.RepoRef{}, err
	}

	return ref, nil
}

// TargetPath is the upstream folder owned by Product.
func (c Config) TargetPath() string {
	return path.Join("docs", c.Product)
}

// NeedsCheckout reports whether Ref names a revision
// other than the one the workflow runs on.
func (c Config) NeedsCheckout() bool {
	return c.Ref != "" && c.Ref != c.RefName
}
