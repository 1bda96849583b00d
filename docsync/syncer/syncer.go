package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/byte4ever/docs_sync/docsync/commit"
	"github.com/byte4ever/docs_sync/docsync/commitmsg"
	"github.com/byte4ever/docs_sync/docsync/diff"
	"github.com/byte4ever/docs_sync/docsync/digester"
	"github.com/byte4ever/docs_sync/docsync/git"
	"github.com/byte4ever/docs_sync/docsync/pull"
	"github.com/byte4ever/docs_sync/docsync/tree"
)

// defaultParallelism bounds concurrent blob uploads
// when Config.UploadParallelism is not set.
const defaultParallelism = 4

var (
	// ErrInvalidConfig is returned before any remote
	// call when Config is incomplete.
	ErrInvalidConfig = errors.New("invalid sync configuration")
	// ErrDuplicatePath is returned when two local files
	// map to the same upstream path.
	ErrDuplicatePath = errors.New("duplicate target path")
)

// Config holds all settings for one sync run. Use a
// Config struct instead of many arguments.
type Config struct {
	// Store is the remote object store.
	Store git.ObjectStore

	// Upstream is the documentation repository.
	Upstream git.RepoRef

	// Own is the repository the documentation comes
	// from.
	Own git.RepoRef

	// TargetPath is the upstream folder replaced by
	// the local files (e.g. "docs/<product>").
	TargetPath string

	// BaseBranch is the upstream branch compared
	// against and targeted by the pull request.
	BaseBranch string

	// AutoMerge merges the pull request with a rebase
	// merge once opened.
	AutoMerge bool

	// SourceSHA is the source commit, used in texts
	// and branch names.
	SourceSHA string

	// ServerURL is the web root used to link the
	// source commit (e.g. "https://github.com").
	ServerURL string

	// Prune deletes upstream files under TargetPath
	// that no longer exist locally.
	Prune bool

	// LocalDigest computes blob SHAs locally and only
	// uploads blobs once a change is detected.
	LocalDigest bool

	// DryRun reports the detected changes without
	// writing anything upstream. Implies LocalDigest.
	DryRun bool

	// UploadParallelism is the number of concurrent
	// blob uploads.
	UploadParallelism int

	// Messages renders commit and pull request texts.
	Messages commitmsg.Templates

	// BranchName overrides the branch name generator.
	BranchName func(own git.RepoRef, sha string) string
}

// Result is the outcome of a run. Skipped runs found
// no difference and wrote nothing.
type Result struct {
	Skipped           bool     `json:"skipped"`
	DryRun            bool     `json:"dry_run,omitempty"`
	Branch            string   `json:"branch,omitempty"`
	Commit            string   `json:"commit,omitempty"`
	PullRequestNumber int      `json:"pull_request_number,omitempty"`
	PullRequestURL    string   `json:"pull_request_url,omitempty"`
	Merged            bool     `json:"merged"`
	State             string   `json:"state,omitempty"`
	Changed           []string `json:"changed,omitempty"`
	Removed           []string `json:"removed,omitempty"`
}

// candidate is a local file mapped to its upstream
// path.
type candidate struct {
	path     string
	content  string
	encoding git.Encoding
}

// Validate checks the configuration without touching
// the remote.
func (c Config) Validate() error {
	if c.Store == nil {
		return fmt.Errorf("%w: store must be set", ErrInvalidConfig)
	}

	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("%w: upstream: %w", ErrInvalidConfig, err)
	}

	if err := c.Own.Validate(); err != nil {
		return fmt.Errorf("%w: own: %w", ErrInvalidConfig, err)
	}

	if len(tree.Segments(c.TargetPath)) == 0 {
		return fmt.Errorf("%w: target path must be set", ErrInvalidConfig)
	}

	if c.BaseBranch == "" {
		return fmt.Errorf("%w: base branch must be set", ErrInvalidConfig)
	}

	return nil
}

// Synchronize replaces the upstream content under
// cfg.TargetPath with files. When nothing differs the
// run is skipped; otherwise a branch and pull request
// are created and settled according to cfg.AutoMerge.
func Synchronize(
	ctx context.Context,
	cfg Config,
	files []git.LocalFile,
) (Result, error) {
	const errCtx = "synchronizing docs"

	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	target := strings.Join(tree.Segments(cfg.TargetPath), "/")

	cands, err := targetPaths(target, files)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	// Step 1: Flatten the upstream tree.
	walker := tree.Walker{Store: cfg.Store, Repo: cfg.Upstream}

	complete, err := walker.CompleteTree(ctx, cfg.BaseBranch, target)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	existing := diff.Existing(complete, target)

	// Step 2: Identify candidate blobs.
	localDigest := cfg.LocalDigest || cfg.DryRun

	var updated []git.UploadedBlob
	if localDigest {
		updated, err = digestAll(cands)
	} else {
		updated, err = uploadBlobs(ctx, cfg, cands)
	}

	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	diff.SortBlobs(updated)

	// Step 3: Compare.
	var removed []string
	if cfg.Prune {
		removed = diff.Removed(existing, updated)
	}

	if !diff.HasChanges(existing, updated) {
		slog.Info(
			"documentation unchanged, skipping pull request",
			"path", target,
		)

		return Result{Skipped: true}, nil
	}

	res := Result{
		Changed: diff.Changed(existing, updated),
		Removed: removed,
	}

	if cfg.DryRun {
		slog.Info(
			"dry run: skipping commit and pull request",
			"changed", res.Changed,
			"removed", res.Removed,
		)

		res.DryRun = true

		return res, nil
	}

	if localDigest {
		if err := uploadChanged(ctx, cfg, cands, updated, res.Changed); err != nil {
			return Result{}, fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	// Step 4: Commit on a fresh branch.
	newBranch := cfg.BranchName
	if newBranch == nil {
		newBranch = NewBranchName
	}

	res.Branch = newBranch(cfg.Own, cfg.SourceSHA)

	texts := cfg.Messages.Render(commitmsg.Vars{
		Own:        cfg.Own,
		Upstream:   cfg.Upstream,
		SourceSHA:  cfg.SourceSHA,
		ServerURL:  cfg.ServerURL,
		BaseBranch: cfg.BaseBranch,
		Branch:     res.Branch,
	})

	builder := commit.Builder{Store: cfg.Store, Repo: cfg.Upstream}

	res.Commit, err = builder.CreateBranchAndCommit(ctx, commit.Request{
		BaseBranch: cfg.BaseBranch,
		BranchName: res.Branch,
		Message:    texts.CommitMessage,
		Files:      fileChanges(updated, removed),
	})
	if err != nil {
		slog.Error(
			"failed to create and push commit",
			"branch", res.Branch,
		)

		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	// Step 5: Open and settle the pull request.
	mgr := pull.Manager{Store: cfg.Store, Repo: cfg.Upstream}

	pr, err := mgr.Open(ctx, git.NewPullRequest{
		Title: texts.PullRequestTitle,
		Head:  res.Branch,
		Base:  cfg.BaseBranch,
		Body:  texts.PullRequestBody,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	res.PullRequestNumber = pr.Number
	res.PullRequestURL = pr.URL

	state, err := mgr.Settle(ctx, pr, cfg.AutoMerge, texts.MergeFailure)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	res.State = state.String()
	res.Merged = state == pull.StateMerged

	return res, nil
}

// targetPaths maps files below target. A leading
// "docs/" in a file name is dropped. Paths escaping
// target or colliding with each other are rejected.
func targetPaths(
	target string,
	files []git.LocalFile,
) ([]candidate, error) {
	const errCtx = "mapping target paths"

	seen := sets.New[string]()
	out := make([]candidate, 0, len(files))

	for _, f := range files {
		name := strings.TrimPrefix(
			strings.ReplaceAll(f.Name, "\\", "/"), "docs/",
		)
		p := path.Join(target, name)

		if p == target || !diff.Within(p, target) {
			return nil, fmt.Errorf(
				"%s: %q is outside %s", errCtx, f.Name, target,
			)
		}

		if seen.Has(p) {
			return nil, fmt.Errorf(
				"%s: %w: %s", errCtx, ErrDuplicatePath, p,
			)
		}

		seen.Insert(p)

		enc := f.Encoding
		if enc == "" {
			enc = git.EncodingUTF8
		}

		out = append(out, candidate{
			path:     p,
			content:  f.Content,
			encoding: enc,
		})
	}

	return out, nil
}

// digestAll computes the blob SHA of every candidate
// locally.
func digestAll(cands []candidate) ([]git.UploadedBlob, error) {
	const errCtx = "digesting files"

	out := make([]git.UploadedBlob, 0, len(cands))

	for _, c := range cands {
		sha, err := digester.BlobSHA(c.content, c.encoding)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %s: %w", errCtx, c.path, err,
			)
		}

		out = append(out, git.UploadedBlob{
			Path:    c.path,
			SHA:     sha,
			Content: c.content,
		})
	}

	return out, nil
}

// uploadBlobs creates one blob per candidate using a
// worker pool bounded by cfg.UploadParallelism. The
// result keeps the order of cands.
func uploadBlobs(
	ctx context.Context,
	cfg Config,
	cands []candidate,
) ([]git.UploadedBlob, error) {
	const errCtx = "uploading blobs"

	parallelism := cfg.UploadParallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}

	slog.Debug(
		"uploading blobs",
		"count", len(cands),
		"parallelism", parallelism,
	)

	out := make([]git.UploadedBlob, len(cands))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	sem := make(chan struct{}, parallelism)

	for i, c := range cands {
		if ctx.Err() != nil {
			mu.Lock()
			errs = append(errs, ctx.Err())
			mu.Unlock()

			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(i int, c candidate) {
			defer wg.Done()
			defer func() { <-sem }()

			sha, err := cfg.Store.CreateBlob(
				ctx, cfg.Upstream, c.content, c.encoding,
			)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf(
					"blob %s: %w", c.path, err,
				))
				mu.Unlock()

				return
			}

			out[i] = git.UploadedBlob{
				Path:    c.path,
				SHA:     sha,
				Content: c.content,
			}
		}(i, c)
	}

	wg.Wait()

	if agg := utilerrors.NewAggregate(errs); agg != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, agg)
	}

	return out, nil
}

// uploadChanged uploads the candidates whose paths are
// listed in changed and reconciles the returned SHAs
// into updated.
func uploadChanged(
	ctx context.Context,
	cfg Config,
	cands []candidate,
	updated []git.UploadedBlob,
	changed []string,
) error {
	want := sets.New(changed...)

	var subset []candidate

	for _, c := range cands {
		if want.Has(c.path) {
			subset = append(subset, c)
		}
	}

	uploaded, err := uploadBlobs(ctx, cfg, subset)
	if err != nil {
		return err
	}

	remote := make(map[string]string, len(uploaded))
	for _, u := range uploaded {
		remote[u.Path] = u.SHA
	}

	for i := range updated {
		sha, ok := remote[updated[i].Path]
		if !ok {
			continue
		}

		if sha != updated[i].SHA {
			slog.Warn(
				"remote blob sha differs from local digest",
				"path", updated[i].Path,
				"local", updated[i].SHA,
				"remote", sha,
			)

			updated[i].SHA = sha
		}
	}

	return nil
}

// fileChanges builds the tree entries of the new
// commit: every updated blob plus deletions.
func fileChanges(
	updated []git.UploadedBlob,
	removed []string,
) []git.FileChange {
	out := make([]git.FileChange, 0, len(updated)+len(removed))

	for _, u := range updated {
		out = append(out, git.FileChange{Path: u.Path, SHA: u.SHA})
	}

	for _, p := range removed {
		out = append(out, git.FileChange{Path: p, Delete: true})
	}

	return out
}
