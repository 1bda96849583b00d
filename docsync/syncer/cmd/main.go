// Command docs_sync publishes the documentation folder
// of the running repository into a shared upstream
// documentation repository through a pull request. It
// is meant to run as a GitHub Action step.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/byte4ever/docs_sync/docsync/action"
	"github.com/byte4ever/docs_sync/docsync/config"
	"github.com/byte4ever/docs_sync/docsync/git"
	"github.com/byte4ever/docs_sync/docsync/git/github"
	"github.com/byte4ever/docs_sync/docsync/localdocs"
	"github.com/byte4ever/docs_sync/docsync/syncer"
)

func main() {
	slog.SetDefault(slog.New(action.NewHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // CLI flag setup is inherently long
func run() error {
	const errCtx = "running docs_sync"

	configPath := flag.String(
		"config", "",
		"Optional YAML configuration file",
	)
	resultFile := flag.String(
		"result_file", "",
		"Write the run result as JSON to this file",
	)
	tmpDir := flag.String(
		"tmp_dir", os.TempDir(),
		"Temporary directory for ref checkouts",
	)
	timeout := flag.Duration(
		"timeout", 0,
		"Abort the run after this duration (0 disables)",
	)
	dryRun := flag.Bool(
		"dry_run", false,
		"Report changes without writing upstream",
	)
	prune := flag.Bool(
		"prune", false,
		"Delete upstream files missing locally",
	)
	localDigest := flag.Bool(
		"local_digest", false,
		"Compute blob SHAs locally before uploading",
	)
	autoMerge := flag.Bool(
		"auto_merge", false,
		"Rebase merge the pull request once opened",
	)
	parallelism := flag.Int(
		"upload_parallelism", config.DefaultUploadParallelism,
		"Number of concurrent blob uploads",
	)
	enterprise := flag.String(
		"github_enterprise_host", "",
		"GitHub Enterprise hostname",
	)

	flag.Parse()

	cfg, err := config.Load(afero.NewOsFs(), *configPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	// Flags given on the command line win.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dry_run":
			cfg.DryRun = *dryRun
		case "prune":
			cfg.Prune = *prune
		case "local_digest":
			cfg.LocalDigest = *localDigest
		case "auto_merge":
			cfg.AutoMerge = *autoMerge
		case "upload_parallelism":
			cfg.UploadParallelism = *parallelism
		case "github_enterprise_host":
			cfg.EnterpriseHost = *enterprise
		}
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if *timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	outputs := action.NewOutputs()

	res, err := syncDocs(ctx, cfg, *tmpDir)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := writeOutputs(outputs, res); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if *resultFile != "" {
		buf, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("%s: encode result: %w", errCtx, err)
		}

		if err := os.WriteFile(*resultFile, buf, 0o600); err != nil {
			return fmt.Errorf("%s: write result: %w", errCtx, err)
		}
	}

	return nil
}

// syncDocs resolves the docs folder, checking out
// cfg.Ref first when needed, and synchronizes it.
func syncDocs(
	ctx context.Context,
	cfg config.Config,
	tmpDir string,
) (syncer.Result, error) {
	const errCtx = "syncing docs"

	own, err := cfg.Own()
	if err != nil {
		return syncer.Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	docsDir := cfg.DocsFolder

	if cfg.NeedsCheckout() {
		remote, err := git.RemoteURL(cfg.ServerURL, own)
		if err != nil {
			return syncer.Result{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		dir, err := os.MkdirTemp(tmpDir, "docs-repo")
		if err != nil {
			return syncer.Result{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		// Clone removes dir itself when it fails.
		repo, err := git.Clone(ctx, remote, dir, cfg.Ref)
		if err != nil {
			return syncer.Result{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		defer func() {
			if err := repo.Clean(); err != nil {
				slog.Warn("failed to remove checkout", "dir", repo.Dir, "error", err)
			}
		}()

		slog.Info(
			"using git ref",
			"ref", repo.Ref,
			"remote", repo.RemoteName,
			"dir", repo.Dir,
		)

		docsDir = repo.Path(cfg.DocsFolder)
	}

	reader := localdocs.NewReader()

	exists, err := reader.Exists(docsDir)
	if err != nil {
		return syncer.Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if !exists {
		slog.Info("docs folder does not exist, exiting", "folder", cfg.DocsFolder)

		return syncer.Result{Skipped: true}, nil
	}

	files, err := reader.Read(docsDir)
	if err != nil {
		return syncer.Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	store, err := github.NewStore(github.Config{
		AccessToken:    cfg.Token,
		APIURL:         cfg.APIURL,
		EnterpriseHost: cfg.EnterpriseHost,
	})
	if err != nil {
		return syncer.Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	res, err := syncer.Synchronize(ctx, syncer.Config{
		Store:             store,
		Upstream:          cfg.Upstream(),
		Own:               own,
		TargetPath:        cfg.TargetPath(),
		BaseBranch:        cfg.BaseBranch,
		AutoMerge:         cfg.AutoMerge,
		SourceSHA:         cfg.SHA,
		ServerURL:         cfg.ServerURL,
		Prune:             cfg.Prune,
		LocalDigest:       cfg.LocalDigest,
		DryRun:            cfg.DryRun,
		UploadParallelism: cfg.UploadParallelism,
		Messages:          cfg.Messages,
	}, files)
	if err != nil {
		return syncer.Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if res.PullRequestURL != "" {
		slog.Info("created pull request", "url", res.PullRequestURL)
	}

	return res, nil
}

func writeOutputs(o *action.Outputs, res syncer.Result) error {
	outs := [][2]string{
		{"skipped", strconv.FormatBool(res.Skipped)},
		{"merged", strconv.FormatBool(res.Merged)},
	}

	if res.PullRequestNumber > 0 {
		outs = append(outs,
			[2]string{"pull-request-number", strconv.Itoa(res.PullRequestNumber)},
			[2]string{"pull-request-url", res.PullRequestURL},
			[2]string{"branch", res.Branch},
		)
	}

	for _, kv := range outs {
		if err := o.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}

	return nil
}
