package git

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/byte4ever/docs_sync/docsync/exec"
)

// Repo is a local clone of a git repository checked out
// at a single ref. Create with Clone, and call Clean when
// done.
type Repo struct {
	// Dir is the filesystem location of the clone.
	Dir string
	// RemoteName is the name of the upstream remote.
	RemoteName string
	// Ref is the checked out ref.
	Ref string
}

// RemoteURL builds the https clone URL of repo on the
// given server (e.g. "https://github.com"). Owner and
// name are path escaped.
func RemoteURL(serverURL string, repo RepoRef) (string, error) {
	const errCtx = "building remote url"

	if serverURL == "" {
		serverURL = "https://github.com"
	}

	su, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if su.Scheme == "" || su.Host == "" {
		return "", fmt.Errorf(
			"%s: %q is not absolute", errCtx, serverURL,
		)
	}

	return fmt.Sprintf(
		"%s://%s/%s/%s.git",
		su.Scheme,
		su.Host,
		url.PathEscape(repo.Owner),
		url.PathEscape(repo.Name),
	), nil
}

// Clone fetches ref from remote into a fresh repository
// at dir and checks it out. Only the requested ref is
// fetched. On failure dir is removed.
func Clone(
	ctx context.Context,
	remote string,
	dir string,
	ref string,
) (*Repo, error) {
	const errCtx = "cloning repository"

	if strings.TrimSpace(ref) == "" {
		return nil, fmt.Errorf("%s: ref must be set", errCtx)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf(
			"%s: create dir: %w", errCtx, err,
		)
	}

	remoteName := "origin"

	err := exec.Run(
		ctx, dir,
		[]string{"git", "init", "--quiet"},
		[]string{"git", "remote", "add", remoteName, remote},
		[]string{
			"git", "fetch", "--no-tags", "--depth=1",
			remoteName, ref,
		},
		[]string{"git", "checkout", "--quiet", "FETCH_HEAD"},
	)
	if err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			slog.Warn(
				"failed to remove partial clone",
				"dir", dir,
				"error", rmErr,
			)
		}

		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &Repo{
		Dir:        dir,
		RemoteName: remoteName,
		Ref:        ref,
	}, nil
}

// Path joins elem to the clone directory.
func (r *Repo) Path(elem ...string) string {
	return filepath.Join(append([]string{r.Dir}, elem...)...)
}

// Clean removes the local clone directory.
func (r *Repo) Clean() error {
	const errCtx = "cleaning repository"

	if err := os.RemoveAll(r.Dir); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
