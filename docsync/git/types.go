package git

import (
	"errors"
	"fmt"
)

// ObjectType is the type of an entry in a remote tree
// listing.
type ObjectType string

const (
	// TypeBlob marks a file entry.
	TypeBlob ObjectType = "blob"
	// TypeTree marks a directory entry.
	TypeTree ObjectType = "tree"
)

// Encoding is the transfer encoding of blob content.
type Encoding string

const (
	// EncodingUTF8 sends content as plain text.
	EncodingUTF8 Encoding = "utf-8"
	// EncodingBase64 sends base64 encoded binary
	// content.
	EncodingBase64 Encoding = "base64"
)

const (
	// FileMode is the mode of every committed file.
	FileMode = "100644"
	// MergeMethodRebase replays the PR commits onto
	// the base branch.
	MergeMethodRebase = "rebase"
	// StateClosed is the closed pull request state.
	StateClosed = "closed"
)

// ErrInvalidRepo is returned when a RepoRef is
// incomplete.
var ErrInvalidRepo = errors.New("invalid repository reference")

// RepoRef identifies a remote repository.
type RepoRef struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// Validate reports an error wrapping ErrInvalidRepo
// when owner or name is missing.
func (r RepoRef) Validate() error {
	if r.Owner == "" || r.Name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidRepo, r.String())
	}

	return nil
}

// TreeLeaf is one entry of a single-level remote tree
// listing. Path is relative to the listed tree.
type TreeLeaf struct {
	Path string
	Type ObjectType
	SHA  string
}

// TreeEntry is a flattened tree entry whose Path is
// relative to the repository root.
type TreeEntry struct {
	Path string
	Type ObjectType
	SHA  string
}

// LocalFile is a documentation file read from the
// source repository. Name is relative to the docs
// folder.
type LocalFile struct {
	Name     string
	Content  string
	Encoding Encoding
}

// UploadedBlob is a LocalFile mapped to its upstream
// path and its content-addressed blob SHA.
type UploadedBlob struct {
	Path    string
	SHA     string
	Content string
}

// FileChange is a single tree entry of a new commit.
// Delete removes Path from the base tree; SHA is
// ignored in that case.
type FileChange struct {
	Path   string
	SHA    string
	Delete bool
}

// NewPullRequest holds the fields of a pull request to
// open.
type NewPullRequest struct {
	Title string
	Head  string
	Base  string
	Body  string
}

// PullRequest is an opened pull request.
type PullRequest struct {
	Number int
	Head   string
	Base   string
	Title  string
	Body   string
	URL    string
}

// HeadRef returns the short ref of a branch as used by
// ref lookups and deletions ("heads/<branch>").
func HeadRef(branch string) string {
	return "heads/" + branch
}

// FullHeadRef returns the fully qualified ref of a
// branch ("refs/heads/<branch>").
func FullHeadRef(branch string) string {
	return "refs/" + HeadRef(branch)
}
