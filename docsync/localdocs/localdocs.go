// Package localdocs reads the documentation folder of the source repository
// into git.LocalFile values. Images and any file that is not valid UTF-8 are
// base64 encoded, everything else is sent as UTF-8 text.
package localdocs

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/byte4ever/docs_sync/docsync/git"
)

// binaryExts lists the extensions uploaded as base64.
var binaryExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// Reader reads documentation files from a filesystem.
type Reader struct {
	Fs afero.Fs
}

// NewReader returns a Reader on the OS filesystem.
func NewReader() *Reader {
	return &Reader{Fs: afero.NewOsFs()}
}

// IsBinary reports whether name is uploaded with
// base64 encoding.
func IsBinary(name string) bool {
	_, ok := binaryExts[strings.ToLower(path.Ext(name))]

	return ok
}

// Exists reports whether root is an existing directory.
func (r *Reader) Exists(root string) (bool, error) {
	const errCtx = "checking docs folder"

	ok, err := afero.DirExists(r.Fs, root)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return ok, nil
}

// Read walks root recursively and returns its regular
// files sorted by name. Names are slash separated and
// relative to root.
func (r *Reader) Read(root string) ([]git.LocalFile, error) {
	const errCtx = "reading docs folder"

	var files []git.LocalFile

	err := afero.Walk(r.Fs, root, func(
		p string,
		info os.FileInfo,
		walkErr error,
	) error {
		if walkErr != nil {
			return walkErr
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		f, err := r.readFile(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		files = append(files, f)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	slices.SortFunc(files, func(a, b git.LocalFile) int {
		return strings.Compare(a.Name, b.Name)
	})

	return files, nil
}

func (r *Reader) readFile(p, name string) (git.LocalFile, error) {
	data, err := afero.ReadFile(r.Fs, p)
	if err != nil {
		return git.LocalFile{}, err
	}

	// Invalid UTF-8 would be mangled by the JSON
	// request body, so such files go out as base64 too.
	if IsBinary(name) || !utf8.Valid(data) {
		return git.LocalFile{
			Name:     name,
			Content:  base64.StdEncoding.EncodeToString(data),
			Encoding: git.EncodingBase64,
		}, nil
	}

	return git.LocalFile{
		Name:     name,
		Content:  string(data),
		Encoding: git.EncodingUTF8,
	}, nil
}
