package syncer

import "github.com/byte4ever/docs_sync/docsync/git"

var SanitizeForTest = sanitize

// TargetPathsForTest returns the upstream paths files
// map to below target.
func TargetPathsForTest(target string, files []git.LocalFile) ([]string, error) {
	cands, err := targetPaths(target, files)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.path)
	}

	return out, nil
}
