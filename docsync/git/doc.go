// Package git holds the domain model of the documentation sync and the
// capability interfaces of the remote git object store.
//
// ObjectStore abstracts the hosting API as a transactional object store:
// refs, commits, trees and blobs plus the pull request endpoints. Every call
// takes an explicit RepoRef so one store can address both the source
// repository and the upstream documentation repository. The GitHub
// implementation lives in the github sub-package and a testify mock in
// gittest.
//
// Repo wraps a temporary local clone used to read documentation from a ref
// other than the one checked out by the workflow.
package git
