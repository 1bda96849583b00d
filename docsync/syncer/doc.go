// Package syncer synchronizes a local documentation folder into a path of
// an upstream repository. It walks the upstream tree under the target path,
// compares it with the local files by blob identity and, when they differ,
// commits the local state on a fresh branch, opens a pull request and
// optionally merges it.
//
// The main entry point is Synchronize, which accepts a Config struct with
// all parameters of a run.
package syncer
