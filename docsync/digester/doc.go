// Package digester computes git blob object ids locally. The id of a blob
// depends only on its bytes, so it equals the SHA the remote object store
// assigns on upload; this lets a run compare documentation against upstream
// without writing anything.
package digester
