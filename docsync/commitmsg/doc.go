// Package commitmsg renders the texts a sync run publishes: the commit
// message, the pull request title and body, and the comment left on a pull
// request whose merge was rejected. Templates use {NAME} placeholders;
// unknown placeholders are preserved as-is.
package commitmsg
