// Package github implements git.ObjectStore on top of the GitHub REST API
// (cloud or enterprise) with go-github. Configure with a Config containing
// an access token. Set APIURL (the workflow's GITHUB_API_URL) or
// EnterpriseHost for GitHub Enterprise installations.
//
// The Store performs exactly one API request per call, with no retry or
// caching. The repository is passed explicitly on every call.
package github
