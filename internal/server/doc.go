// Package server is the password-protected web front end.
//
// GET / serves a form, POST /crawl runs a crawl through the pipeline and
// streams the resulting zip archive back as a download, GET /health
// reports liveness. Every error is returned as JSON of the form
// {"detail": "..."}.
package server
