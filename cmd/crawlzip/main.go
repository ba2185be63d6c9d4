// Package main provides the entry point for the crawlzip CLI.
//
// crawlzip sends a website to a hosted crawl service and stores the
// returned pages as markdown files with an index, either on disk or as a
// zip archive served from a small password-protected web form.
//
// Usage:
//
//	crawlzip crawl -u https://example.com
//	crawlzip serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
