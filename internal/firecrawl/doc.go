// Package firecrawl is the client for the external crawl service.
//
// The service does all of the crawling: link discovery, fetching, rendering
// and markdown conversion. This package submits a crawl job, waits for the
// service to report completion, follows result pagination and normalizes
// the response into model.CrawlResult. It is the only place that knows the
// service's wire format.
//
// A crawl call is synchronous for the caller. Nothing is retried; every
// failure is returned as an error wrapping one of the package's sentinel
// errors.
package firecrawl
