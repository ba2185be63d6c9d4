// Package model defines the data structures shared by crawlzip components.
//
// This package contains the following main types:
//   - CrawlRequest: A validated request for the crawl service
//   - CrawlResult and PageRecord: The normalized crawl service response
//   - MaterializedPage and Metadata: What the materializer writes to disk
//   - Job: One request's state as it moves through the pipeline
//
// The crawl service response is normalized into these types once, at the
// service boundary. Nothing downstream inspects raw service payloads.
package model
