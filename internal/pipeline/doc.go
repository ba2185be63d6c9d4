// Package pipeline runs a crawl-and-package request as a sequence of steps.
//
// A request is carried by a model.Job through CrawlStep, MaterializeStep
// and optionally ArchiveStep. The pipeline stops at the first failing step
// and removes whatever the job left on disk, so a request either produces
// its full output or nothing.
//
// BatchProcessor runs several requests in sequence for the CLI.
package pipeline
