package firecrawl

import (
	"encoding/json"
	"fmt"

	"github.com/nao1215/crawlzip/internal/model"
)

// Crawl job states reported by the service.
const (
	statusCompleted = "completed"
	statusFailed    = "failed"
	statusCancelled = "cancelled"
)

// crawlRequest is the body of POST /v1/crawl.
type crawlRequest struct {
	URL           string        `json:"url"`
	Limit         int           `json:"limit"`
	MaxDepth      int           `json:"maxDepth"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type scrapeOptions struct {
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

// crawlStartResponse is the answer to POST /v1/crawl.
type crawlStartResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	URL     string `json:"url"`
	Error   string `json:"error,omitempty"`
}

// crawlStatusResponse is one page of GET /v1/crawl/{id}.
type crawlStatusResponse struct {
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Completed   int        `json:"completed"`
	CreditsUsed int        `json:"creditsUsed"`
	Next        string     `json:"next,omitempty"`
	Data        []document `json:"data"`
	Error       string     `json:"error,omitempty"`
}

// document is a crawled page as returned by the service.
type document struct {
	Markdown string   `json:"markdown,omitempty"`
	Metadata metadata `json:"metadata"`
}

type metadata struct {
	Title     flexString `json:"title,omitempty"`
	SourceURL string     `json:"sourceURL,omitempty"`
}

// flexString accepts a JSON string, a list of strings (first element wins)
// or null. Some sites publish several <title> elements and the service
// reports all of them.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("title must be a string or a list of strings: %w", err)
	}
	if len(list) > 0 {
		*f = flexString(list[0])
	} else {
		*f = ""
	}
	return nil
}

// toPageRecord normalizes a service document.
func (d document) toPageRecord() model.PageRecord {
	return model.PageRecord{
		SourceURL: d.Metadata.SourceURL,
		Title:     string(d.Metadata.Title),
		Markdown:  d.Markdown,
	}
}

// toCrawlResult normalizes the final status and the collected documents.
func toCrawlResult(status *crawlStatusResponse, docs []document) *model.CrawlResult {
	result := &model.CrawlResult{
		Status:      status.Status,
		Total:       status.Total,
		CreditsUsed: status.CreditsUsed,
		Pages:       make([]model.PageRecord, 0, len(docs)),
	}
	for _, d := range docs {
		result.Pages = append(result.Pages, d.toPageRecord())
	}
	return result
}
