package model

// Default values for fields the crawl service may leave out.
const (
	// UnknownStatus is reported when the crawl service returns no status.
	UnknownStatus = "unknown"
)

// CrawlResult is the normalized response of one crawl service call.
// It is produced by the service client at the boundary and is read-only
// for every component downstream.
type CrawlResult struct {
	// Status is the status tag reported by the crawl service (e.g. "completed").
	// Empty when the service did not report one.
	Status string `json:"status"`

	// Total is the number of pages the service says it crawled.
	// This is an externally supplied counter and may differ from len(Pages).
	Total int `json:"total"`

	// CreditsUsed is the billing counter returned by the crawl service.
	CreditsUsed int `json:"creditsUsed"`

	// Pages holds the crawled pages in the order the service returned them.
	// The order is significant and is never changed.
	Pages []PageRecord `json:"pages"`
}

// StatusOrDefault returns the reported status or UnknownStatus.
func (r *CrawlResult) StatusOrDefault() string {
	if r == nil || r.Status == "" {
		return UnknownStatus
	}
	return r.Status
}

// PageRecord is one crawled page.
type PageRecord struct {
	// SourceURL is the URL the page was fetched from. Empty when absent.
	SourceURL string `json:"sourceURL,omitempty"`

	// Title is the page title. Empty when absent.
	Title string `json:"title,omitempty"`

	// Markdown is the page body converted to markdown by the crawl service.
	// Pages with an empty body are skipped during materialization.
	Markdown string `json:"markdown,omitempty"`
}

// HasBody reports whether the page carries markdown content.
func (p PageRecord) HasBody() bool {
	return p.Markdown != ""
}

// MaterializedPage records one page file written into a run directory.
// Values are created in encounter order and never modified afterwards.
type MaterializedPage struct {
	// Filename is the base name of the file inside the pages directory.
	Filename string `json:"filename"`

	// SourceURL is the page URL, or the page_<index> placeholder.
	SourceURL string `json:"url"`

	// Title is the page title, possibly empty.
	Title string `json:"title"`
}

// Metadata is the content of metadata.json inside a run directory.
type Metadata struct {
	BaseURL        string `json:"base_url"`
	CrawlTimestamp string `json:"crawl_timestamp"`
	TotalPages     int    `json:"total_pages"`
	Status         string `json:"status"`
	CreditsUsed    int    `json:"credits_used"`
}

// NewMetadata builds the metadata record for a crawl result.
// A nil result yields the documented defaults.
func NewMetadata(result *CrawlResult, baseURL, timestamp string) Metadata {
	md := Metadata{
		BaseURL:        baseURL,
		CrawlTimestamp: timestamp,
		Status:         UnknownStatus,
	}
	if result == nil {
		return md
	}
	md.TotalPages = result.Total
	md.Status = result.StatusOrDefault()
	md.CreditsUsed = result.CreditsUsed
	return md
}
