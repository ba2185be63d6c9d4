package materialize

import (
	"bufio"
	"strconv"

	"github.com/nao1215/markdown"
)

// untitled labels index entries for pages without a title.
const untitled = "Untitled"

// writePageFile writes a single page: title heading, source URL, crawl
// timestamp, a rule and the page body.
func writePageFile(path, title, pageURL, timestamp, body string) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	w := bufio.NewWriter(f)
	md := markdown.NewMarkdown(w)
	md.H1(title)
	md.PlainText("")
	md.PlainTextf("%s %s", markdown.Bold("URL:"), pageURL)
	md.PlainText("")
	md.PlainTextf("%s %s", markdown.Bold("Crawled:"), timestamp)
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText(body)
	if err := md.Build(); err != nil {
		return err
	}
	return w.Flush()
}

// writeIndex writes index.md listing every saved page of run.
func writeIndex(path string, run *Run) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	w := bufio.NewWriter(f)
	md := markdown.NewMarkdown(w)
	md.H1("Crawl Results: " + run.DomainLabel)
	md.PlainText("")
	md.PlainTextf("%s %s", markdown.Bold("Base URL:"), run.BaseURL)
	md.PlainTextf("%s %s", markdown.Bold("Crawled:"), run.Timestamp)
	md.PlainTextf("%s %s", markdown.Bold("Total Pages:"), strconv.Itoa(run.SavedCount()))
	md.PlainText("")
	md.H2("Pages")
	md.PlainText("")
	if len(run.Pages) > 0 {
		md.BulletList(indexEntries(run)...)
	}
	if err := md.Build(); err != nil {
		return err
	}
	return w.Flush()
}

// indexEntries renders one "[title](pages/file) - url" line per saved page.
func indexEntries(run *Run) []string {
	entries := make([]string, 0, len(run.Pages))
	for _, p := range run.Pages {
		title := p.Title
		if title == "" {
			title = untitled
		}
		entries = append(entries, markdown.Link(title, PagesDir+"/"+p.Filename)+" - "+p.SourceURL)
	}
	return entries
}
