// Package materialize turns a crawl result into a directory of markdown
// files.
//
// A run directory is named <domain label>_<YYYYMMDD_HHMMSS> and holds
// metadata.json, index.md and pages/NNN_<safe name>.md, one file per page
// with content. Nothing in this package touches the network.
package materialize
