package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/crawlzip/internal/archive"
	"github.com/nao1215/crawlzip/internal/model"
)

// maxFormBytes caps the size of a crawl form submission.
const maxFormBytes = 1 << 20

type formData struct {
	Username        string
	Depth           int
	MaxPagesDefault int
	MinDepth        int
	MaxDepth        int
	MinPages        int
	MaxPages        int
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.form.Execute(w, formData{
		Username:        usernameFrom(r.Context()),
		Depth:           s.defaultDepth,
		MaxPagesDefault: s.defaultMaxPages,
		MinDepth:        model.MinDepth,
		MaxDepth:        model.MaxDepth,
		MinPages:        model.MinPages,
		MaxPages:        model.MaxPages,
	})
	if err != nil {
		s.logger.Error("failed to render form", "error", err)
	}
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	req, err := s.parseCrawlRequest(r)
	switch {
	case err == nil:
	case model.IsValidationError(err):
		writeDetail(w, http.StatusBadRequest, capitalize(err.Error()))
		return
	case errors.Is(err, errInvalidInteger):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	default:
		writeDetail(w, http.StatusInternalServerError, "Crawl failed: "+err.Error())
		return
	}

	job := model.NewJob(req)
	defer func() {
		if err := job.Cleanup(); err != nil {
			s.logger.Warn("failed to remove crawl artifacts", "job", job.ID, "error", err)
		}
	}()

	s.logger.Info("crawl requested",
		"job", job.ID,
		"url", req.URL,
		"depth", req.Depth,
		"maxPages", req.MaxPages,
	)

	if err := s.runner.Execute(r.Context(), job); err != nil {
		writeDetail(w, http.StatusInternalServerError, "Crawl failed: "+err.Error())
		return
	}
	if job.ArchivePath == "" {
		writeDetail(w, http.StatusInternalServerError, "Crawl failed: "+archive.ErrArchival.Error())
		return
	}

	s.deliver(w, job)
}

// deliver streams the job's archive and removes it afterwards.
func (s *Server) deliver(w http.ResponseWriter, job *model.Job) {
	a := &archive.Archive{Path: job.ArchivePath}
	f, err := a.Open()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Crawl failed: "+err.Error())
		return
	}
	info, err := f.Stat()
	_ = f.Close() //nolint:errcheck // read-only
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Crawl failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+job.ArchiveName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	n, err := a.Deliver(w)
	job.ArchivePath = ""
	if err != nil {
		s.logger.Warn("archive delivery incomplete", "job", job.ID, "bytes", n, "error", err)
		return
	}
	s.logger.Info("archive delivered",
		"job", job.ID,
		"archive", job.ArchiveName,
		"bytes", n,
		"pages", job.SavedCount(),
	)
}

// parseCrawlRequest reads url, depth and max_pages from the form.
func (s *Server) parseCrawlRequest(r *http.Request) (model.CrawlRequest, error) {
	depth, err := formInt(r, "depth", s.defaultDepth)
	if err != nil {
		return model.CrawlRequest{}, err
	}
	maxPages, err := formInt(r, "max_pages", s.defaultMaxPages)
	if err != nil {
		return model.CrawlRequest{}, err
	}

	return model.NewCrawlRequest(r.PostFormValue("url"), depth, maxPages)
}

// errInvalidInteger is returned for form values that are not integers.
var errInvalidInteger = errors.New("must be an integer")

// formInt parses an integer form field, using def when it is empty.
func formInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.PostFormValue(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s %w", key, errInvalidInteger)
	}
	return n, nil
}

// capitalize upper-cases the first letter of a validation message.
func capitalize(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
