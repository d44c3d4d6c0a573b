// Package fakebq serves the slice of the BigQuery REST API that query jobs
// use: jobs.insert, jobs.get and jobs.getQueryResults. Every job returns the
// same single-column INTEGER result set, split into fixed pages.
package fakebq

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Read records one getQueryResults call that returned rows.
type Read struct {
	JobID     string
	PageToken string
}

// Server is a fake BigQuery endpoint. Point a client at Endpoint().
type Server struct {
	*httptest.Server

	pages [][]int64

	mu       sync.Mutex
	jobs     map[string]map[string]any
	inserted []string
	reads    []Read
	gets     int
}

// New starts a server whose query results are pages, in order. Page i
// after the first is requested with token "p<i>".
func New(pages ...[]int64) *Server {
	s := &Server{pages: pages, jobs: make(map[string]map[string]any)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Endpoint is the base URL to pass to option.WithEndpoint.
func (s *Server) Endpoint() string {
	return s.URL + "/"
}

// Inserted returns the ids of submitted jobs in submission order.
func (s *Server) Inserted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.inserted...)
}

// Reads returns the row reads served so far.
func (s *Server) Reads() []Read {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Read(nil), s.reads...)
}

// Gets returns how many jobs.get calls were served.
func (s *Server) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	// Paths look like .../projects/{project}/jobs[/{id}] or
	// .../projects/{project}/queries/{id}.
	i := strings.Index(r.URL.Path, "/projects/")
	if i < 0 {
		notFound(w, r.URL.Path)
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path[i+len("/projects/"):], "/"), "/")

	switch {
	case r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "jobs":
		s.insert(w, r)
	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "jobs":
		s.get(w, parts[2])
	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "queries":
		s.results(w, r, parts[2])
	default:
		notFound(w, r.URL.Path)
	}
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request) {
	var job map[string]any
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ref, _ := job["jobReference"].(map[string]any)
	id, _ := ref["jobId"].(string)
	if id == "" {
		http.Error(w, `{"error":{"code":400,"message":"job id required"}}`, http.StatusBadRequest)
		return
	}
	job["status"] = map[string]any{"state": "DONE"}

	s.mu.Lock()
	s.jobs[id] = job
	s.inserted = append(s.inserted, id)
	s.mu.Unlock()

	writeJSON(w, job)
}

func (s *Server) get(w http.ResponseWriter, id string) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if ok {
		s.gets++
	}
	s.mu.Unlock()

	if !ok {
		notFound(w, "job "+id)
		return
	}
	writeJSON(w, job)
}

func (s *Server) results(w http.ResponseWriter, r *http.Request, id string) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		notFound(w, "job "+id)
		return
	}

	total := 0
	for _, p := range s.pages {
		total += len(p)
	}
	resp := map[string]any{
		"jobComplete":  true,
		"jobReference": job["jobReference"],
		"schema":       map[string]any{"fields": []map[string]string{{"name": "n", "type": "INTEGER"}}},
		"totalRows":    strconv.Itoa(total),
	}

	// maxResults=0 is the client waiting for completion.
	q := r.URL.Query()
	if q.Get("maxResults") == "0" {
		writeJSON(w, resp)
		return
	}

	token := q.Get("pageToken")
	page := 0
	if token != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(token, "p"))
		if err != nil || n <= 0 || n >= len(s.pages) {
			http.Error(w, `{"error":{"code":400,"message":"bad page token"}}`, http.StatusBadRequest)
			return
		}
		page = n
	}

	s.mu.Lock()
	s.reads = append(s.reads, Read{JobID: id, PageToken: token})
	s.mu.Unlock()

	var rows []map[string]any
	if page < len(s.pages) {
		for _, v := range s.pages[page] {
			rows = append(rows, map[string]any{"f": []map[string]string{{"v": strconv.FormatInt(v, 10)}}})
		}
	}
	resp["rows"] = rows
	if page+1 < len(s.pages) {
		resp["pageToken"] = fmt.Sprintf("p%d", page+1)
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": 404, "message": "not found: " + what},
	})
}
