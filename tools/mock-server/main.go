// Package main implements a mock Unsplash API server for local development.
// It serves a generated photo catalog through the editorial, collection,
// search and download-tracking endpoints without real credentials.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// editorialCollectionID mirrors the default editorial collection.
const editorialCollectionID = "317099"

const (
	defaultPerPage = 10
	maxPerPage     = 30
)

var subjects = []string{
	"mountain lake at dawn",
	"cat sleeping on a windowsill",
	"city skyline at night",
	"forest trail in autumn",
	"ocean waves on black sand",
	"desert dunes under stars",
	"coffee cup on a wooden table",
	"dog running on the beach",
	"snowy pine trees",
	"street market in the rain",
}

var photographers = []string{"Ada Park", "Jonas Weber", "Mia Alvarez", "Kenji Sato", "Noor Haddad"}

type mockUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Links    struct {
		HTML string `json:"html"`
	} `json:"links"`
}

type mockPhoto struct {
	ID          string            `json:"id"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Color       string            `json:"color"`
	Description string            `json:"description"`
	URLs        map[string]string `json:"urls"`
	Links       map[string]string `json:"links"`
	User        mockUser          `json:"user"`
}

type catalog struct {
	photos      []mockPhoto
	byID        map[string]int
	collections map[string][]int

	mu        sync.Mutex
	downloads map[string]int
}

func newCatalog(n int, publicURL string) *catalog {
	publicURL = strings.TrimSuffix(publicURL, "/")
	c := &catalog{
		photos:      make([]mockPhoto, n),
		byID:        make(map[string]int, n),
		collections: map[string][]int{},
		downloads:   map[string]int{},
	}

	for i := range c.photos {
		id := fmt.Sprintf("mock%04d", i)
		subject := subjects[i%len(subjects)]
		author := photographers[i%len(photographers)]
		username := strings.ToLower(strings.ReplaceAll(author, " ", ""))
		img := "https://images.example.com/" + id

		p := mockPhoto{
			ID:          id,
			Width:       4000 + (i%5)*200,
			Height:      3000 - (i%3)*500,
			Color:       fmt.Sprintf("#%02x%02x%02x", (i*37)%256, (i*91)%256, (i*53)%256),
			Description: subject,
			URLs: map[string]string{
				"raw":     img,
				"full":    img + "?q=85",
				"regular": img + "?w=1080",
				"small":   img + "?w=400",
				"thumb":   img + "?w=200",
			},
			Links: map[string]string{
				"self":              publicURL + "/photos/" + id,
				"html":              "https://unsplash.example.com/photos/" + id,
				"download":          "https://unsplash.example.com/photos/" + id + "/download",
				"download_location": publicURL + "/photos/" + id + "/download",
			},
		}
		p.User.Name = author
		p.User.Username = username
		p.User.Links.HTML = "https://unsplash.example.com/@" + username

		c.photos[i] = p
		c.byID[id] = i

		if i%3 == 0 {
			c.collections[editorialCollectionID] = append(c.collections[editorialCollectionID], i)
		}
		subjectCollection := strconv.Itoa(1000 + i%len(subjects))
		c.collections[subjectCollection] = append(c.collections[subjectCollection], i)
	}
	return c
}

// search ranks photos whose description fuzzily contains query, closest
// first.
func (c *catalog) search(query string) []int {
	targets := make([]string, len(c.photos))
	for i := range c.photos {
		targets[i] = c.photos[i].Description
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]int, len(ranks))
	for i, r := range ranks {
		out[i] = r.OriginalIndex
	}
	return out
}

func (c *catalog) recordDownload(id string) (mockPhoto, bool) {
	i, ok := c.byID[id]
	if !ok {
		return mockPhoto{}, false
	}
	c.mu.Lock()
	c.downloads[id]++
	c.mu.Unlock()
	return c.photos[i], true
}

func (c *catalog) downloadCount(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downloads[id]
}

func (c *catalog) page(indices []int, page, perPage int) []mockPhoto {
	out := []mockPhoto{}
	start := (page - 1) * perPage
	if start >= len(indices) {
		return out
	}
	end := min(start+perPage, len(indices))
	for _, i := range indices[start:end] {
		out = append(out, c.photos[i])
	}
	return out
}

func main() {
	port := flag.Int("port", 8090, "port to listen on")
	count := flag.Int("photos", 95, "number of photos in the catalog")
	publicURL := flag.String("public-url", "", "URL clients reach this server at (default http://localhost:<port>)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if *publicURL == "" {
		*publicURL = fmt.Sprintf("http://localhost:%d", *port)
	}
	cat := newCatalog(*count, *publicURL)
	logger.Info("generated catalog", "photos", len(cat.photos), "collections", len(cat.collections))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Unsplash server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(logger, cat),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, cat *catalog) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /photos", listHandler(logger, cat))
	mux.HandleFunc("GET /collections/{id}/photos", collectionHandler(logger, cat))
	mux.HandleFunc("GET /search/photos", searchHandler(logger, cat))
	mux.HandleFunc("GET /photos/{id}/download", downloadHandler(logger, cat))
	return requestLogger(logger, requireClientID(mux))
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

// requireClientID rejects requests carrying neither a Client-ID
// Authorization header nor a client_id query parameter.
func requireClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Client-ID ") && r.URL.Query().Get("client_id") == "" {
			writeErrors(w, http.StatusUnauthorized, "OAuth error: The access token is invalid")
			return
		}
		w.Header().Set("X-Ratelimit-Limit", "50")
		w.Header().Set("X-Ratelimit-Remaining", "49")
		next.ServeHTTP(w, r)
	})
}

func pageParams(r *http.Request) (page, perPage int) {
	page, perPage = 1, defaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = min(v, maxPerPage)
	}
	return page, perPage
}

func listHandler(logger *slog.Logger, cat *catalog) http.HandlerFunc {
	all := make([]int, len(cat.photos))
	for i := range all {
		all[i] = len(all) - 1 - i
	}

	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := pageParams(r)
		writeList(w, cat.page(all, page, perPage), len(all))
		logger.Info("list", "page", page, "per_page", perPage, "total", len(all))
	}
}

func collectionHandler(logger *slog.Logger, cat *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		indices, ok := cat.collections[id]
		if !ok {
			writeErrors(w, http.StatusNotFound, "Couldn't find Collection")
			return
		}
		page, perPage := pageParams(r)
		writeList(w, cat.page(indices, page, perPage), len(indices))
		logger.Info("collection", "id", id, "page", page, "per_page", perPage, "total", len(indices))
	}
}

func searchHandler(logger *slog.Logger, cat *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("query"))
		if query == "" {
			writeErrors(w, http.StatusBadRequest, "query is missing")
			return
		}

		page, perPage := pageParams(r)
		matched := cat.search(query)
		total := len(matched)

		resp := struct {
			Total      int         `json:"total"`
			TotalPages int         `json:"total_pages"`
			Results    []mockPhoto `json:"results"`
		}{
			Total:      total,
			TotalPages: (total + perPage - 1) / perPage,
			Results:    cat.page(matched, page, perPage),
		}

		writeJSON(w, http.StatusOK, resp)
		logger.Info("search", "query", query, "matched", total, "page", page, "per_page", perPage)
	}
}

func downloadHandler(logger *slog.Logger, cat *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		photo, ok := cat.recordDownload(id)
		if !ok {
			writeErrors(w, http.StatusNotFound, "Couldn't find Photo")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": photo.URLs["full"]})
		logger.Info("download tracked", "id", id, "count", cat.downloadCount(id))
	}
}

func writeList(w http.ResponseWriter, photos []mockPhoto, total int) {
	w.Header().Set("X-Total", strconv.Itoa(total))
	w.Header().Set("X-Per-Page", strconv.Itoa(len(photos)))
	writeJSON(w, http.StatusOK, photos)
}

func writeErrors(w http.ResponseWriter, status int, msgs ...string) {
	writeJSON(w, status, map[string][]string{"errors": msgs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
