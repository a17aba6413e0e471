// Package api serves the restaurant catalog and region classifier over HTTP.
package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/restaurant-cli/internal/catalog"
	"github.com/sells-group/restaurant-cli/internal/model"
	"github.com/sells-group/restaurant-cli/internal/region"
)

// Options configures the router middleware.
type Options struct {
	AllowOrigins []string
	RateLimit    float64 // requests per second per client; 0 disables limiting
	RateBurst    int
}

// Server holds the read-only state shared by all handlers.
type Server struct {
	catalog    *catalog.Catalog
	classifier *region.Classifier
}

// NewServer creates a Server. A nil classifier uses the built-in mapping.
func NewServer(cat *catalog.Catalog, classifier *region.Classifier) *Server {
	if cat == nil {
		cat = catalog.New(nil)
	}
	if classifier == nil {
		classifier = region.Default()
	}
	return &Server{catalog: cat, classifier: classifier}
}

// Router builds the chi router with CORS, rate limiting and request logging.
func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(opts.AllowOrigins))
	if opts.RateLimit > 0 {
		r.Use(newClientLimiter(opts.RateLimit, opts.RateBurst).middleware)
	}
	r.Use(logRequests)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/regions", s.handleRegions)
		r.Get("/categories", s.handleCategories)
		r.Get("/tags", s.handleTags)
		r.Get("/restaurants", s.handleRestaurants)
		r.Get("/restaurants/nearest", s.handleNearest)
		r.Get("/restaurants/recommend", s.handleRecommend)
		r.Get("/restaurants/{name}", s.handleRestaurant)
		r.Get("/classify", s.handleClassify)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"restaurants": s.catalog.Len(),
	})
}

// regionsResponse lists the catalog regions next to the active mapping.
type regionsResponse struct {
	Regions  []string       `json:"regions"`
	Mapping  region.Mapping `json:"mapping"`
	Fallback string         `json:"fallback"`
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	regions := s.catalog.Regions()
	if len(regions) == 0 {
		regions = s.classifier.Regions()
	}
	writeJSON(w, http.StatusOK, regionsResponse{
		Regions:  regions,
		Mapping:  s.classifier.Mapping(),
		Fallback: s.classifier.Fallback(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": nonNil(s.catalog.Categories())})
}

func (s *Server) handleTags(w http.ResponseWriter, _ *http.Request) {
	tags := s.catalog.Tags()
	writeJSON(w, http.StatusOK, map[string][]catalog.TagCount{"tags": tags})
}

// listResponse wraps a result page.
type listResponse struct {
	Total       int                `json:"total"`
	Restaurants []model.Restaurant `json:"restaurants"`
}

func (s *Server) handleRestaurants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), 0)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	results := s.catalog.Search(catalog.SearchOptions{
		Region:   q.Get("region"),
		Category: q.Get("category"),
		Purpose:  q.Get("purpose"),
		Keyword:  q.Get("keyword"),
	})
	total := len(results)
	if limit > 0 && limit < total {
		results = results[:limit]
	}
	if results == nil {
		results = []model.Restaurant{}
	}
	writeJSON(w, http.StatusOK, listResponse{Total: total, Restaurants: results})
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required numbers")
		return
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		writeError(w, http.StatusBadRequest, "lat/lng out of range")
		return
	}
	limit, err := intParam(q.Get("limit"), catalog.DefaultNearestLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	ranked := s.catalog.Nearest(lat, lng, catalog.NearestOptions{
		Category: q.Get("category"),
		Purpose:  q.Get("purpose"),
		Limit:    limit,
	})
	if ranked == nil {
		ranked = []catalog.Ranked{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": ranked})
}

// handleRecommend ranks restaurants for a group given one from=lat,lng per member.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	froms := q["from"]
	if len(froms) == 0 {
		writeError(w, http.StatusBadRequest, "at least one from=lat,lng is required")
		return
	}
	origins := make([]catalog.Point, 0, len(froms))
	for _, f := range froms {
		p, err := catalog.ParsePoint(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be lat,lng within range")
			return
		}
		origins = append(origins, p)
	}
	limit, err := intParam(q.Get("limit"), catalog.DefaultRecommendLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	ranked := s.catalog.Recommend(origins, catalog.RecommendOptions{
		SearchOptions: catalog.SearchOptions{
			Region:   q.Get("region"),
			Category: q.Get("category"),
			Purpose:  q.Get("purpose"),
			Keyword:  q.Get("keyword"),
		},
		Limit: limit,
	})
	if ranked == nil {
		ranked = []catalog.Candidate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": ranked})
}

func (s *Server) handleRestaurant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	found, ok := s.catalog.FindByName(name)
	if !ok {
		writeError(w, http.StatusNotFound, "restaurant not found")
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// classifyResponse is the result of classifying one address.
type classifyResponse struct {
	Address string `json:"address"`
	Region  string `json:"region"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	addresses := r.URL.Query()["address"]
	if len(addresses) == 0 {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	if len(addresses) == 1 {
		writeJSON(w, http.StatusOK, classifyResponse{
			Address: addresses[0],
			Region:  s.classifier.Classify(addresses[0]),
		})
		return
	}
	out := make([]classifyResponse, len(addresses))
	for i, a := range addresses {
		out[i] = classifyResponse{Address: a, Region: s.classifier.Classify(a)}
	}
	writeJSON(w, http.StatusOK, out)
}

func intParam(raw string, def int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// clientLimiter keeps one token bucket per client IP.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// maxTrackedClients bounds the limiter map; it is reset when exceeded.
const maxTrackedClients = 10000

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (l *clientLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedClients {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
