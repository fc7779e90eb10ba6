// Package api is the HTTP shell over the aggregation engine: route and
// query-parameter translation, CORS, and status-code mapping. Empty feeds
// are valid 200 responses; only internal faults become 5xx.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/polymarket-feed/internal/aggregate"
	"github.com/polymarket-feed/internal/config"
	"github.com/polymarket-feed/internal/watchparty"
	"github.com/rs/cors"
)

// Aggregator is the engine surface the shell consumes.
type Aggregator interface {
	GetCategoryMarkets(ctx context.Context, category string, limit int, strategy aggregate.Strategy) (*aggregate.Result, error)
	Trending(ctx context.Context, limit int) (*aggregate.Result, error)
	Search(ctx context.Context, query string, limit int) (*aggregate.SearchResult, error)
}

type Server struct {
	config     config.APIConfig
	aggregator Aggregator
	hub        *watchparty.Hub
	server     *http.Server
}

// NewServer wires the shell. hub may be nil when the watch party is
// disabled.
func NewServer(cfg config.APIConfig, aggregator Aggregator, hub *watchparty.Hub) *Server {
	return &Server{
		config:     cfg,
		aggregator: aggregator,
		hub:        hub,
	}
}

// Router builds the route table. Split out from Run so tests can mount it on
// an httptest server.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/markets/trending", s.getTrending).Methods("GET")
	api.HandleFunc("/markets/{category:"+strings.Join(aggregate.CategoryNames, "|")+"}", s.getCategoryMarkets).Methods("GET")
	api.HandleFunc("/search", s.getSearch).Methods("GET")
	api.HandleFunc("/categories", s.getCategories).Methods("GET")
	api.HandleFunc("/health", s.getHealth).Methods("GET")

	if s.hub != nil {
		router.HandleFunc("/ws/watchparty/{marketID}", s.hub.HandleWS)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           3600,
	})

	return c.Handler(router)
}

func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.config.BindAddress,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	log.Printf("API server starting on %s", s.config.BindAddress)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) getCategoryMarkets(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	limit := parseLimit(r.URL.Query().Get("limit"))
	strategy := aggregate.ParseStrategy(r.URL.Query().Get("strategy"))

	result, err := s.aggregator.GetCategoryMarkets(r.Context(), category, limit, strategy)
	if err != nil {
		log.Printf("category %s: %v", category, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, result)
}

func (s *Server) getTrending(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	result, err := s.aggregator.Trending(r.Context(), limit)
	if err != nil {
		log.Printf("trending: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, result)
}

func (s *Server) getSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := parseLimit(r.URL.Query().Get("limit"))

	result, err := s.aggregator.Search(r.Context(), query, limit)
	if err != nil {
		log.Printf("search %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, result)
}

func (s *Server) getCategories(w http.ResponseWriter, r *http.Request) {
	type category struct {
		Slug     string   `json:"slug"`
		Keywords []string `json:"keywords"`
	}

	categories := make([]category, 0, len(aggregate.CategoryNames))
	for _, name := range aggregate.CategoryNames {
		categories = append(categories, category{
			Slug:     name,
			Keywords: aggregate.CategoryKeywords[name],
		})
	}

	writeJSON(w, struct {
		Categories []category `json:"categories"`
		Count      int        `json:"count"`
	}{
		Categories: categories,
		Count:      len(categories),
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// parseLimit treats absent, malformed, or non-positive values as "use the
// engine default".
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg})
}
