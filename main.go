package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"github.com/nermal1/MLB-Pitcher-Market-Value/arsenal"
	"github.com/nermal1/MLB-Pitcher-Market-Value/lab"
	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
	"github.com/nermal1/MLB-Pitcher-Market-Value/records"
	"github.com/nermal1/MLB-Pitcher-Market-Value/statsapi"
)

const (
	sourceAPI      = "api"
	sourcePostgres = "postgres"
)

// Source serves pitcher season records
type Source interface {
	ListPitchers(ctx context.Context, q models.PitcherQuery) (models.PitcherPage, error)
	Archetypes(ctx context.Context) ([]string, error)
	FindPitcher(ctx context.Context, name string) (models.Record, error)
	Ping(ctx context.Context) error
}

// Similarity serves the archetype neighbours and similarity graph, which
// only the statistics backend computes
type Similarity interface {
	Similar(ctx context.Context, name string) ([]models.Record, error)
	Graph(ctx context.Context, q models.GraphQuery) (models.Graph, error)
}

type Server struct {
	source     Source
	similarity Similarity
	extractor  *arsenal.Extractor
	sessions   *lab.Store
	metrics    *Metrics
	db         *pgxpool.Pool
	router     *mux.Router
	httpServer *http.Server
	config     *Config
}

type Config struct {
	Port             string
	StatsAPIURL      string
	RecordSource     string
	DB               records.Config
	CacheSize        int
	CacheTTL         time.Duration
	SessionLimit     int
	SessionTTL       time.Duration
	AllowedOrigins   []string
	ExtractionConfig string
}

func NewConfig() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		StatsAPIURL:  getEnv("STATS_API_URL", statsapi.DefaultBaseURL),
		RecordSource: strings.ToLower(getEnv("RECORD_SOURCE", sourceAPI)),
		DB: records.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "pitchlab"),
			Password: getEnv("DB_PASSWORD", "pitchlab"),
			Name:     getEnv("DB_NAME", "pitchers"),
		},
		CacheSize:        getEnvInt("CACHE_SIZE", statsapi.DefaultCacheSize),
		CacheTTL:         getEnvDuration("CACHE_TTL", statsapi.DefaultCacheTTL),
		SessionLimit:     getEnvInt("SESSION_LIMIT", lab.DefaultSessionLimit),
		SessionTTL:       getEnvDuration("SESSION_TTL", lab.DefaultSessionTTL),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		ExtractionConfig: getEnv("EXTRACTION_CONFIG", ""),
	}
}

func NewServer(config *Config) (*Server, error) {
	extractCfg := arsenal.DefaultConfig()
	if config.ExtractionConfig != "" {
		cfg, err := arsenal.LoadConfig(config.ExtractionConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load extraction config: %w", err)
		}
		extractCfg = cfg
		log.Printf("Loaded extraction config from %s", config.ExtractionConfig)
	}

	stats := statsapi.New(config.StatsAPIURL, statsapi.WithCache(config.CacheSize, config.CacheTTL))

	var source Source = stats
	var db *pgxpool.Pool
	switch config.RecordSource {
	case sourceAPI:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stats.Ping(ctx); err != nil {
			log.Printf("Warning: stats backend at %s unreachable: %v", config.StatsAPIURL, err)
		}
	case sourcePostgres:
		var err error
		db, err = records.Open(context.Background(), config.DB)
		if err != nil {
			return nil, err
		}
		source = records.NewStore(db)
	default:
		return nil, fmt.Errorf("unknown record source %q", config.RecordSource)
	}

	s := newServer(config, source, stats, arsenal.NewExtractor(extractCfg))
	s.db = db
	return s, nil
}

// newServer wires a server around already constructed dependencies
func newServer(config *Config, source Source, similarity Similarity, extractor *arsenal.Extractor) *Server {
	s := &Server{
		source:     source,
		similarity: similarity,
		extractor:  extractor,
		sessions:   lab.NewStore(config.SessionLimit, config.SessionTTL, extractor),
		metrics:    NewMetrics(),
		config:     config,
		router:     mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.rootHandler).Methods("GET")

	// API version prefix
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.healthHandler).Methods("GET")
	api.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	// Statistics endpoints
	api.HandleFunc("/pitchers", s.getPitchersHandler).Methods("GET")
	api.HandleFunc("/archetypes", s.getArchetypesHandler).Methods("GET")
	api.HandleFunc("/pitchers/{name}/similar", s.getSimilarHandler).Methods("GET")
	api.HandleFunc("/graph", s.getGraphHandler).Methods("GET")

	// Pitch lab endpoints
	api.HandleFunc("/pitchers/{name}/arsenal", s.getArsenalHandler).Methods("GET")
	api.HandleFunc("/pitch-types", s.getPitchTypesHandler).Methods("GET")
	api.HandleFunc("/trajectory", s.trajectoryHandler).Methods("POST")
	api.HandleFunc("/tunnel", s.tunnelHandler).Methods("POST")

	// Lab session endpoints
	api.HandleFunc("/sessions", s.createSessionHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.getSessionHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.deleteSessionHandler).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/pitcher", s.selectPitcherHandler).Methods("PUT")
	api.HandleFunc("/sessions/{id}/pitches/{code}/toggle", s.togglePitchHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/targets/{code}", s.setTargetHandler).Methods("PUT")
	api.HandleFunc("/sessions/{id}/targets/{code}", s.clearTargetHandler).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/speed", s.setSpeedHandler).Methods("PUT")
	api.HandleFunc("/sessions/{id}/tunnel", s.sessionTunnelHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/trails", s.sessionTrailsHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/frame", s.sessionFrameHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/throw", s.throwHandler).Methods("POST")

	// Apply middleware
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.metricsMiddleware)
}

// Handler returns the router wrapped in CORS and compression
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	})
	return handlers.CompressHandler(c.Handler(s.router))
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting Pitch Lab API on port %s (source: %s)", s.config.Port, s.config.RecordSource)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down Pitch Lab API...")

	if s.db != nil {
		s.db.Close()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Middleware
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		log.Printf("%s %s %d %v", r.Method, r.RequestURI, lrw.statusCode, time.Since(start))
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %v", err)
				writeError(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Handlers
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	apiInfo := map[string]interface{}{
		"service": "Pitch Lab API",
		"version": "1.0.0",
		"status":  "online",
		"time":    time.Now().UTC(),
		"source":  s.config.RecordSource,
		"endpoints": map[string]interface{}{
			"health":      "/api/v1/health",
			"pitchers":    "/api/v1/pitchers",
			"archetypes":  "/api/v1/archetypes",
			"graph":       "/api/v1/graph",
			"pitch_types": "/api/v1/pitch-types",
			"trajectory":  "/api/v1/trajectory",
			"tunnel":      "/api/v1/tunnel",
			"sessions":    "/api/v1/sessions",
		},
		"documentation": "Pitch trajectory lab with tunnel analysis over MLB pitcher season data",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.source.Ping(ctx); err != nil {
		apiInfo["status"] = "degraded"
		apiInfo["records"] = "disconnected"
	} else {
		apiInfo["records"] = "connected"
	}

	writeJSON(w, apiInfo)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := ServiceHealth{
		Status: "healthy",
		Source: s.config.RecordSource,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.source.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Error = err.Error()
		writeJSONStatus(w, health, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, health)
}

// Helper types and functions
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s=%q, using %v", key, value, defaultValue)
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	config := NewConfig()

	server, err := NewServer(config)
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatal("Server shutdown failed:", err)
		}
		log.Println("Server shutdown complete")
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed to start:", err)
	}
}
