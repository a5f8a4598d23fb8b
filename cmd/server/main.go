// Command server exposes the bunpo sentence analyzer as a JSON REST API.
//
// Endpoints:
//
//	POST /api/v1/analyze   body: {"sentence":"..."}
//	GET  /api/v1/health
//	GET  /api/v1/rules
//	GET  /metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/jlpt-tools/bunpo"
)

// config is loaded from the environment. Names follow the service's
// historical variables, so existing deployments keep working.
type config struct {
	Host            string        `env:"HOST" env-default:"0.0.0.0"`
	Port            int           `env:"PORT" env-default:"8000"`
	RulesFile       string        `env:"GRAMMAR_RULES_FILE" env-default:"data/grammar_rules.json"`
	VocabularyFile  string        `env:"VOCABULARY_LEVELS_FILE" env-default:"data/vocabulary_levels.json"`
	CORSOrigins     string        `env:"CORS_ORIGINS" env-default:"*"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string        `env:"LOG_FORMAT" env-default:"text"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func loadConfig() (*config, error) {
	var cfg config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return &cfg, nil
}

func newLogger(cfg *config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}

// ---- metrics ------------------------------------------------------------

var (
	analyzeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bunpo_analyze_requests_total",
		Help: "Analyze requests by HTTP status code.",
	}, []string{"status"})
	analyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bunpo_analyze_duration_seconds",
		Help:    "End-to-end analyze request duration.",
		Buckets: prometheus.DefBuckets,
	})
	grammarMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bunpo_grammar_matches_total",
		Help: "Grammar pattern matches emitted across all requests.",
	})
)

// ---- JSON response types ------------------------------------------------

type tokenJSON struct {
	Surface   string `json:"surface"`
	Lemma     string `json:"lemma"`
	POS       string `json:"pos"`
	Conj      string `json:"conj"`
	JLPTLevel string `json:"jlpt_level,omitempty"`
}

type spanJSON struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type patternJSON struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Level         string   `json:"level"`
	Meaning       string   `json:"meaning"`
	Structure     []string `json:"structure"`
	Span          spanJSON `json:"span"`
	MatchedTokens []int    `json:"matched_tokens"`
}

type analyzeRequest struct {
	Sentence string `json:"sentence"`
}

type analyzeResponse struct {
	Sentence        string        `json:"sentence"`
	GrammarPatterns []patternJSON `json:"grammar_patterns"`
	Tokens          []tokenJSON   `json:"tokens"`
	SpansReliable   bool          `json:"spans_reliable"`
}

type ruleJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Level   string `json:"level"`
	Meaning string `json:"meaning"`
}

type rulesResponse struct {
	Rules []ruleJSON `json:"rules"`
}

type healthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
	Rules      int             `json:"rules"`
	Vocabulary int             `json:"vocabulary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func toAnalyzeResponse(a *bunpo.Analysis) analyzeResponse {
	patterns := make([]patternJSON, 0, len(a.Matches))
	for _, m := range a.Matches {
		indices := make([]int, 0, m.TokenEnd-m.TokenStart)
		for i := m.TokenStart; i < m.TokenEnd; i++ {
			indices = append(indices, i)
		}
		patterns = append(patterns, patternJSON{
			ID:            m.RuleID,
			Name:          m.Name,
			Level:         m.Level,
			Meaning:       m.Meaning,
			Structure:     m.Structure,
			Span:          spanJSON{Start: m.Span.Start, End: m.Span.End},
			MatchedTokens: indices,
		})
	}
	tokens := make([]tokenJSON, 0, len(a.Tokens))
	for _, t := range a.Tokens {
		tokens = append(tokens, tokenJSON{
			Surface:   t.Surface,
			Lemma:     t.Lemma,
			POS:       t.POS,
			Conj:      t.Conj,
			JLPTLevel: t.JLPTLevel,
		})
	}
	return analyzeResponse{
		Sentence:        a.Sentence,
		GrammarPatterns: patterns,
		Tokens:          tokens,
		SpansReliable:   a.SpansReliable,
	}
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "error", err)
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, errorResponse{Error: msg})
}

// ---- handlers -----------------------------------------------------------

func handleAnalyze(logger *slog.Logger, analyzer *bunpo.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(logger, w, http.StatusMethodNotAllowed, "POST required")
			analyzeRequests.WithLabelValues(strconv.Itoa(http.StatusMethodNotAllowed)).Inc()
			return
		}
		start := time.Now()

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(logger, w, http.StatusBadRequest, "body must be JSON with a 'sentence' field")
			analyzeRequests.WithLabelValues(strconv.Itoa(http.StatusBadRequest)).Inc()
			return
		}
		sentence := strings.TrimSpace(req.Sentence)
		if sentence == "" {
			writeError(logger, w, http.StatusBadRequest, "sentence must not be empty")
			analyzeRequests.WithLabelValues(strconv.Itoa(http.StatusBadRequest)).Inc()
			return
		}

		analysis, err := analyzer.Analyze(r.Context(), sentence)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				// Client went away; nothing to write.
				analyzeRequests.WithLabelValues("499").Inc()
				return
			}
			logger.Error("analyze failed", "sentence", sentence, "error", err)
			writeError(logger, w, http.StatusInternalServerError, "analysis failed")
			analyzeRequests.WithLabelValues(strconv.Itoa(http.StatusInternalServerError)).Inc()
			return
		}

		grammarMatches.Add(float64(len(analysis.Matches)))
		analyzeDuration.Observe(time.Since(start).Seconds())
		analyzeRequests.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
		logger.Info("analyzed sentence",
			"tokens", len(analysis.Tokens),
			"matches", len(analysis.Matches),
			"spans_reliable", analysis.SpansReliable,
			"duration", time.Since(start))
		writeJSON(logger, w, http.StatusOK, toAnalyzeResponse(analysis))
	}
}

func handleRules(logger *slog.Logger, analyzer *bunpo.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(logger, w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		rules := analyzer.Rules().Rules()
		out := make([]ruleJSON, 0, len(rules))
		for _, rule := range rules {
			out = append(out, ruleJSON{
				ID:      rule.ID,
				Name:    rule.Name,
				Level:   rule.Level,
				Meaning: rule.Meaning,
			})
		}
		writeJSON(logger, w, http.StatusOK, rulesResponse{Rules: out})
	}
}

func handleHealth(logger *slog.Logger, analyzer *bunpo.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(logger, w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		writeJSON(logger, w, http.StatusOK, healthResponse{
			Status: "ok",
			Components: map[string]bool{
				"tokenizer":     true,
				"grammar_rules": true,
				"vocabulary":    true,
			},
			Rules:      analyzer.Rules().Len(),
			Vocabulary: analyzer.Vocabulary().Len(),
		})
	}
}

func newMux(logger *slog.Logger, analyzer *bunpo.Analyzer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/analyze", handleAnalyze(logger, analyzer))
	mux.HandleFunc("/api/v1/rules", handleRules(logger, analyzer))
	mux.HandleFunc("/api/v1/health", handleHealth(logger, analyzer))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ---- main ---------------------------------------------------------------

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	logger.Info("loading grammar rules", "path", cfg.RulesFile)
	rules, err := bunpo.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	logger.Info("loading vocabulary levels", "path", cfg.VocabularyFile)
	vocab, err := bunpo.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		return err
	}

	logger.Info("initializing tokenizer")
	tok, err := bunpo.NewKagomeTokenizer()
	if err != nil {
		return fmt.Errorf("tokenizer: %w", err)
	}
	analyzer := bunpo.NewAnalyzer(tok, rules, vocab)
	logger.Info("stores loaded", "rules", rules.Len(), "vocabulary", vocab.Len())

	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      c.Handler(newMux(logger, analyzer)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
