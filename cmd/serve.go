package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/climate-rank/internal/engine"
	"github.com/sells-group/climate-rank/internal/ingest"
	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/profile"
	"github.com/sells-group/climate-rank/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ranking API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
		handler := newServeMux(st, cfg.Rank.Profile, limiter)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handler,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type serveMux struct {
	st             store.Store
	defaultProfile string
}

// newServeMux builds the API router. The limiter may be nil to disable
// rate limiting.
func newServeMux(st store.Store, defaultProfile string, limiter *rate.Limiter) http.Handler {
	m := &serveMux{st: st, defaultProfile: defaultProfile}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	if limiter != nil {
		r.Use(rateLimit(limiter))
	}

	r.Get("/health", m.handleHealth)
	r.Get("/profiles", m.handleProfiles)
	r.Post("/rank", m.handleRank)
	r.Get("/rankings", m.handleListRankings)
	r.Get("/rankings/{id}", m.handleGetRanking)

	return r
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *serveMux) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (m *serveMux) handleProfiles(w http.ResponseWriter, _ *http.Request) {
	type profileInfo struct {
		Name       string  `json:"name"`
		Third      string  `json:"third"`
		ConfigHash string  `json:"config_hash"`
		Finance    float64 `json:"finance_threshold"`
		Monitor    float64 `json:"monitor_threshold"`
	}

	var out []profileInfo
	for _, name := range profile.Names() {
		p, err := profile.Builtin(name)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, profileInfo{
			Name:       p.Name,
			Third:      string(p.Third),
			ConfigHash: p.Hash(),
			Finance:    p.Thresholds.Finance,
			Monitor:    p.Thresholds.Monitor,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type rankRequest struct {
	Profile string                   `json:"profile"`
	Records []model.DisclosureRecord `json:"records"`
	Save    bool                     `json:"save"`
}

func (m *serveMux) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := req.Profile
	if name == "" {
		name = m.defaultProfile
	}
	p, err := profile.Builtin(name)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := req.Records
	if len(records) == 0 {
		records, err = m.st.LoadRecords(r.Context())
		if err != nil {
			zap.L().Error("load records failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "load records")
			return
		}
	} else if err := ingest.Validate(records); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	eng, err := engine.New(p)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ranking, err := eng.Rank(records)
	if err != nil {
		if eris.Is(err, engine.ErrEmptyCohort) {
			writeJSONError(w, http.StatusUnprocessableEntity, "empty cohort: no records to rank")
			return
		}
		zap.L().Error("ranking failed", zap.String("profile", name), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "ranking failed")
		return
	}

	if req.Save {
		id, err := m.st.SaveRanking(r.Context(), ranking)
		if err != nil {
			zap.L().Error("save ranking failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "save ranking")
			return
		}
		ranking.ID = id
	}

	writeJSON(w, http.StatusOK, ranking)
}

func (m *serveMux) handleListRankings(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	summaries, err := m.st.ListRankings(r.Context(), limit)
	if err != nil {
		zap.L().Error("list rankings failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "list rankings")
		return
	}
	if summaries == nil {
		summaries = []model.RankingSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (m *serveMux) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ranking, err := m.st.GetRanking(r.Context(), id)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("ranking %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
