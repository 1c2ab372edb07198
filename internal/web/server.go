package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/basislabs/dnvault/internal/logger"
	"github.com/basislabs/dnvault/internal/state"
	"github.com/basislabs/dnvault/internal/utils"
	"github.com/basislabs/dnvault/internal/vault"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer handles HTTP requests for vault data and previews
type WebServer struct {
	router        *mux.Router
	port          string
	vault         *vault.Vault
	assetDecimals int
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, v *vault.Vault, assetDecimals int) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:        mux.NewRouter(),
		port:          port,
		vault:         v,
		assetDecimals: assetDecimals,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// Prometheus scrape endpoint
	ws.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/vault/summary", ws.handleGetVaultSummary).Methods("GET")
	api.HandleFunc("/vault/preview/deposit", ws.handlePreviewDeposit).Methods("GET")
	api.HandleFunc("/vault/preview/withdraw", ws.handlePreviewWithdraw).Methods("GET")
	api.HandleFunc("/vault/shares/{owner}", ws.handleGetShares).Methods("GET")
	api.HandleFunc("/operations", ws.handleGetOperations).Methods("GET")
	api.HandleFunc("/rebalances", ws.handleGetRebalances).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns comprehensive server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	var hasErrors bool

	// Latest engine cycle, if any have completed
	var cycleInfo map[string]interface{}
	latestSnapshot, snapErr := state.GetLatestSnapshot()
	if snapErr == nil && latestSnapshot != nil {
		cycleInfo = map[string]interface{}{
			"current_cycle":   latestSnapshot.CycleNumber,
			"last_cycle_time": latestSnapshot.Timestamp,
			"share_price":     latestSnapshot.SharePrice,
			"paused":          latestSnapshot.Paused,
		}
	} else {
		cycleInfo = map[string]interface{}{
			"current_cycle":   0,
			"last_cycle_time": nil,
		}
		if snapErr != nil {
			hasErrors = true
		}
	}

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
		hasErrors = true
	}

	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":            runtime.Version(),
			"goroutines_count":   runtime.NumGoroutine(),
			"total_alloc_bytes":  memStats.TotalAlloc,
			"heap_objects_count": memStats.HeapObjects,
			"alloc_bytes":        memStats.Alloc,
			"sys_bytes":          memStats.Sys,
			"gc_cycles":          memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "dnvault-delta-neutral-vault",
			"version": "1.0.0",
		},
		"vault_status": map[string]interface{}{
			"database_healthy":  dbHealthy,
			"has_recent_errors": hasErrors,
			"paused":            ws.vault.IsPaused(),
			"cycle_info":        cycleInfo,
		},
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetVaultSummary returns the live vault state
func (ws *WebServer) handleGetVaultSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalAssets, err := ws.vault.TotalAssets(ctx)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to value the vault")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to value the vault")
		return
	}

	spotAssets, perpAssets, err := ws.vault.StrategyAssets(ctx)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to read strategy balances")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to read strategy balances")
		return
	}

	totalShares := ws.vault.TotalShares()
	sharePrice, err := utils.SharePrice(totalAssets, totalShares)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to compute share price")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to compute share price")
		return
	}

	summary := map[string]interface{}{
		"total_assets": totalAssets.String(),
		"total_shares": totalShares.String(),
		"idle_balance": ws.vault.IdleBalance().String(),
		"spot_assets":  spotAssets.String(),
		"perp_assets":  perpAssets.String(),
		"share_price":  sharePrice,
		"holders":      ws.vault.Ledger().HolderCount(),
		"paused":       ws.vault.IsPaused(),
		"timestamp":    time.Now().UTC(),
	}

	if delta, err := ws.vault.CurrentDelta(ctx); err == nil {
		summary["delta"] = delta.String()
	}
	if display, err := utils.IntToFloat64(totalAssets, ws.assetDecimals); err == nil {
		summary["total_assets_display"] = display
	}

	ws.writeJSONResponse(w, http.StatusOK, summary)
}

// handlePreviewDeposit quotes the shares a deposit would mint right now
func (ws *WebServer) handlePreviewDeposit(w http.ResponseWriter, r *http.Request) {
	assets, ok := ws.parseAmountParam(w, r, "assets")
	if !ok {
		return
	}

	shares, err := ws.vault.PreviewDeposit(r.Context(), assets)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"assets": assets.String(),
		"shares": shares.String(),
	})
}

// handlePreviewWithdraw quotes the assets a withdrawal would pay out right now
func (ws *WebServer) handlePreviewWithdraw(w http.ResponseWriter, r *http.Request) {
	shares, ok := ws.parseAmountParam(w, r, "shares")
	if !ok {
		return
	}

	assets, err := ws.vault.PreviewWithdraw(r.Context(), shares)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"shares": shares.String(),
		"assets": assets.String(),
	})
}

// handleGetShares returns one owner's share balance
func (ws *WebServer) handleGetShares(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	if owner == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Owner cannot be empty")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"owner":  owner,
		"shares": ws.vault.SharesOf(owner).String(),
	})
}

// handleGetOperations returns recent deposit/withdraw receipts
func (ws *WebServer) handleGetOperations(w http.ResponseWriter, r *http.Request) {
	limit := ws.parseLimitParam(r)

	receipts, err := state.GetRecentOperations(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent operations")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve operations")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"operations": receipts,
		"count":      len(receipts),
		"limit":      limit,
	})
}

// handleGetRebalances returns recent rebalance reports
func (ws *WebServer) handleGetRebalances(w http.ResponseWriter, r *http.Request) {
	limit := ws.parseLimitParam(r)

	reports, err := state.GetRecentRebalances(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent rebalances")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve rebalances")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"rebalances": reports,
		"count":      len(reports),
		"limit":      limit,
	})
}

// parseAmountParam reads a positive integer amount from the query string.
func (ws *WebServer) parseAmountParam(w http.ResponseWriter, r *http.Request, name string) (sdkmath.Int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Missing query parameter: "+name)
		return sdkmath.ZeroInt(), false
	}

	amount, ok := sdkmath.NewIntFromString(raw)
	if !ok || !amount.IsPositive() {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Parameter "+name+" must be a positive integer")
		return sdkmath.ZeroInt(), false
	}

	return amount, true
}

// parseLimitParam reads an optional limit from the query string, capped at 100.
func (ws *WebServer) parseLimitParam(r *http.Request) int {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}
	return limit
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
