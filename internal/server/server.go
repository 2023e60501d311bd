// Package server provides HTTP server initialization and lifecycle management
// for the Lineage API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/scrypster/lineage/internal/archive"
	"github.com/scrypster/lineage/internal/config"
	"github.com/scrypster/lineage/internal/connections"
	"github.com/scrypster/lineage/web/handlers"
)

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server over the given tree manager.
// It returns the actual address being listened on (useful for testing with
// port 0) and the WebSocketHub carrying mutation event broadcasts. The server
// shuts down gracefully when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, manager *connections.Manager, archiver *archive.Archiver) (string, *handlers.WebSocketHub) {
	mux := http.NewServeMux()

	wsHub := handlers.NewWebSocketHub()
	go wsHub.Run()

	rateLimiter := handlers.NewRateLimiter(cfg.Security.RateLimit, cfg.Security.RateBurst)

	api := handlers.NewAPIHandlers(manager, cfg)
	api.SetHub(wsHub)
	if archiver != nil {
		api.SetArchiver(archiver)
	}

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/people", api.ListPeople)
	apiMux.HandleFunc("POST /api/people", api.CreatePerson)
	apiMux.HandleFunc("GET /api/people/{id}", api.GetPerson)
	apiMux.HandleFunc("PUT /api/people/{id}", api.UpdatePerson)
	apiMux.HandleFunc("PATCH /api/people/{id}", api.UpdatePerson)
	apiMux.HandleFunc("DELETE /api/people/{id}", api.DeletePerson)

	apiMux.HandleFunc("GET /api/relationships", api.ListRelationships)
	apiMux.HandleFunc("POST /api/relationships", api.CreateRelationship)
	apiMux.HandleFunc("GET /api/relationships/{id}", api.GetRelationship)
	apiMux.HandleFunc("PUT /api/relationships/{id}", api.UpdateRelationship)
	apiMux.HandleFunc("PATCH /api/relationships/{id}", api.UpdateRelationship)
	apiMux.HandleFunc("DELETE /api/relationships/{id}", api.DeleteRelationship)
	apiMux.HandleFunc("GET /api/relationship-types", api.ListRelationshipTypes)

	// Traversals
	apiMux.HandleFunc("GET /api/people/{id}/ancestors", api.Ancestors)
	apiMux.HandleFunc("GET /api/people/{id}/descendants", api.Descendants)
	apiMux.HandleFunc("GET /api/people/{id}/siblings", api.Siblings)
	apiMux.HandleFunc("GET /api/people/{id}/extended-family", api.ExtendedFamily)
	apiMux.HandleFunc("GET /api/people/{id}/related", api.Related)
	apiMux.HandleFunc("GET /api/people/{id}/branch", api.Branch)
	apiMux.HandleFunc("GET /api/people/{id}/tree", api.PartialTree)

	// Consistency and curation
	apiMux.HandleFunc("GET /api/people/{id}/consistency", api.CheckConsistency)
	apiMux.HandleFunc("GET /api/duplicates", api.FindDuplicates)
	apiMux.HandleFunc("POST /api/merge", api.Merge)
	apiMux.HandleFunc("GET /api/audit", api.ListAudit)

	apiMux.HandleFunc("GET /api/view", api.View)
	apiMux.HandleFunc("GET /api/stats", api.Stats)

	// Snapshot archives of the default tree
	apiMux.HandleFunc("GET /api/archives", api.ListArchives)
	apiMux.HandleFunc("POST /api/archives", api.CreateArchive)

	// Health endpoint requires no auth; monitoring probes it directly
	mux.HandleFunc("GET /api/health", api.Health)

	// Wrap API routes with auth middleware
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint (no auth required - origin validation handles security)
	mux.Handle("/ws", wsHub)

	// Wrap entire server with rate limiting, then security headers
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	// Create server with security timeouts
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub
}
