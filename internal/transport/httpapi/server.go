// Package httpapi exposes the orchestration service over HTTP. It is
// the only transport; the interactive chat client is an external
// caller of this surface.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/avasile/mnemo/pkg/log"
	"github.com/avasile/mnemo/pkg/srv"
)

type Server struct {
	srv *http.Server
}

var _ srv.Service = (*Server)(nil)

func NewServer(addr string, h *Handlers) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", h.Chat)
	mux.HandleFunc("POST /import/memory", h.ImportMemory)
	mux.HandleFunc("POST /import/chat", h.ImportChat)
	mux.HandleFunc("GET /memories/search", h.SearchMemories)
	mux.HandleFunc("GET /conversations", h.ListConversations)
	mux.HandleFunc("GET /healthz", h.Health)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           logRequests(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("http server listening")

	// Request handlers inherit the process logger through BaseContext.
	s.srv.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.FromCtx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
