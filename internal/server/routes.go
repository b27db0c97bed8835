package server

import "net/http"

// registerRoutes sets up all endpoints and wraps them in the middleware chain.
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/report.csv", s.handleReportCSV)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.proofs != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(s.proofs.HTTPFileSystem())))
	}
	if s.staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
	}

	return chain(mux,
		withRequestID,
		s.accessLog,
		s.recoverPanics,
		s.corsMiddleware,
		s.limitBody,
	)
}
