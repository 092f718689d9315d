package server

import (
	"net/http"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /tasks", s.handleTasks)
	mux.HandleFunc("GET /status", s.handleStatus)

	mux.HandleFunc("POST /features", s.handleFeatures)
	mux.HandleFunc("POST /classify", s.handleClassify)
	mux.HandleFunc("POST /classify/image", s.handleClassifyImage)

	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /history/{id}", s.handleHistoryRecord)
	mux.HandleFunc("DELETE /history", s.handleHistoryClear)

	return mux
}
