package invoice

import (
	"net/http"
)

// Server handles HTTP requests for the invoice session
type Server struct {
	service *Service
	mux     *http.ServeMux
}

// NewServer creates a new Server with default mux
func NewServer(service *Service) *Server {
	return NewServerWithMux(service, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, mux *http.ServeMux) *Server {
	s := &Server{
		service: service,
		mux:     mux,
	}
	s.registerRoutes()
	return s
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers all API routes on the server's mux
// Routes must be registered from most specific to least specific to avoid conflicts
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/timesheets", s.handleUploadTimesheet)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/manual", s.handleManualEntry)
	s.mux.HandleFunc("POST /api/reset", s.handleReset)

	s.mux.HandleFunc("PATCH /api/shifts/{id}", s.handleEditShift)
	s.mux.HandleFunc("DELETE /api/shifts/{id}", s.handleDeleteShift)
	s.mux.HandleFunc("GET /api/shifts", s.handleListShifts)
	s.mux.HandleFunc("POST /api/shifts", s.handleAddShift)
	s.mux.HandleFunc("PUT /api/rounding", s.handleSetRounding)

	s.mux.HandleFunc("GET /api/invoice/pdf", s.handleExport("pdf"))
	s.mux.HandleFunc("GET /api/invoice/xlsx", s.handleExport("xlsx"))
	s.mux.HandleFunc("GET /api/invoice", s.handleGetInvoice)
	s.mux.HandleFunc("PUT /api/invoice", s.handleUpdateInvoice)
}

// ServeHTTP sets CORS headers on every response and answers preflight requests
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}
