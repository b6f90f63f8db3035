package devserver

import (
	"errors"
	"net/http"

	"waystation/internal/logger"
	"waystation/internal/models"
	"waystation/internal/response"
	"waystation/internal/server"
	"waystation/internal/validation"
	"waystation/internal/websocket"
)

// Error details returned to clients.
const (
	detailRFQNotFound      = "RFQ not found"
	detailQuoteNotFound    = "Quote not found"
	detailSupplierNotFound = "Supplier not found"
	detailNothingMissing   = "No missing information found to request."
	detailNoSupplierEmail  = "Could not identify a supplier email in the text."
	detailInvalidBody      = "Invalid request body"
	detailNoUpdate         = "No update data provided"
	detailDuplicate        = "A supplier with that company name or email already exists."
	detailSaveFailed       = "An internal error occurred while saving the quote."
)

// Server is the sandbox HTTP backend.
type Server struct {
	Store *Store
	Hub   *websocket.Hub
}

func New(store *Store, hub *websocket.Hub) *Server {
	return &Server{Store: store, Hub: hub}
}

// Routes registers the API and event-stream endpoints.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/rfqs", s.listRFQs)
	mux.HandleFunc("POST /api/rfqs", s.createRFQ)
	mux.HandleFunc("GET /api/rfqs/{id}/quotes", s.listRFQQuotes)
	mux.HandleFunc("POST /api/rfqs/{id}/extract-quote-from-email", s.extractQuote)
	mux.HandleFunc("GET /api/quotes", s.listQuotes)
	mux.HandleFunc("POST /api/quotes/{id}/generate-clarification-email", s.clarify)
	mux.HandleFunc("GET /api/suppliers", s.listSuppliers)
	mux.HandleFunc("POST /api/suppliers", s.createSupplier)
	mux.HandleFunc("PUT /api/suppliers/{id}", s.updateSupplier)
	mux.HandleFunc("GET /api/certifications", s.listCertifications)
	mux.HandleFunc("GET /ws", s.Hub.Handler())
	return mux
}

// Handler returns the routes wrapped in the standard middleware stack.
// apiRateLimit caps /api/ requests per minute per client; zero disables it.
func (s *Server) Handler(apiRateLimit int) http.Handler {
	return server.Chain(s.Routes(),
		server.RequestID,
		server.LoggingMiddleware,
		server.SecurityHeaders,
		server.RateLimitMiddleware(server.NewRateLimiter(), apiRateLimit),
		server.GzipMiddleware,
	)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.WithContext(r.Context()).Error(msg, "error", err, "path", r.URL.Path)
	response.Err(w, msg, http.StatusInternalServerError)
}

func (s *Server) listRFQs(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.ListRFQs(r.Context())
	if err != nil {
		s.internalError(w, r, "failed to list RFQs", err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (s *Server) createRFQ(w http.ResponseWriter, r *http.Request) {
	var p models.RFQCreatePayload
	if err := response.DecodeBody(r, &p); err != nil {
		response.Err(w, detailInvalidBody, http.StatusBadRequest)
		return
	}
	if p.RequiredCertifications == nil {
		p.RequiredCertifications = []string{}
	}
	if ve := validation.RFQCreate(p); ve.HasErrors() {
		response.Invalid(w, ve)
		return
	}

	rfq, err := s.Store.CreateRFQ(r.Context(), p)
	if err != nil {
		s.internalError(w, r, "failed to create RFQ", err)
		return
	}
	s.Hub.BroadcastChange("rfq", "create", rfq.ID, rfq.ID)
	response.JSON(w, http.StatusCreated, rfq)
}

func (s *Server) listRFQQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.Store.ListQuotesForRFQ(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		response.Err(w, detailRFQNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "failed to list quotes", err)
		return
	}
	response.JSON(w, http.StatusOK, quotes)
}

func (s *Server) extractQuote(w http.ResponseWriter, r *http.Request) {
	sub := models.EmailSubmission{RFQID: r.PathValue("id")}
	if err := response.DecodeBody(r, &sub); err != nil {
		response.Err(w, detailInvalidBody, http.StatusBadRequest)
		return
	}
	if ve := validation.EmailSubmission(sub); ve.HasErrors() {
		response.Invalid(w, ve)
		return
	}
	if _, err := s.Store.GetRFQ(r.Context(), sub.RFQID); errors.Is(err, ErrNotFound) {
		response.Err(w, detailRFQNotFound, http.StatusNotFound)
		return
	}

	ex, err := ParseEmail(sub.RawText)
	if err != nil {
		response.Err(w, err.Error(), http.StatusBadRequest)
		return
	}
	ve := &validation.ValidationErrors{}
	if p, ok := ex.PricePerPound.Get(); ok {
		validation.ValidateFinite(ve, "price_per_pound", p)
		validation.ValidateNonNegativeFloat(ve, "price_per_pound", p)
		validation.ValidateMaxPrice(ve, "price_per_pound", p)
	}
	if n, ok := ex.MinOrderQty.Get(); ok {
		validation.ValidateNonNegativeInt(ve, "min_order_quantity", n)
	}
	if ve.HasErrors() {
		response.Err(w, ve.Error(), http.StatusBadRequest)
		return
	}

	fq, created, err := s.Store.IngestEmail(r.Context(), sub.RFQID, sub.RawText, ex)
	switch {
	case errors.Is(err, ErrNoSupplierEmail):
		response.Err(w, detailNoSupplierEmail, http.StatusBadRequest)
		return
	case errors.Is(err, ErrNotFound):
		response.Err(w, detailRFQNotFound, http.StatusNotFound)
		return
	case errors.Is(err, ErrDuplicate):
		response.Err(w, detailDuplicate, http.StatusBadRequest)
		return
	case err != nil:
		s.internalError(w, r, detailSaveFailed, err)
		return
	}

	action := "update"
	if created {
		action = "create"
	}
	s.Hub.BroadcastChange("quote", action, fq.ID, fq.RFQ.ID)
	logger.WithContext(r.Context()).Info("quote ingested", "quote_id", fq.ID, "rfq_id", fq.RFQ.ID, "created", created)
	response.JSON(w, http.StatusOK, fq.Quote)
}

func (s *Server) listQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.Store.ListQuotes(r.Context())
	if err != nil {
		s.internalError(w, r, "failed to list quotes", err)
		return
	}
	response.JSON(w, http.StatusOK, quotes)
}

func (s *Server) clarify(w http.ResponseWriter, r *http.Request) {
	fq, err := s.Store.GetQuote(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		response.Err(w, detailQuoteNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "failed to load quote", err)
		return
	}
	rfq, err := s.Store.GetRFQ(r.Context(), fq.RFQ.ID)
	if err != nil {
		s.internalError(w, r, "failed to load RFQ", err)
		return
	}

	text, ok := ClarificationEmail(fq, rfq)
	if !ok {
		response.Err(w, detailNothingMissing, http.StatusBadRequest)
		return
	}
	response.JSON(w, http.StatusOK, models.ClarificationEmail{EmailText: text})
}

func (s *Server) listSuppliers(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.ListSuppliers(r.Context())
	if err != nil {
		s.internalError(w, r, "failed to list suppliers", err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (s *Server) createSupplier(w http.ResponseWriter, r *http.Request) {
	var sp models.Supplier
	if err := response.DecodeBody(r, &sp); err != nil {
		response.Err(w, detailInvalidBody, http.StatusBadRequest)
		return
	}
	if ve := validation.Supplier(sp); ve.HasErrors() {
		response.Invalid(w, ve)
		return
	}

	created, err := s.Store.CreateSupplier(r.Context(), sp)
	if errors.Is(err, ErrDuplicate) {
		response.Err(w, detailDuplicate, http.StatusConflict)
		return
	}
	if err != nil {
		s.internalError(w, r, "failed to create supplier", err)
		return
	}
	s.Hub.BroadcastChange("supplier", "create", created.ID, "")
	response.JSON(w, http.StatusCreated, created)
}

func (s *Server) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var u SupplierUpdate
	if err := response.DecodeBody(r, &u); err != nil {
		response.Err(w, detailInvalidBody, http.StatusBadRequest)
		return
	}
	if u.Empty() {
		response.Err(w, detailNoUpdate, http.StatusBadRequest)
		return
	}

	existing, err := s.Store.GetSupplier(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		response.Err(w, detailSupplierNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "failed to load supplier", err)
		return
	}

	updated := u.Apply(existing)
	if ve := validation.Supplier(updated); ve.HasErrors() {
		response.Invalid(w, ve)
		return
	}
	if _, err := s.Store.UpdateSupplier(r.Context(), updated); errors.Is(err, ErrDuplicate) {
		response.Err(w, detailDuplicate, http.StatusConflict)
		return
	} else if err != nil {
		s.internalError(w, r, "failed to update supplier", err)
		return
	}
	s.Hub.BroadcastChange("supplier", "update", updated.ID, "")
	response.JSON(w, http.StatusOK, updated)
}

func (s *Server) listCertifications(w http.ResponseWriter, r *http.Request) {
	certs, err := s.Store.ListCertifications(r.Context())
	if err != nil {
		s.internalError(w, r, "failed to list certifications", err)
		return
	}
	response.JSON(w, http.StatusOK, certs)
}
