package diagnosis

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ReportRenderer turns a concluded result into a downloadable document.
type ReportRenderer interface {
	Render(sessionID string, result Result) ([]byte, error)
}

type Handler struct {
	svc      Service
	reporter ReportRenderer
}

// NewHandler wires the public diagnosis endpoints. reporter may be nil, in
// which case the report route responds 404.
func NewHandler(svc Service, reporter ReportRenderer) *Handler {
	return &Handler{svc: svc, reporter: reporter}
}

type answerRequest struct {
	SymptomCode string `json:"symptom_code"`
	Answer      *bool  `json:"answer"`
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	step, err := h.svc.Start(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(step)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.SymptomCode == "" || req.Answer == nil {
		http.Error(w, "symptom_code and answer are required", http.StatusBadRequest)
		return
	}

	step, err := h.svc.Answer(r.Context(), sessionID, req.SymptomCode, *req.Answer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(step)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Inspect(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(view)
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	if h.reporter == nil {
		http.NotFound(w, r)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	result, err := h.svc.Result(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	pdf, err := h.reporter.Render(sessionID, *result)
	if err != nil {
		http.Error(w, "Report generation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="diagnosis_%s.pdf"`, sessionID))
	w.Write(pdf)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/diagnosis/start", h.StartSession)
	r.Post("/diagnosis/{sessionID}/answer", h.SubmitAnswer)
	r.Get("/diagnosis/{sessionID}", h.GetSession)
	r.Get("/diagnosis/{sessionID}/report", h.DownloadReport)
}
