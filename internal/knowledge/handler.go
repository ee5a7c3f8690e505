package knowledge

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
)

var (
	diseaseCodeRe = regexp.MustCompile(`^P\d{2}$`)
	symptomCodeRe = regexp.MustCompile(`^G\d{2}$`)
)

// Handler exposes the administrative CRUD surface over the knowledge base.
// Authentication is owned by the deployment in front of it, not here.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type diseaseRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

type symptomRequest struct {
	Code     string `json:"code"`
	Question string `json:"question"`
}

type setRulesRequest struct {
	SymptomCodes []string `json:"symptom_codes"`
}

func (h *Handler) ListDiseases(w http.ResponseWriter, r *http.Request) {
	diseases, err := h.repo.ListDiseases(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	rules, err := h.repo.AllRules(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	type diseaseOut struct {
		Disease
		Symptoms []string `json:"symptoms"`
	}
	out := make([]diseaseOut, 0, len(diseases))
	for _, d := range diseases {
		set := rules[d.Code]
		if set == nil {
			set = []string{}
		}
		out = append(out, diseaseOut{Disease: d, Symptoms: set})
	}
	json.NewEncoder(w).Encode(out)
}

func (h *Handler) CreateDisease(w http.ResponseWriter, r *http.Request) {
	var req diseaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if !diseaseCodeRe.MatchString(req.Code) || req.Name == "" {
		http.Error(w, "Disease code must match P<nn> and name must be set", http.StatusBadRequest)
		return
	}
	if req.Priority == 0 {
		req.Priority = 100
	}
	d := Disease{Code: req.Code, Name: req.Name, Description: req.Description, Priority: req.Priority}
	if err := h.repo.CreateDisease(r.Context(), d); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(d)
}

func (h *Handler) UpdateDisease(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req diseaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	d := Disease{Code: code, Name: req.Name, Description: req.Description, Priority: req.Priority}
	if err := h.repo.UpdateDisease(r.Context(), d); err != nil {
		h.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(d)
}

func (h *Handler) DeleteDisease(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteDisease(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetDiseaseSymptoms(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req setRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.repo.SetDiseaseSymptoms(r.Context(), code, req.SymptomCodes); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Unknown symptom in the payload is a data error, not a lookup miss.
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	symptoms, err := h.repo.ListSymptoms(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if symptoms == nil {
		symptoms = []Symptom{}
	}
	json.NewEncoder(w).Encode(symptoms)
}

func (h *Handler) CreateSymptom(w http.ResponseWriter, r *http.Request) {
	var req symptomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if !symptomCodeRe.MatchString(req.Code) || req.Question == "" {
		http.Error(w, "Symptom code must match G<nn> and question must be set", http.StatusBadRequest)
		return
	}
	s := Symptom{Code: req.Code, Question: req.Question}
	if err := h.repo.CreateSymptom(r.Context(), s); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(s)
}

func (h *Handler) UpdateSymptom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req symptomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	s := Symptom{Code: code, Question: req.Question}
	if err := h.repo.UpdateSymptom(r.Context(), s); err != nil {
		h.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(s)
}

func (h *Handler) DeleteSymptom(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteSymptom(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/admin/diseases", h.ListDiseases)
	r.Post("/admin/diseases", h.CreateDisease)
	r.Put("/admin/diseases/{code}", h.UpdateDisease)
	r.Delete("/admin/diseases/{code}", h.DeleteDisease)
	r.Put("/admin/diseases/{code}/symptoms", h.SetDiseaseSymptoms)
	r.Get("/admin/symptoms", h.ListSymptoms)
	r.Post("/admin/symptoms", h.CreateSymptom)
	r.Put("/admin/symptoms/{code}", h.UpdateSymptom)
	r.Delete("/admin/symptoms/{code}", h.DeleteSymptom)
}
