package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/usecase"
)

// Handler serves the engine's use cases under /api.
type Handler struct {
	engine *usecase.Engine
	logger *slog.Logger

	// write guards mutating routes; identity when auth is off.
	write func(http.Handler) http.Handler
}

// NewHandler creates the API handler. write wraps every mutating route and
// may be nil.
func NewHandler(engine *usecase.Engine, logger *slog.Logger, write func(http.Handler) http.Handler) *Handler {
	if write == nil {
		write = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{engine: engine, logger: logger, write: write}
}

// RegisterRoutes attaches the API routes to r, which is expected to be
// rooted at /api.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Handle("/clients", h.write(http.HandlerFunc(h.onboardClient))).Methods(http.MethodPost)
	r.Handle("/clients/{id}", h.write(http.HandlerFunc(h.updateClient))).Methods(http.MethodPut)

	r.HandleFunc("/loans/suggest", h.suggestLoan).Methods(http.MethodPost)
	r.Handle("/loans", h.write(http.HandlerFunc(h.createLoan))).Methods(http.MethodPost)
	r.Handle("/loans/{id}", h.write(http.HandlerFunc(h.updateLoan))).Methods(http.MethodPut)
	r.HandleFunc("/loans/{id}/installments", h.getInstallments).Methods(http.MethodGet)
	r.Handle("/loans/{id}/mark-all-paid", h.write(http.HandlerFunc(h.markAllPaid))).Methods(http.MethodPut)
	r.Handle("/loans/{id}/evaluate-default", h.write(http.HandlerFunc(h.evaluateDefault))).Methods(http.MethodPut)
	r.HandleFunc("/loans/{id}/alerts", h.getLoanAlerts).Methods(http.MethodGet)

	r.Handle("/installments/update-overdue", h.write(http.HandlerFunc(h.refreshOverdue))).Methods(http.MethodPut)
	r.Handle("/installments/{id}/pay", h.write(http.HandlerFunc(h.markInstallmentPaid))).Methods(http.MethodPut)

	r.HandleFunc("/alerts/all", h.listAlerts).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/stats", h.dashboardStats).Methods(http.MethodGet)
}

func (h *Handler) onboardClient(w http.ResponseWriter, r *http.Request) {
	var req dto.OnboardClientRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp, err := h.engine.OnboardClient.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateClientRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.ClientID = mux.Vars(r)["id"]
	resp, err := h.engine.UpdateClient.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) suggestLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.SuggestLoanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp, err := h.engine.SuggestLoan.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp, err := h.engine.CreateLoan.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) updateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateLoanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.engine.UpdateLoan.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getInstallments(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.GetInstallments.Execute(r.Context(), dto.LoanRequest{LoanID: mux.Vars(r)["id"]})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) markInstallmentPaid(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.MarkInstallmentPaid.Execute(r.Context(), dto.InstallmentRequest{InstallmentID: mux.Vars(r)["id"]})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) markAllPaid(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.MarkAllPaid.Execute(r.Context(), dto.LoanRequest{LoanID: mux.Vars(r)["id"]})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) refreshOverdue(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.RefreshOverdue.Execute(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getLoanAlerts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.GetLoanAlerts.Execute(r.Context(), dto.LoanRequest{LoanID: mux.Vars(r)["id"]})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) evaluateDefault(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.EvaluateDefault.Execute(r.Context(), dto.LoanRequest{LoanID: mux.Vars(r)["id"]})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.ListAlerts.Execute(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.GetDashboardStats.Execute(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
