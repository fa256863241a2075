package handler

import (
	"encoding/json"
	"net/http"

	"gigstage/internal/gigs/service"
	httputil "gigstage/pkg/http"
	"gigstage/pkg/logger"
	"gigstage/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type GigHandler struct {
	service *service.GigService
	log     *logger.Logger
}

func NewGigHandler(svc *service.GigService, log *logger.Logger) *GigHandler {
	return &GigHandler{
		service: svc,
		log:     log,
	}
}

func (h *GigHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *GigHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "error", err)
	}
}

func (h *GigHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var gig model.Gig
	if err := json.NewDecoder(r.Body).Decode(&gig); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	created, err := h.service.Create(r.Context(), callerID, &gig)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *GigHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gig, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", gig)
}

func (h *GigHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var update model.GigUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	gig, err := h.service.Update(r.Context(), ps.ByName("id"), callerID, &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", gig)
}

func (h *GigHandler) ExpressInterest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "ExpressInterest", err)
		return
	}

	if err := h.service.ExpressInterest(r.Context(), ps.ByName("id"), callerID); err != nil {
		h.writeError(w, "ExpressInterest", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *GigHandler) RemoveInterest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "RemoveInterest", err)
		return
	}

	// Body is optional; a withdrawal reason may accompany the request.
	var body struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if err := h.service.RemoveInterest(r.Context(), ps.ByName("id"), callerID, body.Reason); err != nil {
		h.writeError(w, "RemoveInterest", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *GigHandler) ApplyToRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "ApplyToRole", err)
		return
	}

	if err := h.service.ApplyToRole(r.Context(), ps.ByName("id"), ps.ByName("role"), callerID); err != nil {
		h.writeError(w, "ApplyToRole", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *GigHandler) BookRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "BookRole", err)
		return
	}

	// Body is optional; an agreed price may accompany the booking.
	var body struct {
		Price float64 `json:"price"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	gig, err := h.service.BookRole(r.Context(), ps.ByName("id"), ps.ByName("role"), callerID, body.Price)
	if err != nil {
		h.writeError(w, "BookRole", err)
		return
	}
	h.writeSuccess(w, "BookRole", gig)
}

func (h *GigHandler) BookRegular(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "BookRegular", err)
		return
	}

	gig, err := h.service.BookRegularGig(r.Context(), ps.ByName("id"), callerID)
	if err != nil {
		h.writeError(w, "BookRegular", err)
		return
	}
	h.writeSuccess(w, "BookRegular", gig)
}

func (h *GigHandler) Shortlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "Shortlist", err)
		return
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "user_id is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Shortlist", "error", writeErr)
		}
		return
	}

	if err := h.service.ShortlistApplicant(r.Context(), ps.ByName("id"), callerID, body.UserID); err != nil {
		h.writeError(w, "Shortlist", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *GigHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	var body struct {
		CancelerType string `json:"canceler_type"`
		Reason       string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Cancel", "error", writeErr)
		}
		return
	}

	gig, err := h.service.Cancel(r.Context(), ps.ByName("id"), callerID, body.CancelerType, body.Reason)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	h.writeSuccess(w, "Cancel", gig)
}

func (h *GigHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "Complete", err)
		return
	}

	gig, err := h.service.Complete(r.Context(), ps.ByName("id"), callerID)
	if err != nil {
		h.writeError(w, "Complete", err)
		return
	}
	h.writeSuccess(w, "Complete", gig)
}

func (h *GigHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "ConfirmPayment", err)
		return
	}

	var req service.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ConfirmPayment", "error", writeErr)
		}
		return
	}

	gig, err := h.service.ConfirmPayment(r.Context(), ps.ByName("id"), callerID, &req)
	if err != nil {
		h.writeError(w, "ConfirmPayment", err)
		return
	}
	h.writeSuccess(w, "ConfirmPayment", gig)
}

func (h *GigHandler) FinalizePayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "FinalizePayment", err)
		return
	}

	// Body is optional; a note may accompany the finalization.
	var body struct {
		Note string `json:"note"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	gig, err := h.service.FinalizePayment(r.Context(), ps.ByName("id"), callerID, body.Note)
	if err != nil {
		h.writeError(w, "FinalizePayment", err)
		return
	}
	h.writeSuccess(w, "FinalizePayment", gig)
}

func (h *GigHandler) CompareEvidence(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID, err := httputil.CallerID(r)
	if err != nil {
		h.writeError(w, "CompareEvidence", err)
		return
	}

	result, err := h.service.CompareEvidence(r.Context(), ps.ByName("id"), callerID)
	if err != nil {
		h.writeError(w, "CompareEvidence", err)
		return
	}
	h.writeSuccess(w, "CompareEvidence", result)
}

func (h *GigHandler) History(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "History", err)
		return
	}

	entries, total, err := h.service.History(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "History", err)
		return
	}

	if err := httputil.WritePaginated(w, entries, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "History", "error", err)
	}
}

func (h *GigHandler) UserGigs(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "UserGigs", err)
		return
	}

	gigs, err := h.service.GetUserGigs(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "UserGigs", err)
		return
	}
	h.writeSuccess(w, "UserGigs", gigs)
}

func (h *GigHandler) UserApplications(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "UserApplications", err)
		return
	}

	apps, err := h.service.GetUserApplications(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "UserApplications", err)
		return
	}
	h.writeSuccess(w, "UserApplications", apps)
}

func (h *GigHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/gigs", h.Create)
	router.GET("/api/v1/gigs/:id", h.GetByID)
	router.PATCH("/api/v1/gigs/:id", h.Update)

	router.POST("/api/v1/gigs/:id/interest", h.ExpressInterest)
	router.POST("/api/v1/gigs/:id/interest/remove", h.RemoveInterest)
	router.POST("/api/v1/gigs/:id/roles/:role/apply", h.ApplyToRole)
	router.POST("/api/v1/gigs/:id/roles/:role/book", h.BookRole)
	router.POST("/api/v1/gigs/:id/book", h.BookRegular)
	router.POST("/api/v1/gigs/:id/shortlist", h.Shortlist)

	router.POST("/api/v1/gigs/:id/cancel", h.Cancel)
	router.POST("/api/v1/gigs/:id/complete", h.Complete)

	router.POST("/api/v1/gigs/:id/payment/confirm", h.ConfirmPayment)
	router.POST("/api/v1/gigs/:id/payment/finalize", h.FinalizePayment)
	router.GET("/api/v1/gigs/:id/payment/compare", h.CompareEvidence)

	router.GET("/api/v1/gigs/:id/history", h.History)
	router.GET("/api/v1/users/:id/gigs", h.UserGigs)
	router.GET("/api/v1/users/:id/applications", h.UserApplications)
}
