package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"mip/internal/apperr"
	"mip/internal/auth"
	"mip/internal/logs"
	"mip/internal/middleware"
	"mip/internal/models"
	"mip/internal/repo"
	"mip/internal/validation"
)

const (
	msgCreateFailed = "An unexpected error occurred while creating history. Please try again."
	msgListFailed   = "An unexpected error occurred while retrieving histories. Please try again."
	msgGetFailed    = "An unexpected error occurred while retrieving history. Please try again."
	msgDeleteFailed = "An unexpected error occurred while deleting history. Please try again."
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler { return &Handler{store: store} }

type createRequest struct {
	GeolocationData json.RawMessage `json:"geolocationData"`
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, e *apperr.Error) {
	if e.Kind == apperr.KindInternal {
		logs.Logger.WithField("reqid", middleware.GetRequestID(r)).
			WithError(e.Err).Error(e.Message)
	}
	models.WriteError(w, e)
}

// identity достаёт пользователя, положенного гейтом. Отсутствие — ошибка сборки роутера.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request, msg string) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.fail(w, r, apperr.Internal(msg, errors.New("history handler reached without identity")))
	}
	return id, ok
}

// Create — POST /history.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	me, ok := h.identity(w, r, msgCreateFailed)
	if !ok {
		return
	}

	var req createRequest
	if err := models.ReadJSON(w, r, &req); err != nil {
		h.fail(w, r, apperr.BadRequest("Invalid request body"))
		return
	}
	if len(req.GeolocationData) == 0 || bytes.Equal(bytes.TrimSpace(req.GeolocationData), []byte("null")) {
		h.fail(w, r, apperr.BadRequest("Missing required fields: geolocationData"))
		return
	}

	geo, err := validation.Geolocation(req.GeolocationData)
	if err != nil {
		logs.Logger.WithField("reqid", middleware.GetRequestID(r)).WithError(err).Debug("history: payload rejected")
		h.fail(w, r, apperr.BadRequest("Invalid geolocationData format"))
		return
	}

	rec := &models.History{UserID: me.ID, GeolocationData: datatypes.NewJSONType(geo)}
	if err := h.store.Create(r.Context(), rec); err != nil {
		h.fail(w, r, apperr.Internal(msgCreateFailed, err))
		return
	}
	models.WriteData(w, "History saved successfully", rec)
}

// List — GET /history: только записи вызывающего.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	me, ok := h.identity(w, r, msgListFailed)
	if !ok {
		return
	}
	rows, err := h.store.ListByUser(r.Context(), me.ID)
	if err != nil {
		h.fail(w, r, apperr.Internal(msgListFailed, err))
		return
	}
	models.WriteData(w, "Histories retrieved successfully", rows)
}

// GetOne — GET /history/single/{historyId}.
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	me, ok := h.identity(w, r, msgGetFailed)
	if !ok {
		return
	}
	id, err := validation.ParseID(mux.Vars(r)["historyId"])
	if err != nil {
		h.fail(w, r, apperr.BadRequest("Invalid historyId"))
		return
	}

	rec, err := h.store.Get(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		h.fail(w, r, apperr.NotFound("History not found"))
		return
	}
	if err != nil {
		h.fail(w, r, apperr.Internal(msgGetFailed, err))
		return
	}
	if !rec.OwnedBy(me.ID) {
		h.fail(w, r, apperr.Forbidden("Access denied. This history does not belong to you."))
		return
	}
	models.WriteData(w, "History retrieved successfully", rec)
}

// Delete — DELETE /history {ids}. Удаляются только записи вызывающего,
// чужие и несуществующие id пропускаются.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	me, ok := h.identity(w, r, msgDeleteFailed)
	if !ok {
		return
	}

	var req validation.DeleteRequest
	if err := models.ReadJSON(w, r, &req); err != nil {
		h.fail(w, r, apperr.BadRequest("Invalid ids format"))
		return
	}
	if req.IDs == nil {
		h.fail(w, r, apperr.BadRequest("Missing required fields: ids"))
		return
	}
	ids, err := validation.IDs(req)
	if err != nil {
		h.fail(w, r, apperr.BadRequest("Invalid ids format"))
		return
	}

	n, err := h.store.DeleteOwned(r.Context(), me.ID, ids)
	if err != nil {
		h.fail(w, r, apperr.Internal(msgDeleteFailed, err))
		return
	}
	logs.Logger.WithFields(logrus.Fields{
		"reqid":     middleware.GetRequestID(r),
		"user_id":   me.ID,
		"requested": len(ids),
		"deleted":   n,
	}).Info("history deleted")
	models.WriteData(w, "History deleted successfully", deleteResponse{Deleted: n})
}
