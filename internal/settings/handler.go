package settings

import (
	"net/http"

	"github.com/frahmantamala/attendance/internal/transport"
)

type StoreAPI interface {
	Get() Settings
	Update(p Patch) (Settings, error)
}

type Handler struct {
	*transport.BaseHandler
	Store StoreAPI
}

func NewHandler(baseHandler *transport.BaseHandler, store StoreAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Store:       store,
	}
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Store.Get())
}

// UpdateSettings applies a partial update; omitted fields keep their value.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if appErr := h.DecodeJSON(r, &patch); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	updated, err := h.Store.Update(patch)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("company settings updated", "settings", updated.String())
	h.WriteJSON(w, http.StatusOK, updated)
}
