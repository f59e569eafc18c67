// Package configd exposes calibration and profile management over REST.
package configd

import (
	"image/png"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goboard/internal/app"
	"goboard/internal/errors"
	"goboard/internal/httpresponse"
	"goboard/internal/utils"
)

type ConfigHandler struct {
	log *zap.SugaredLogger
	app *app.App
}

func NewConfigHandler(log *zap.SugaredLogger, a *app.App) *ConfigHandler {
	return &ConfigHandler{log: log, app: a}
}

// HandleGetConfig returns the active configuration.
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.app.Config()
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, cfg)
}

// HandleSetBoard replaces the board geometry. Fails with 409 while any
// camera stream is attached.
func (h *ConfigHandler) HandleSetBoard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := utils.DecodeJSONRequest(r, &body); err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorBody{Error: err.Error()})
		return
	}

	cfg := h.app.Config().Board
	cfg.Width = body.Width
	cfg.Height = body.Height
	if err := h.app.SetBoardConfig(cfg); err != nil {
		h.log.Errorw("board config rejected", "error", err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, cfg)
}

// HandleSetDisplay replaces the display calibration.
func (h *ConfigHandler) HandleSetDisplay(w http.ResponseWriter, r *http.Request) {
	cfg := h.app.Config().Display
	if err := utils.DecodeJSONRequest(r, &cfg); err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorBody{Error: err.Error()})
		return
	}
	if err := h.app.SetDisplayConfig(cfg); err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, cfg)
}

// HandleSetCamera replaces the capture settings and control points.
func (h *ConfigHandler) HandleSetCamera(w http.ResponseWriter, r *http.Request) {
	cfg := h.app.Config().Camera
	if err := utils.DecodeJSONRequest(r, &cfg); err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, httpresponse.ErrorBody{Error: err.Error()})
		return
	}
	if err := h.app.SetCameraConfig(cfg); err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, cfg)
}

// HandleCaptureReference stores the latest board frame as the classifier
// reference image.
func (h *ConfigHandler) HandleCaptureReference(w http.ResponseWriter, r *http.Request) {
	if err := h.app.CaptureReference(); err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "reference captured")
}

// HandleGetReference serves the stored reference image as PNG.
func (h *ConfigHandler) HandleGetReference(w http.ResponseWriter, r *http.Request) {
	ref := h.app.Config().Camera.Reference
	if ref == nil {
		httpresponse.WriteError(w, errors.ErrNoReference)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, ref); err != nil {
		h.log.Errorw("failed to encode reference image", "error", err)
	}
}

// HandleClearReference drops the reference image.
func (h *ConfigHandler) HandleClearReference(w http.ResponseWriter, r *http.Request) {
	if err := h.app.ClearReference(); err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "reference cleared")
}

// HandleListProfiles returns the names of the stored profiles.
func (h *ConfigHandler) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	names, err := h.app.ListProfiles()
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, names)
}

// HandleSaveProfile stores the active configuration under the given name.
func (h *ConfigHandler) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.app.SaveProfile(name); err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "profile saved")
}

// HandleLoadProfile replaces the active configuration from a stored profile.
// Fails with 409 while any camera stream is attached.
func (h *ConfigHandler) HandleLoadProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.app.LoadProfile(name); err != nil {
		h.log.Errorw("profile load rejected", "profile", name, "error", err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, h.app.Config())
}

// HandleDeleteProfile removes a stored profile.
func (h *ConfigHandler) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.app.DeleteProfile(name); err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "profile deleted")
}
