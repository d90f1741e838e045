package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sydlexius/zonecast/internal/provider"
	"github.com/sydlexius/zonecast/internal/zone"
)

type zoneRequest struct {
	Name   string          `json:"name"`
	Config provider.Config `json:"config"`
}

func (r *Router) handleListZones(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"zones": r.zoneService.List()})
}

func (r *Router) handleGetZone(w http.ResponseWriter, req *http.Request) {
	z, err := r.zoneService.Get(req.PathValue("id"))
	if err != nil {
		if errors.Is(err, zone.ErrNotFound) {
			writeError(w, http.StatusNotFound, "zone not found")
			return
		}
		r.logger.Error("getting zone", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, z)
}

func (r *Router) handleCreateZone(w http.ResponseWriter, req *http.Request) {
	var body zoneRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	z, err := r.zoneService.Create(body.Name, body.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, z)
}

func (r *Router) handleUpdateZone(w http.ResponseWriter, req *http.Request) {
	var body zoneRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	z, err := r.zoneService.Update(req.PathValue("id"), body.Name, body.Config)
	if err != nil {
		if errors.Is(err, zone.ErrNotFound) {
			writeError(w, http.StatusNotFound, "zone not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, z)
}

func (r *Router) handleDeleteZone(w http.ResponseWriter, req *http.Request) {
	if err := r.zoneService.Delete(req.PathValue("id")); err != nil {
		if errors.Is(err, zone.ErrNotFound) {
			writeError(w, http.StatusNotFound, "zone not found")
			return
		}
		r.logger.Error("deleting zone", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
