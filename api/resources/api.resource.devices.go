// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"encoding/json"
	goerrors "errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/errors"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/registry"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// DeviceHandlers encapsulates the device-related HTTP handlers
type DeviceHandlers struct {
	registry *registry.Registry
}

// CreateDeviceRequest is the payload for registering a new device
type CreateDeviceRequest struct {
	DeviceID string              `json:"device_id"`
	Metrics  []models.Metric     `json:"metrics"`
	Config   models.DeviceConfig `json:"config"`
}

// @Summary List devices
// @Description List all devices with their current values, alerts and history
// @Tags devices
// @Produce json
// @Param type query string false "Filter by device type"
// @Param status query string false "Filter by device status"
// @Success 200 {array} models.DeviceSummary
// @Router /devices [get]
func (h *DeviceHandlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.DeviceFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, h.registry.List(r.Context(), filters))
}

// @Summary Create a new device
// @Description Register and start a new simulated device
// @Tags devices
// @Accept json
// @Produce json
// @Param device body CreateDeviceRequest true "Device details"
// @Success 201 {object} models.DeviceSummary
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /devices [post]
func (h *DeviceHandlers) CreateDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req CreateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	policy := models.AlertPolicy{Alerts: req.Config.Alerts}
	device, err := h.registry.Create(r.Context(), req.DeviceID, req.Metrics, policy)
	if err != nil {
		// Weak durability: a failed persistence write does not undo the
		// in-memory creation, so report success with a warning.
		if errors.IsPersistence(err) && device != nil {
			nuts.L.Warnf("[DeviceHandler] device %s created but not persisted: %v", device.ID, err)
			respondWithJSON(w, http.StatusCreated, device)
			return
		}
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, device)
}

// @Summary Get a device by ID
// @Description Get the current snapshot of a specific device
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.DeviceSummary
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [get]
func (h *DeviceHandlers) GetDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	device, err := h.registry.Get(r.Context(), vars["id"])
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Delete a device
// @Description Stop a device's task and remove it from the registry
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [delete]
func (h *DeviceHandlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	if err := h.registry.Delete(r.Context(), vars["id"]); err != nil {
		if errors.IsPersistence(err) {
			nuts.L.Warnf("[DeviceHandler] device %s deleted but snapshot not persisted: %v", vars["id"], err)
			respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// @Summary Update device alert configuration
// @Description Replace a device's alert thresholds; applied on its next cycle
// @Tags devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param config body models.DeviceConfig true "Alert thresholds"
// @Success 200 {object} models.DeviceSummary
// @Failure 403 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/config [put]
func (h *DeviceHandlers) UpdateDeviceConfig(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	var cfg models.DeviceConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	err := h.registry.Reconfigure(r.Context(), vars["id"], models.AlertPolicy{Alerts: cfg.Alerts})
	if err != nil && !errors.IsPersistence(err) {
		respondWithAPIError(w, err, requestID)
		return
	}
	if err != nil {
		nuts.L.Warnf("[DeviceHandler] device %s reconfigured but snapshot not persisted: %v", vars["id"], err)
	}

	device, err := h.registry.Get(r.Context(), vars["id"])
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Get device history
// @Description Get the retained readings of a device as index-aligned series
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.HistorySnapshot
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/history [get]
func (h *DeviceHandlers) GetDeviceHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)

	device, err := h.registry.Get(r.Context(), vars["id"])
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, device.History)
}

// respondWithAPIError maps engine errors to HTTP responses, wrapping
// anything unexpected as an internal error.
func respondWithAPIError(w http.ResponseWriter, err error, requestID string) {
	var apiErr *errors.APIError
	if goerrors.As(err, &apiErr) {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("unexpected error", err).WithRequestID(requestID))
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
