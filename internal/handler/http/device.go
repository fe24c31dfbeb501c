package http

import (
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DeviceHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type deviceHandlerImpl struct {
	deviceService device.DeviceService
}

func NewDeviceHandler(deviceService device.DeviceService) DeviceHandler {
	return &deviceHandlerImpl{deviceService: deviceService}
}

// Create implements DeviceHandler.
func (h *deviceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req device.CreateDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.deviceService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Device registered successfully", result)
}

// List implements DeviceHandler.
func (h *deviceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := device.DeviceFilter{
		BranchID: optional(q, "branch_id"),
		Status:   optional(q, "status"),
		Search:   optional(q, "search"),
	}
	filter.Page, filter.Limit = pageParams(q)

	result, err := h.deviceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Get implements DeviceHandler.
func (h *deviceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.deviceService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Update implements DeviceHandler.
func (h *deviceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req device.UpdateDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.deviceService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Device updated successfully", result)
}

// Delete implements DeviceHandler.
func (h *deviceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.deviceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Device deleted successfully", nil)
}
