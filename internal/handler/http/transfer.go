package http

import (
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/transfer"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TransferHandler interface {
	Request(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type transferHandlerImpl struct {
	transferService transfer.TransferService
}

func NewTransferHandler(transferService transfer.TransferService) TransferHandler {
	return &transferHandlerImpl{transferService: transferService}
}

// Request implements TransferHandler.
func (h *transferHandlerImpl) Request(w http.ResponseWriter, r *http.Request) {
	var req transfer.CreateTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.transferService.Request(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Transfer requested", result)
}

// List implements TransferHandler.
func (h *transferHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := transfer.TransferFilter{
		EmployeeID: optional(q, "employee_id"),
		BranchID:   optional(q, "branch_id"),
		Status:     optional(q, "status"),
	}
	filter.Page, filter.Limit = pageParams(q)

	result, err := h.transferService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Get implements TransferHandler.
func (h *transferHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.transferService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Approve implements TransferHandler.
func (h *transferHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.transferService.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Transfer approved", result)
}

// Reject implements TransferHandler.
func (h *transferHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req transfer.RejectTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.transferService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Transfer rejected", result)
}
