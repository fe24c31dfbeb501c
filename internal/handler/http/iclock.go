package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/adms"
)

// maxPushBody bounds one ATTLOG upload.
const maxPushBody = 4 << 20

// PushReceiver is the terminal-facing side of attendance ingestion.
type PushReceiver interface {
	Handshake(ctx context.Context, serialNumber string) (string, error)
	Poll(ctx context.Context, serialNumber string) error
	ReceiveAttLog(ctx context.Context, serialNumber string, body io.Reader) (int, error)
}

// IClockHandler speaks the plain-text push protocol of biometric terminals.
// Terminals authenticate by serial number only.
type IClockHandler interface {
	Handshake(w http.ResponseWriter, r *http.Request)
	Upload(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
}

type iclockHandlerImpl struct {
	receiver PushReceiver
}

func NewIClockHandler(receiver PushReceiver) IClockHandler {
	return &iclockHandlerImpl{receiver: receiver}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (h *iclockHandlerImpl) writeError(w http.ResponseWriter, sn string, err error) {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound):
		slog.Warn("push from unknown terminal", "serial_number", sn)
		writeText(w, http.StatusNotFound, "Unknown device")
	case errors.Is(err, device.ErrDeviceInactive):
		writeText(w, http.StatusForbidden, "Device inactive")
	default:
		slog.Error("iclock request failed", "serial_number", sn, "error", err)
		writeText(w, http.StatusInternalServerError, "ERROR")
	}
}

// Handshake handles GET /iclock/cdata.
func (h *iclockHandlerImpl) Handshake(w http.ResponseWriter, r *http.Request) {
	sn := r.URL.Query().Get("SN")
	if sn == "" {
		writeText(w, http.StatusBadRequest, "SN is required")
		return
	}

	reply, err := h.receiver.Handshake(r.Context(), sn)
	if err != nil {
		h.writeError(w, sn, err)
		return
	}
	writeText(w, http.StatusOK, reply)
}

// Upload handles POST /iclock/cdata. Tables other than ATTLOG are
// acknowledged and dropped.
func (h *iclockHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	sn := r.URL.Query().Get("SN")
	if sn == "" {
		writeText(w, http.StatusBadRequest, "SN is required")
		return
	}

	if table := r.URL.Query().Get("table"); !strings.EqualFold(table, adms.TableAttLog) {
		if err := h.receiver.Poll(r.Context(), sn); err != nil {
			h.writeError(w, sn, err)
			return
		}
		writeText(w, http.StatusOK, "OK")
		return
	}

	n, err := h.receiver.ReceiveAttLog(r.Context(), sn, http.MaxBytesReader(w, r.Body, maxPushBody))
	if err != nil {
		h.writeError(w, sn, err)
		return
	}
	writeText(w, http.StatusOK, adms.AckReply(n))
}

// GetRequest handles GET /iclock/getrequest.
func (h *iclockHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	sn := r.URL.Query().Get("SN")
	if err := h.receiver.Poll(r.Context(), sn); err != nil {
		h.writeError(w, sn, err)
		return
	}
	writeText(w, http.StatusOK, "OK")
}
