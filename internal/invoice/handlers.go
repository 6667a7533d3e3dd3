package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zombor/timesheet-invoicer/internal/pay"
)

// maxUploadSize allows for high-resolution phone photos
const maxUploadSize = int64(50 << 20)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeServiceError maps service errors to status codes
func writeServiceError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrShiftNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrLastShift), errors.Is(err, ErrRecognitionInFlight):
		code = http.StatusConflict
	case errors.Is(err, ErrUnsupportedType):
		code = http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidValue), errors.Is(err, ErrUnknownField):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		writeError(w, code, "Internal server error")
		return
	}
	writeError(w, code, err.Error())
}

type shiftsResponse struct {
	RoundHours bool        `json:"round_hours"`
	Shifts     []pay.Shift `json:"shifts"`
}

// contentTypeFor guesses a content type from the file extension when the
// client did not send one
func contentTypeFor(filename, sent string) string {
	if sent != "" && sent != "application/octet-stream" {
		return strings.ToLower(strings.TrimSpace(sent))
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleUploadTimesheet accepts a timesheet and starts recognition
func (s *Server) handleUploadTimesheet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 50MB. Please compress or resize your image.")
			return
		}
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, http.StatusBadRequest, "No file was selected. Please choose a file to upload.")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	contentType := contentTypeFor(header.Filename, header.Header.Get("Content-Type"))
	if err := s.service.ProcessTimesheet(header.Filename, data, contentType); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, s.service.Status())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

func (s *Server) handleManualEntry(w http.ResponseWriter, r *http.Request) {
	shifts, err := s.service.StartManualEntry()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shiftsResponse{RoundHours: s.service.RoundHours(), Shifts: shifts})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.service.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListShifts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shiftsResponse{RoundHours: s.service.RoundHours(), Shifts: s.service.Shifts()})
}

func (s *Server) handleAddShift(w http.ResponseWriter, r *http.Request) {
	shift, err := s.service.AddShift()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shift)
}

// editRequest is the body of PATCH /api/shifts/{id}. Value is a string for
// text fields and a number (or numeric string) for hours and overtime_hours.
type editRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// event turns an edit request into the matching edit event
func (req editRequest) event(id string) (Event, error) {
	switch req.Field {
	case FieldStart, FieldEnd:
		v, err := req.text()
		return TimeChanged{ShiftID: id, Field: req.Field, Value: v}, err
	case FieldDescription, FieldDate, FieldRate:
		v, err := req.text()
		return OtherChanged{ShiftID: id, Field: req.Field, Value: v}, err
	case "hours":
		v, err := req.number()
		return HoursChanged{ShiftID: id, Hours: v}, err
	case "overtime_hours":
		v, err := req.number()
		return OvertimeChanged{ShiftID: id, OvertimeHours: v}, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, req.Field)
	}
}

func (req editRequest) text() (string, error) {
	var s string
	if err := json.Unmarshal(req.Value, &s); err == nil {
		return s, nil
	}
	// rates may arrive as bare numbers
	var n json.Number
	if err := json.Unmarshal(req.Value, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("%w: %s must be a string", ErrInvalidValue, req.Field)
}

func (req editRequest) number() (float64, error) {
	var f float64
	if err := json.Unmarshal(req.Value, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(req.Value, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidValue, req.Field)
}

func (s *Server) handleEditShift(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ev, err := req.event(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	shifts, err := s.service.Apply(ev)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	for _, shift := range shifts {
		if shift.ID == id {
			writeJSON(w, http.StatusOK, shift)
			return
		}
	}
	writeServiceError(w, fmt.Errorf("%w: %s", ErrShiftNotFound, id))
}

func (s *Server) handleDeleteShift(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.Apply(ShiftRemoved{ShiftID: r.PathValue("id")}); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetRounding switches the rounding policy. Every shift is recomputed
// from its times, so manual hour and overtime edits are lost; the response
// says how many shifts were affected.
func (s *Server) handleSetRounding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoundHours *bool `json:"round_hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoundHours == nil {
		writeError(w, http.StatusBadRequest, "round_hours is required")
		return
	}

	shifts, err := s.service.Apply(RoundingPolicyChanged{RoundHours: *req.RoundHours})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		shiftsResponse
		Recalculated int `json:"recalculated"`
	}{shiftsResponse{RoundHours: *req.RoundHours, Shifts: shifts}, len(shifts)})
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Invoice())
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvoiceNumber *string `json:"invoice_number"`
		InvoiceDate   *string `json:"invoice_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.InvoiceNumber != nil && strings.TrimSpace(*req.InvoiceNumber) == "" {
		writeError(w, http.StatusBadRequest, "invoice_number cannot be empty")
		return
	}
	if req.InvoiceDate != nil {
		if err := s.service.SetInvoiceDate(*req.InvoiceDate); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.InvoiceNumber != nil {
		if err := s.service.SetInvoiceNumber(*req.InvoiceNumber); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, s.service.Invoice())
}

func (s *Server) handleExport(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := s.service.Export(format)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", doc.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
		if _, err := w.Write(doc.Data); err != nil {
			slog.Error("Error writing export", "format", format, "error", err)
		}
	}
}
