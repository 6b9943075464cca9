package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fjacquet/sms-ledger/internal/ingest"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
	"fjacquet/sms-ledger/internal/sink"
)

type smsRequest struct {
	SMSText  string `json:"smsText"`
	BankName string `json:"bankName"`
}

type uploadResponse struct {
	Success bool `json:"success"`
	*ingest.Summary
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type transactionsResponse struct {
	Success      bool                 `json:"success"`
	Transactions []models.Transaction `json:"transactions"`
}

func (s *Server) userID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(UserHeader)); id != "" {
		return id
	}
	return s.opts.DemoUserID
}

func (s *Server) bank(name string) models.Bank {
	if strings.TrimSpace(name) == "" {
		return s.opts.DefaultBank
	}
	return models.ParseBank(name)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "sink": s.opts.SinkName})
}

func (s *Server) handleUploadSMS(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	var req smsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	summary, err := s.importer.ImportSMS(r.Context(), s.userID(r), s.bank(req.BankName), req.SMSText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Summary: summary})
}

func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "File is too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid multipart form"})
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.WithError(err).Warn("Failed to remove multipart files")
		}
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	summary, err := s.importer.ImportPDF(r.Context(), s.userID(r), s.bank(r.FormValue("bankName")), file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Summary: summary})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.importer.Transactions(r.Context(), s.userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactionsResponse{Success: true, Transactions: txs})
}

// writeError maps err to a status: validation 400, unreadable or
// unrecognized input 422, store unavailable 503, anything else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *parsererror.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
		return
	}
	if msg, ok := parsererror.UserMessage(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: msg})
		return
	}
	if errors.Is(err, sink.ErrUnavailable) {
		s.logger.WithError(err).Warn("Transaction store unavailable",
			logging.F(logging.FieldRoute, r.URL.Path))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Service temporarily unavailable, please retry later"})
		return
	}
	s.logger.WithError(err).Error("Request failed",
		logging.F(logging.FieldRoute, r.URL.Path))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
