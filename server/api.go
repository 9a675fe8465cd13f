package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/esime/ielec/history"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// internalError logs err and answers 500 without leaking details.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, action string, err error) {
	s.logger.Error(action, zap.Error(err), zap.String("path", r.URL.Path))
	writeError(w, http.StatusInternalServerError, "Error en el servidor")
}

// readBody reads at most the configured body size.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := r.Body
	if s.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	return data, nil
}

var errBodyTooLarge = errors.New("request body too large")

// decodeJSON reads the body into v and answers 400 (or 413) itself when it
// cannot. It reports whether the handler should continue.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	data, err := s.readBody(w, r)
	if err != nil {
		s.bodyError(w, err)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return false
	}
	return true
}

func (s *Server) bodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Solicitud demasiado grande")
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

func exportName(c history.Calculator, ext string) string {
	if c == "" {
		return "historial_calculos." + ext
	}
	return "historial_calculos_" + string(c) + "." + ext
}
