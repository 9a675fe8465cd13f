package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/esime/ielec/auth"
	"github.com/esime/ielec/evaluate"
	"github.com/esime/ielec/history"
	"github.com/esime/ielec/report"
)

const conductorCSVName = "historial_calculos_conductores.csv"

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	f, err := history.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.history.List(r.Context(), user.ID, f)
	if err != nil {
		s.internalError(w, r, "listing history", err)
		return
	}
	if records == nil {
		records = []*history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.findRecord(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	err := s.history.Delete(r.Context(), user.ID, r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Registro no encontrado")
		return
	}
	if err != nil {
		s.internalError(w, r, "deleting history record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHistoryClear handles DELETE /api/history. With ?calculator= only
// that calculator's records go.
func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	f, err := history.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.history.Clear(r.Context(), user.ID, f.Calculator)
	if err != nil {
		s.internalError(w, r, "clearing history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// handleHistoryCSV exports the filtered history. Conductor exports use the
// flattened per-field layout; mixed exports keep inputs and results as JSON.
func (s *Server) handleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	f, err := history.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.history.List(r.Context(), user.ID, f)
	if err != nil {
		s.internalError(w, r, "listing history", err)
		return
	}

	if f.Calculator == history.Conductor {
		attachment(w, "text/csv; charset=utf-8", conductorCSVName)
		err = report.WriteConductorCSV(w, records)
	} else {
		attachment(w, "text/csv; charset=utf-8", exportName(f.Calculator, "csv"))
		err = history.WriteCSV(w, records)
	}
	if err != nil {
		s.logger.Sugar().Errorw("writing csv export", "error", err)
	}
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	f, err := history.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.history.List(r.Context(), user.ID, f)
	if err != nil {
		s.internalError(w, r, "listing history", err)
		return
	}
	attachment(w, "application/json", exportName(f.Calculator, "json"))
	if err := history.WriteJSON(w, records); err != nil {
		s.logger.Sugar().Errorw("writing json export", "error", err)
	}
}

// handleHistoryImport handles POST /api/history/import?calculator=. The
// uploaded file replaces the user's history for that calculator.
func (s *Server) handleHistoryImport(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	c := history.Calculator(r.URL.Query().Get("calculator"))
	if !c.Valid() {
		writeError(w, http.StatusBadRequest, "Indica la calculadora a importar")
		return
	}
	data, err := s.readBody(w, r)
	if err != nil {
		s.bodyError(w, err)
		return
	}
	records, err := history.ReadJSON(bytes.NewReader(data))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Archivo de historial inválido: "+err.Error())
		return
	}
	err = history.Replace(r.Context(), s.history, user.ID, c, records)
	switch {
	case errors.Is(err, history.ErrInvalidImport):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("El archivo contiene registros que no pertenecen a %s", c))
		return
	case errors.Is(err, history.ErrDuplicateID):
		writeError(w, http.StatusBadRequest, "El archivo contiene registros repetidos")
		return
	case err != nil:
		s.internalError(w, r, "importing history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(records)})
}

// handleHistoryReport renders a saved calculation as a document. The file
// extension picks the format.
func (s *Server) handleHistoryReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.findRecord(w, r)
	if !ok {
		return
	}
	result, err := evaluate.DecodeResult(rec)
	if err != nil {
		s.internalError(w, r, "decoding history record", err)
		return
	}
	doc, err := report.New(result, rec.CreatedAt, s.locale)
	if err != nil {
		s.internalError(w, r, "building report", err)
		return
	}
	basename := string(rec.Calculator) + "-" + rec.CreatedAt.Format("20060102-150405")
	s.writeDocument(w, r, auth.GetUser(r), doc, r.PathValue("format"), basename)
}

func (s *Server) findRecord(w http.ResponseWriter, r *http.Request) (*history.Record, bool) {
	user := auth.GetUser(r)
	rec, err := s.history.Get(r.Context(), user.ID, r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Registro no encontrado")
		return nil, false
	}
	if err != nil {
		s.internalError(w, r, "loading history record", err)
		return nil, false
	}
	return rec, true
}
