package server

import (
	"bytes"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/esime/ielec/auth"
	"github.com/esime/ielec/calc"
	"github.com/esime/ielec/evaluate"
	"github.com/esime/ielec/history"
	"github.com/esime/ielec/metrics"
	"github.com/esime/ielec/report"
)

const degenerateMessage = "degenerate input: result is not finite"

// handleCalculate handles POST /api/calc/{calculator}. The result is saved
// to the user's history unless ?save=false. ?format=text answers with the
// copy-to-clipboard summary instead of JSON.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	c := history.Calculator(r.PathValue("calculator"))
	if !c.Valid() {
		writeError(w, http.StatusNotFound, "Calculadora desconocida")
		return
	}

	data, err := s.readBody(w, r)
	if err != nil {
		s.bodyError(w, err)
		return
	}
	ev, err := evaluate.Run(c, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.ObserveCalculation(string(c), ev.Finite)

	now := time.Now().UTC()
	if ev.Finite && r.URL.Query().Get("save") != "false" {
		rec, err := history.NewRecord(user.ID, c, r.URL.Query().Get("label"), ev.Input, ev.Result)
		if err != nil {
			s.internalError(w, r, "encoding history record", err)
			return
		}
		if err := s.history.Save(r.Context(), rec); err != nil {
			s.internalError(w, r, "saving history record", err)
			return
		}
		now = rec.CreatedAt
	}

	if r.URL.Query().Get("format") == "text" {
		doc, err := ev.Document(now, s.locale)
		if err != nil {
			s.internalError(w, r, "building summary", err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(report.PlainText(doc, s.locale)))
		return
	}

	if !ev.Finite {
		writeError(w, http.StatusUnprocessableEntity, degenerateMessage)
		return
	}
	writeJSON(w, http.StatusOK, ev.Result)
}

type interpolateRequest struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
	X  float64 `json:"x"`
}

// handleInterpolate handles POST /api/interpolate.
func (s *Server) handleInterpolate(w http.ResponseWriter, r *http.Request) {
	var req interpolateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	y := calc.Interpolate(req.X1, req.Y1, req.X2, req.Y2, req.X)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		writeError(w, http.StatusUnprocessableEntity, degenerateMessage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"y": y})
}

// handleReport handles POST /api/report/{file}, where file is the
// calculator name with a pdf, html, md or txt extension. The body is the
// calculator input. PDFs are archived when an archive is configured.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	name, ext, ok := strings.Cut(r.PathValue("file"), ".")
	c := history.Calculator(name)
	if !ok || !c.Valid() {
		writeError(w, http.StatusNotFound, "Reporte desconocido")
		return
	}

	data, err := s.readBody(w, r)
	if err != nil {
		s.bodyError(w, err)
		return
	}
	ev, err := evaluate.Run(c, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now().UTC()
	doc, err := ev.Document(now, s.locale)
	if err != nil {
		s.internalError(w, r, "building report", err)
		return
	}
	s.writeDocument(w, r, user, doc, ext, string(c)+"-"+now.Format("20060102-150405"))
}

// writeDocument renders doc in the format named by ext.
func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, user *auth.User, doc *report.Document, ext, basename string) {
	calcName := string(doc.Calculator)
	switch ext {
	case "pdf":
		var buf bytes.Buffer
		err := report.PDF(&buf, doc, report.Options{
			Organization: s.config.Report.Organization,
			Logo:         s.logo,
			Locale:       s.locale,
			Plot:         true,
		})
		if err != nil {
			s.internalError(w, r, "rendering pdf", err)
			return
		}
		pdf := buf.Bytes()
		if location, ok := s.archivePDF(r, user, doc, pdf); ok {
			w.Header().Set("X-Archive-Location", location)
		}
		attachment(w, "application/pdf", basename+".pdf")
		w.Write(pdf)
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.HTML(w, doc, s.locale); err != nil {
			s.logger.Error("rendering html", zap.Error(err))
		}
	case "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(report.Markdown(doc, s.locale)))
	case "txt":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(report.PlainText(doc, s.locale)))
	default:
		writeError(w, http.StatusNotFound, "Formato de reporte desconocido")
		return
	}
	metrics.ReportsTotal.WithLabelValues(calcName, ext).Inc()
}

// archivePDF stores a copy of the PDF. Archive failures are logged and do
// not fail the download.
func (s *Server) archivePDF(r *http.Request, user *auth.User, doc *report.Document, pdf []byte) (string, bool) {
	if s.archive == nil {
		return "", false
	}
	key := archiveKey(user, doc)
	location, err := s.archive.Put(r.Context(), key, "application/pdf", pdf)
	if err != nil {
		s.logger.Warn("archiving report failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return location, true
}
