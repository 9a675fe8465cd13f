package server

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/esime/ielec/archive"
	"github.com/esime/ielec/auth"
	"github.com/esime/ielec/report"
)

func archiveKey(user *auth.User, doc *report.Document) string {
	return archive.Key(user.ID, string(doc.Calculator), doc.Date, uuid.NewString(), "pdf")
}

// handleArchiveList lists the user's archived reports. Users only see
// their own prefix.
func (s *Server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "Archivo de reportes deshabilitado")
		return
	}
	prefix := auth.GetUser(r).ID + "/"
	if c := r.URL.Query().Get("calculator"); c != "" {
		prefix = path.Join(prefix, c) + "/"
	}
	objects, err := s.archive.List(r.Context(), prefix)
	if err != nil {
		s.internalError(w, r, "listing archive", err)
		return
	}
	if objects == nil {
		objects = []archive.Object{}
	}
	writeJSON(w, http.StatusOK, objects)
}

func (s *Server) handleArchiveGet(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "Archivo de reportes deshabilitado")
		return
	}
	key := path.Clean(r.PathValue("key"))
	if !strings.HasPrefix(key, auth.GetUser(r).ID+"/") {
		writeError(w, http.StatusNotFound, "Reporte no encontrado")
		return
	}
	data, err := s.archive.Get(r.Context(), key)
	if errors.Is(err, archive.ErrNotFound) || errors.Is(err, archive.ErrInvalidKey) {
		writeError(w, http.StatusNotFound, "Reporte no encontrado")
		return
	}
	if err != nil {
		s.internalError(w, r, "reading archive", err)
		return
	}
	attachment(w, "application/pdf", path.Base(key))
	w.Write(data)
}
