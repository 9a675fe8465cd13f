package server

import (
	"errors"
	"net/http"

	"github.com/esime/ielec/auth"
	"github.com/esime/ielec/clients"
)

type clientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type taskRequest struct {
	ClientID    string `json:"clientId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleClientsList(w http.ResponseWriter, r *http.Request) {
	list, err := s.clients.ListClients(r.Context(), auth.GetUser(r).ID)
	if err != nil {
		s.internalError(w, r, "listing clients", err)
		return
	}
	if list == nil {
		list = []*clients.Client{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleClientsCreate(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	c, err := s.clients.CreateClient(r.Context(), auth.GetUser(r).ID, req.Name, req.Email, req.Phone)
	if errors.Is(err, clients.ErrMissingFields) {
		writeError(w, http.StatusBadRequest, "Nombre y correo son obligatorios")
		return
	}
	if err != nil {
		s.internalError(w, r, "creating client", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleClientsDelete(w http.ResponseWriter, r *http.Request) {
	err := s.clients.DeleteClient(r.Context(), auth.GetUser(r).ID, r.PathValue("id"))
	if errors.Is(err, clients.ErrClientNotFound) {
		writeError(w, http.StatusNotFound, "Cliente no encontrado")
		return
	}
	if err != nil {
		s.internalError(w, r, "deleting client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTasksList(w http.ResponseWriter, r *http.Request) {
	list, err := s.clients.ListTasks(r.Context(), auth.GetUser(r).ID)
	if err != nil {
		s.internalError(w, r, "listing tasks", err)
		return
	}
	if list == nil {
		list = []*clients.Task{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleTasksCreate(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	t, err := s.clients.CreateTask(r.Context(), auth.GetUser(r).ID, req.ClientID, req.Title, req.Description)
	switch {
	case errors.Is(err, clients.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Cliente y título son obligatorios")
	case errors.Is(err, clients.ErrClientNotFound):
		writeError(w, http.StatusNotFound, "Cliente no encontrado")
	case err != nil:
		s.internalError(w, r, "creating task", err)
	default:
		writeJSON(w, http.StatusCreated, t)
	}
}
