package http

import (
	"net/http"

	"contable/internal/auth"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (s *Server) authResponse(u auth.User) authResponse {
	var resp authResponse
	resp.Token = s.issueToken(u)
	resp.User.ID = u.ID
	resp.User.Email = u.Email
	return resp
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}

	u, err := s.oracle.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, authStatus(err), auth.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusCreated, s.authResponse(u))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}

	u, err := s.oracle.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, authStatus(err), auth.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, s.authResponse(u))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := requestToken(r); token != "" {
		u, ok := s.userForToken(token)
		s.revokeToken(token)
		if ok {
			if err := s.oracle.Logout(r.Context(), u.ID); err != nil {
				writeError(w, authStatus(err), auth.UserMessage(err))
				return
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
