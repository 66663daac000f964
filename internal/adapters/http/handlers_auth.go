package http

import (
	"net/http"

	"github.com/campusforge/account-security-service/internal/application"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}

	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "logout")
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "change_password")
		return
	}
	var req application.ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "change_password", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	if err := h.service.ChangePassword(r.Context(), token, req); err != nil {
		writeMappedError(r.Context(), w, "change_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "password changed")
}

func (h *Handler) sessionInfo(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "session_info")
		return
	}
	info, err := h.service.CurrentSessionInfo(r.Context(), token)
	if err != nil {
		writeMappedError(r.Context(), w, "session_info", err)
		return
	}
	if info == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no tracked session for this token")
		return
	}
	writeSuccess(w, http.StatusOK, info)
}
