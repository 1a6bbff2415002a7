package handler

import (
	"context"
	"encoding/json"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/ZertGraf/bugtracker/internal/service"
	"github.com/google/uuid"
	"net/http"
	"time"
)

const maxBodyBytes = 1 << 20

type UserService interface {
	Register(ctx context.Context, input domain.NewUser) (*domain.User, error)
	Login(ctx context.Context, email, password string, previous uuid.UUID) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

type UserHandler struct {
	users        UserService
	secureCookie bool
	logger       *logger.Logger
}

func NewUserHandler(users UserService, secureCookie bool, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		users:        users,
		secureCookie: secureCookie,
		logger:       logger.Component("handler/user"),
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserName string `json:"userName"`
	FName    string `json:"fName"`
	LName    string `json:"lName"`
	UserType string `json:"userType"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	_, err := h.users.Register(r.Context(), domain.NewUser{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.UserName,
		FirstName: req.FName,
		LastName:  req.LName,
		UserType:  req.UserType,
	})
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"}, h.logger)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	userResponse
	Token string `json:"token"`
}

// Login replaces the caller's current session, if any, with a new one.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	previous := uuid.Nil
	if session, ok := SessionFromContext(r.Context()); ok {
		previous = session.SessionID
	}

	res, err := h.users.Login(r.Context(), req.Email, req.Password, previous)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		userResponse: newUserResponse(res.User),
		Token:        res.Token,
	}, h.logger)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthenticated, h.logger)
		return
	}

	if err := h.users.Logout(r.Context(), session.SessionID); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out successfully"}, h.logger)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newpassword"`
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthenticated, h.logger)
		return
	}

	var req ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.users.ChangePassword(r.Context(), session.UserID, req.OldPassword, req.NewPassword); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: "Changed password successfully"}, h.logger)
}

type ChangeUserInfoRequest struct {
	NewUserName string `json:"newUserName"`
	NewFname    string `json:"newFname"`
	NewLname    string `json:"newLname"`
}

func (h *UserHandler) ChangeUserInfo(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthenticated, h.logger)
		return
	}

	var req ChangeUserInfoRequest
	if !h.decode(w, r, &req) {
		return
	}

	_, err := h.users.UpdateProfile(r.Context(), session.UserID, domain.ProfileUpdate{
		Username:  req.NewUserName,
		FirstName: req.NewFname,
		LastName:  req.NewLname,
	})
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: "Changed user info successfully"}, h.logger)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newUserList(users), h.logger)
}

func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, h.logger)
}

// decodeBody reads a JSON body into dst and answers 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, logger *logger.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid request body", "error", err)
		writeBadRequest(w, "invalid request body", logger)
		return false
	}
	return true
}
