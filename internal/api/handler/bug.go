package handler

import (
	"context"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"net/http"
)

type BugService interface {
	Search(ctx context.Context, substring string) ([]*domain.Bug, error)
	List(ctx context.Context) ([]*domain.Bug, error)
	Create(ctx context.Context, createdBy int64, input domain.NewBug) (*domain.Bug, error)
}

type BugHandler struct {
	bugs   BugService
	logger *logger.Logger
}

func NewBugHandler(bugs BugService, logger *logger.Logger) *BugHandler {
	return &BugHandler{
		bugs:   bugs,
		logger: logger.Component("handler/bug"),
	}
}

type SearchRequest struct {
	SearchResult string `json:"searchResult"`
}

func (h *BugHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	bugs, err := h.bugs.Search(r.Context(), req.SearchResult)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newBugList(bugs), h.logger)
}

func (h *BugHandler) List(w http.ResponseWriter, r *http.Request) {
	bugs, err := h.bugs.List(r.Context())
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newBugList(bugs), h.logger)
}

type AddBugRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	Importance   string `json:"importance"`
	CreationDate string `json:"creationDate"`
	OpenDate     string `json:"openDate"`
	ProjectID    int64  `json:"projectId"`
	AssignedID   *int64 `json:"assignedId"`
}

type addBugResponse struct {
	Message string `json:"message"`
	BugID   int64  `json:"bugId"`
}

func (h *BugHandler) Add(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthenticated, h.logger)
		return
	}

	var req AddBugRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	bug, err := h.bugs.Create(r.Context(), session.UserID, domain.NewBug{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		Importance:   req.Importance,
		CreationDate: req.CreationDate,
		OpenDate:     req.OpenDate,
		ProjectID:    req.ProjectID,
		AssignedID:   req.AssignedID,
	})
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, addBugResponse{
		Message: "Bug data received successfully",
		BugID:   bug.BugID,
	}, h.logger)
}
