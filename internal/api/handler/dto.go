package handler

import (
	"github.com/ZertGraf/bugtracker/internal/domain"
)

type userResponse struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FName    string `json:"fName"`
	LName    string `json:"lName"`
	UserType string `json:"userType"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		UserID:   u.UserID,
		Email:    u.Email,
		Username: u.Username,
		FName:    u.FirstName,
		LName:    u.LastName,
		UserType: u.UserType,
	}
}

func newUserList(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out
}

// bugResponse keeps the column names the browser client reads.
type bugResponse struct {
	BugID         int64   `json:"bugId"`
	BugName       string  `json:"bugName"`
	ProjectID     int64   `json:"projectId"`
	CreatedID     int64   `json:"createdId"`
	AssignedID    *int64  `json:"assignedId"`
	BugDesc       string  `json:"bugDesc"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	Importance    string  `json:"importance"`
	NumOfComments int     `json:"numOfComments"`
	CreationDate  string  `json:"creationDate"`
	OpenDate      string  `json:"openDate"`
	CloseDate     *string `json:"closeDate"`
}

func newBugResponse(b *domain.Bug) bugResponse {
	resp := bugResponse{
		BugID:         b.BugID,
		BugName:       b.BugName,
		ProjectID:     b.ProjectID,
		CreatedID:     b.CreatedID,
		AssignedID:    b.AssignedID,
		BugDesc:       b.Description,
		Status:        b.Status,
		Priority:      b.Priority,
		Importance:    b.Importance,
		NumOfComments: b.NumOfComments,
		CreationDate:  b.CreationDate.Format(domain.DateLayout),
		OpenDate:      b.OpenDate.Format(domain.DateLayout),
	}
	if b.CloseDate != nil {
		closed := b.CloseDate.Format(domain.DateLayout)
		resp.CloseDate = &closed
	}
	return resp
}

func newBugList(bugs []*domain.Bug) []bugResponse {
	out := make([]bugResponse, 0, len(bugs))
	for _, b := range bugs {
		out = append(out, newBugResponse(b))
	}
	return out
}

type messageResponse struct {
	Message string `json:"message"`
}

type successResponse struct {
	Success string `json:"success"`
}
