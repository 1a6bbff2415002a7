package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/ZertGraf/bugtracker/internal/repository"
	. "github.com/go-ozzo/ozzo-validation"
	"time"
)

type BugService struct {
	repo   repository.BugRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewBugService(repo repository.BugRepository, logger *logger.Logger) *BugService {
	return &BugService{
		repo:   repo,
		logger: logger.Component("service/bug"),
		now:    time.Now,
	}
}

// Search returns bugs whose name contains substring, ignoring case.
func (s *BugService) Search(ctx context.Context, substring string) ([]*domain.Bug, error) {
	bugs, err := s.repo.SearchByName(ctx, substring)
	if err != nil {
		return nil, fmt.Errorf("search bugs: %w", err)
	}

	s.logger.Debug("bugs searched",
		"query", substring,
		"count", len(bugs),
	)

	return bugs, nil
}

func (s *BugService) List(ctx context.Context) ([]*domain.Bug, error) {
	bugs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bugs: %w", err)
	}
	return bugs, nil
}

// Create files a new bug on behalf of createdBy. New bugs have no comments
// and no close date; status falls back to "New", creation date to today and
// open date to the creation date.
func (s *BugService) Create(ctx context.Context, createdBy int64, input domain.NewBug) (*domain.Bug, error) {
	if err := validateNewBug(&input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	creationDate := today(s.now())
	if input.CreationDate != "" {
		creationDate, _ = domain.ParseDate(input.CreationDate)
	}
	openDate := creationDate
	if input.OpenDate != "" {
		openDate, _ = domain.ParseDate(input.OpenDate)
	}
	if openDate.Before(creationDate) {
		return nil, fmt.Errorf("%w: openDate: must not be before creationDate", domain.ErrValidation)
	}

	status := input.Status
	if status == "" {
		status = domain.BugStatusNew
	}

	bug, err := s.repo.Create(ctx, &domain.Bug{
		BugName:      input.Title,
		ProjectID:    input.ProjectID,
		CreatedID:    createdBy,
		AssignedID:   input.AssignedID,
		Description:  input.Description,
		Status:       status,
		Priority:     input.Priority,
		Importance:   input.Importance,
		CreationDate: creationDate,
		OpenDate:     openDate,
	})
	if err != nil {
		return nil, fmt.Errorf("create bug: %w", err)
	}

	s.logger.Info("bug created",
		"bug_id", bug.BugID,
		"project_id", bug.ProjectID,
		"created_by", createdBy,
	)

	return bug, nil
}

func validateNewBug(b *domain.NewBug) error {
	return ValidateStruct(b,
		Field(&b.Title, Required, Length(1, 255)),
		Field(&b.Description, Length(0, 10000)),
		Field(&b.Status, Length(0, 32)),
		Field(&b.Priority, Length(0, 32)),
		Field(&b.Importance, Length(0, 32)),
		Field(&b.CreationDate, By(validDate)),
		Field(&b.OpenDate, By(validDate)),
		Field(&b.ProjectID, Required, Min(int64(1))),
		Field(&b.AssignedID, By(positiveID)),
	)
}

func validDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := domain.ParseDate(s); err != nil {
		return errors.New("must be a date in YYYY-MM-DD or DD/MM/YYYY format")
	}
	return nil
}

func positiveID(value interface{}) error {
	id, ok := value.(*int64)
	if !ok || id == nil {
		return nil
	}
	if *id < 1 {
		return errors.New("must be a positive id")
	}
	return nil
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
