package repository

import (
	"context"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"strings"
)

type BugRepo struct {
	db     DB
	logger *logger.Logger
}

func NewBugRepo(db DB, logger *logger.Logger) *BugRepo {
	return &BugRepo{
		db:     db,
		logger: logger.Component("repository/bug"),
	}
}

const bugColumns = `
	bug_id, bug_name, project_id, created_id, assigned_id, bug_desc,
	status, priority, importance, num_of_comments,
	creation_date, open_date, close_date`

// Create inserts a bug and fills in its generated id.
// Unknown creator or assignee yields ErrInvalidReference.
func (r *BugRepo) Create(ctx context.Context, bug *domain.Bug) (*domain.Bug, error) {
	query := `
		INSERT INTO bugs (
			bug_name, project_id, created_id, assigned_id, bug_desc,
			status, priority, importance, num_of_comments,
			creation_date, open_date, close_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING bug_id
	`

	err := r.db.QueryRow(ctx, query,
		bug.BugName,
		bug.ProjectID,
		bug.CreatedID,
		bug.AssignedID,
		bug.Description,
		bug.Status,
		bug.Priority,
		bug.Importance,
		bug.NumOfComments,
		bug.CreationDate,
		bug.OpenDate,
		bug.CloseDate,
	).Scan(&bug.BugID)

	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, domain.ErrInvalidReference
		}
		r.logger.Error("insert bug failed", "bug_name", bug.BugName, "error", err)
		return nil, domain.NewStorageError("insert bug", err)
	}

	return bug, nil
}

// SearchByName matches substring anywhere in the bug name, ignoring case.
// Wildcards in the input match literally. Returns empty slice if nothing matches.
func (r *BugRepo) SearchByName(ctx context.Context, substring string) ([]*domain.Bug, error) {
	query := `
		SELECT ` + bugColumns + `
		FROM bugs
		WHERE bug_name ILIKE $1 ESCAPE '\'
		ORDER BY bug_id
	`

	return r.queryBugs(ctx, "search bugs", query, "%"+escapeLike(substring)+"%")
}

func (r *BugRepo) List(ctx context.Context) ([]*domain.Bug, error) {
	query := `SELECT ` + bugColumns + ` FROM bugs ORDER BY bug_id`

	return r.queryBugs(ctx, "list bugs", query)
}

func (r *BugRepo) queryBugs(ctx context.Context, op, query string, args ...any) ([]*domain.Bug, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("bug query failed", "op", op, "error", err)
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	bugs := []*domain.Bug{}
	for rows.Next() {
		bug, err := scanBug(rows)
		if err != nil {
			return nil, domain.NewStorageError(op, err)
		}
		bugs = append(bugs, bug)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}

	return bugs, nil
}

func scanBug(row pgx.Row) (*domain.Bug, error) {
	var bug domain.Bug
	err := row.Scan(
		&bug.BugID,
		&bug.BugName,
		&bug.ProjectID,
		&bug.CreatedID,
		&bug.AssignedID,
		&bug.Description,
		&bug.Status,
		&bug.Priority,
		&bug.Importance,
		&bug.NumOfComments,
		&bug.CreationDate,
		&bug.OpenDate,
		&bug.CloseDate,
	)
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
