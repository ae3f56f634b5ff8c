package repository

import (
	"database/sql"
	"errors"

	"taskguardian/internal/models"
	"taskguardian/internal/policy"
)

// ErrNotAssignable means the conditional assign matched no row: the task
// was assigned (or completed) by a concurrent request between the
// handler's checks and the write.
var ErrNotAssignable = errors.New("task is no longer assignable")

const taskColumns = "id, title, description, status, created_by, assigned_to, created_at, updated_at"

// TaskStore persists task records.
type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(row *sql.Row) (models.Task, error) {
	var task models.Task
	var assignedTo sql.NullInt64
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status,
		&task.CreatedBy, &assignedTo, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if assignedTo.Valid {
		id := int(assignedTo.Int64)
		task.AssignedTo = &id
	}
	return task, nil
}

// Create inserts a new PENDING, unassigned task owned by createdBy.
func (s *TaskStore) Create(title, description string, createdBy int) (models.Task, error) {
	row := s.db.QueryRow(
		"INSERT INTO tasks (title, description, status, created_by) VALUES ($1, $2, $3, $4) RETURNING "+taskColumns,
		title, description, string(policy.StatusPending), createdBy,
	)
	return scanTask(row)
}

func (s *TaskStore) List() ([]models.Task, error) {
	rows, err := s.db.Query("SELECT " + taskColumns + " FROM tasks ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		var assignedTo sql.NullInt64
		err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Status,
			&task.CreatedBy, &assignedTo, &task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if assignedTo.Valid {
			id := int(assignedTo.Int64)
			task.AssignedTo = &id
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) GetByID(id int) (models.Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	return scanTask(row)
}

func (s *TaskStore) UpdateStatus(id int, status string) (models.Task, error) {
	row := s.db.QueryRow(
		"UPDATE tasks SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 RETURNING "+taskColumns,
		status, id,
	)
	return scanTask(row)
}

// Delete removes the task and returns the removed row.
func (s *TaskStore) Delete(id int) (models.Task, error) {
	row := s.db.QueryRow("DELETE FROM tasks WHERE id = $1 RETURNING "+taskColumns, id)
	return scanTask(row)
}

// Assign sets the assignee in a single conditional update so two
// concurrent requests cannot both win: the row is only touched while it
// is unassigned and not completed.
func (s *TaskStore) Assign(id, assigneeID int) (models.Task, error) {
	row := s.db.QueryRow(
		`UPDATE tasks SET assigned_to = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND assigned_to IS NULL AND status <> $3
		 RETURNING `+taskColumns,
		assigneeID, id, string(policy.StatusCompleted),
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotAssignable
	}
	return task, err
}
