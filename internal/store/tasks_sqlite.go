package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

// taskColumns is the canonical column list for all SELECT queries.
// Order must match scanTask.
const taskColumns = `id, title, description, status, due_date, subtasks`

// SQLiteTaskStore keeps tasks in SQLite, ordered by insertion position.
type SQLiteTaskStore struct {
	db *DB
}

func NewSQLiteTaskStore(db *DB) *SQLiteTaskStore {
	return &SQLiteTaskStore{db: db}
}

// List returns all tasks in collection order.
func (s *SQLiteTaskStore) List() ([]models.Task, error) {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT %s FROM tasks ORDER BY position`, taskColumns))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Get fetches a single task by id.
func (s *SQLiteTaskStore) Get(id string) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM tasks WHERE id = ?`, taskColumns), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Create validates the input and appends a new task after the last one.
func (s *SQLiteTaskStore) Create(in models.TaskFormInput) (*models.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t := newTask(uuid.New().String(), in)
	now := time.Now().Unix()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	var position int64
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position), 0) + 1 FROM tasks`).Scan(&position); err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO tasks (id, position, title, description, status, due_date, subtasks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, position, t.Title, t.Description, string(t.Status), t.DueDate, "[]", now, now)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return &t, nil
}

// Update applies the patch in place; position is untouched.
func (s *SQLiteTaskStore) Update(id string, patch models.TaskPatch) (*models.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	current, err := scanTask(tx.QueryRow(
		fmt.Sprintf(`SELECT %s FROM tasks WHERE id = ?`, taskColumns), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}

	updated, err := patch.Apply(*current)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		UPDATE tasks SET title = ?, description = ?, status = ?, due_date = ?, updated_at = ?
		WHERE id = ?
	`, updated.Title, updated.Description, string(updated.Status), updated.DueDate, time.Now().Unix(), id)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return &updated, nil
}

// Delete removes a task by id. Deleting an absent id is a no-op.
func (s *SQLiteTaskStore) Delete(id string) error {
	if _, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ApplySuggestions replaces the subtasks of a task wholesale.
func (s *SQLiteTaskStore) ApplySuggestions(id string, subtasks []string) (bool, error) {
	data, err := json.Marshal(cloneSubtasks(subtasks))
	if err != nil {
		return false, fmt.Errorf("marshal subtasks: %w", err)
	}

	res, err := s.db.Exec(`UPDATE tasks SET subtasks = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now().Unix(), id)
	if err != nil {
		return false, fmt.Errorf("apply suggestions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply suggestions rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteTaskStore) Count() (int, error) {
	return s.db.TaskCount()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t        models.Task
		status   string
		subtasks string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.DueDate, &subtasks); err != nil {
		return nil, err
	}
	t.Status = models.TaskStatus(status)
	if err := json.Unmarshal([]byte(subtasks), &t.Subtasks); err != nil {
		return nil, fmt.Errorf("decode subtasks for %s: %w", t.ID, err)
	}
	t.Subtasks = cloneSubtasks(t.Subtasks)
	return &t, nil
}
