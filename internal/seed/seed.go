package seed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/store"
)

// Task is one seeded task as written in a seed file.
type Task struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status"`
	DueDate     string   `yaml:"dueDate"`
	Subtasks    []string `yaml:"subtasks"`
}

type file struct {
	Tasks []Task `yaml:"tasks"`
}

// Default is the board a fresh process starts with.
func Default() []Task {
	return []Task{{
		Title:       "Finish project report",
		Description: "Complete the final draft and send to manager",
		Status:      string(models.TaskStatusInProgress),
		DueDate:     "2025-07-03",
	}}
}

// LoadFile reads seed tasks from path. An empty path yields Default.
func LoadFile(path string) ([]Task, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	tasks, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return tasks, nil
}

// Parse accepts either a plain YAML document or a Markdown file whose
// YAML frontmatter holds the tasks.
func Parse(data []byte) ([]Task, error) {
	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, "---") {
		block, err := frontmatter(content)
		if err != nil {
			return nil, err
		}
		content = block
	}

	var f file
	if err := yaml.Unmarshal([]byte(content), &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	for i := range f.Tasks {
		f.Tasks[i].Description = strings.TrimSpace(f.Tasks[i].Description)
		if err := f.Tasks[i].input().Validate(); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
	}
	return f.Tasks, nil
}

func frontmatter(content string) (string, error) {
	rest := content[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", fmt.Errorf("no closing frontmatter delimiter")
	}
	return rest[:idx], nil
}

func (t Task) input() models.TaskFormInput {
	return models.TaskFormInput{
		Title:       t.Title,
		Description: t.Description,
		Status:      models.TaskStatus(t.Status),
		DueDate:     t.DueDate,
	}
}

// Apply creates the tasks in order and returns how many were created.
func Apply(s store.TaskStore, tasks []Task) (int, error) {
	for i, t := range tasks {
		created, err := s.Create(t.input())
		if err != nil {
			return i, fmt.Errorf("seed task %q: %w", t.Title, err)
		}
		if len(t.Subtasks) > 0 {
			if _, err := s.ApplySuggestions(created.ID, t.Subtasks); err != nil {
				return i, fmt.Errorf("seed subtasks %q: %w", t.Title, err)
			}
		}
	}
	return len(tasks), nil
}
