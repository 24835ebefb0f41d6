package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/store"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "plain yaml",
			input: `tasks:
  - title: Plan trip
    description: to Japan
    status: pending
    dueDate: "2025-08-01"
  - title: Write report
`,
			wantCount: 2,
		},
		{
			name: "markdown frontmatter",
			input: `---
tasks:
  - title: Plan trip
    subtasks: [Book flights, Reserve hotel]
---

# Board notes
`,
			wantCount: 1,
		},
		{
			name:      "empty document",
			input:     "",
			wantCount: 0,
		},
		{
			name:    "missing title",
			input:   "tasks:\n  - description: orphan\n",
			wantErr: true,
		},
		{
			name:    "bad status",
			input:   "tasks:\n  - title: x\n    status: archived\n",
			wantErr: true,
		},
		{
			name:    "no closing delimiter",
			input:   "---\ntasks: []\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			input:   "tasks: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("got %d tasks, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	got, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile(\"\") error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Finish project report" {
		t.Fatalf("expected default seed, got %+v", got)
	}

	if _, err := LoadFile("/nonexistent/seed.yaml"); err == nil {
		t.Fatal("expected error for missing seed file")
	}

	path := filepath.Join(t.TempDir(), "seed.yaml")
	os.WriteFile(path, []byte("tasks:\n  - title: From file\n"), 0o644)
	got, err = LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "From file" {
		t.Errorf("unexpected tasks %+v", got)
	}
}

func TestApply(t *testing.T) {
	s := store.NewMemoryTaskStore()
	tasks := append(Default(), Task{Title: "Plan trip", Subtasks: []string{"Book flights"}})

	n, err := Apply(s, tasks)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if n != 2 {
		t.Fatalf("created %d tasks, want 2", n)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	first := list[0]
	if first.Status != models.TaskStatusInProgress || first.DueDate != "2025-07-03" {
		t.Errorf("default seed not applied as written: %+v", first)
	}
	if len(first.Subtasks) != 0 {
		t.Errorf("default seed should have no subtasks, got %v", first.Subtasks)
	}
	if got := list[1].Subtasks; len(got) != 1 || got[0] != "Book flights" {
		t.Errorf("seeded subtasks = %v", got)
	}
}
