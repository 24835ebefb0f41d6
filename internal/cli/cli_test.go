package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/clive/apps/tasks/internal/config"
	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_Help(t *testing.T) {
	out, err := runCmd(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"serve", "tasks", "suggest"} {
		assert.Contains(t, out, sub)
	}
}

func TestSuggestCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.SuggestRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "Plan trip", req.TaskTitle)
		assert.Equal(t, "to Japan", req.TaskDescription)
		_ = json.NewEncoder(w).Encode(models.SuggestResponse{Subtasks: []string{"Book flights", "Reserve hotel"}})
	}))
	defer srv.Close()

	out, err := runCmd(t, "--server", srv.URL, "suggest", "Plan", "trip", "-d", "to Japan")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan trip")
	assert.Contains(t, out, "Book flights")
	assert.Contains(t, out, "Reserve hotel")
}

func TestSuggestCmd_RequiresTitle(t *testing.T) {
	_, err := runCmd(t, "suggest")
	assert.Error(t, err)
}

func TestRenderTasks(t *testing.T) {
	var buf bytes.Buffer
	renderTasks(&buf, nil)
	assert.Contains(t, buf.String(), "No tasks.")

	buf.Reset()
	renderTasks(&buf, []models.BoardTask{{
		Task: models.Task{
			ID:       "t1",
			Title:    "Finish project report",
			Status:   models.TaskStatusInProgress,
			DueDate:  "2025-07-03",
			Subtasks: []string{"Draft outline"},
		},
		Pending:  true,
		DueLabel: "Due",
	}})
	out := buf.String()
	assert.Contains(t, out, "Finish project report")
	assert.Contains(t, out, "in-progress")
	assert.Contains(t, out, "Due: 2025-07-03")
	assert.Contains(t, out, "Draft outline")
	assert.Contains(t, out, "generating")
}

func TestServe_EndToEnd(t *testing.T) {
	cfg := &config.Config{
		SuggestProvider: "ollama",
		OllamaBaseURL:   "http://127.0.0.1:1",
		OllamaModel:     "test",
		SuggestTimeout:  time.Second,
		StoreDriver:     config.StoreSQLite,
		DBPath:          filepath.Join(t.TempDir(), "tasks.db"),
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	url := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/api/tasks")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	out, err := runCmd(t, "--server", url, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "Finish project report")

	out, err = runCmd(t, "--server", url, "tasks", "--json")
	require.NoError(t, err)
	var tasks []models.BoardTask
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, models.TaskStatusInProgress, tasks[0].Status)

	// The generator is unreachable, so the suggestion fails with the
	// generic message.
	out, err = runCmd(t, "--server", url, "suggest", "Plan trip")
	require.Error(t, err)
	assert.True(t, strings.Contains(out, "failed to generate subtasks"), out)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}
