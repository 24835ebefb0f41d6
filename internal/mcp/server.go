package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iammorganparry/clive/apps/tasks/internal/client"
	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

const protocolVersion = "2024-11-05"

// Server implements an MCP stdio server that delegates to the HTTP tasks server.
type Server struct {
	api         *client.Client
	in          io.Reader
	out         io.Writer
	callTimeout time.Duration
}

// NewServer creates a new MCP server reading stdin and writing stdout.
func NewServer(serverURL string) *Server {
	return &Server{
		api:         client.New(serverURL),
		in:          os.Stdin,
		out:         os.Stdout,
		callTimeout: 90 * time.Second,
	}
}

// Run starts the stdio event loop. Blocks until stdin is closed.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	// Increase buffer for large messages
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeError(nil, -32700, "parse error: "+err.Error())
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			s.writeResponse(resp)
		}
	}

	return scanner.Err()
}

func (s *Server) handleRequest(req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notification, no response
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]string{}}
	default:
		return s.errorResponse(req.ID, -32601, "method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: ServerCapabilities{
				Tools: &ToolCapabilities{},
			},
			ServerInfo: ServerInfo{
				Name:    "tasks",
				Version: "1.0.0",
			},
		},
	}
}

func (s *Server) handleToolsList(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  ToolsListResult{Tools: ToolDefinitions()},
	}
}

func (s *Server) handleToolsCall(req *Request) *Response {
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		return s.errorResponse(req.ID, -32602, "invalid params")
	}

	var params CallToolParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "invalid params: "+err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()
	result, isError := s.dispatchTool(ctx, params.Name, params.Arguments)

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: CallToolResult{
			Content: []ContentBlock{{Type: "text", Text: result}},
			IsError: isError,
		},
	}
}

func (s *Server) dispatchTool(ctx context.Context, name string, args map[string]any) (string, bool) {
	switch name {
	case "task_list":
		return s.toolList(ctx)
	case "task_create":
		return s.toolCreate(ctx, args)
	case "task_update":
		return s.toolUpdate(ctx, args)
	case "task_delete":
		return s.toolDelete(ctx, args)
	case "task_suggest_subtasks":
		return s.toolSuggestSubtasks(ctx, args)
	default:
		return fmt.Sprintf("unknown tool: %s", name), true
	}
}

// --- Tool implementations (HTTP delegation) ---

func (s *Server) toolList(ctx context.Context) (string, bool) {
	tasks, err := s.api.ListTasks(ctx)
	return result(tasks, err)
}

func (s *Server) toolCreate(ctx context.Context, args map[string]any) (string, bool) {
	in := models.TaskFormInput{
		Title:       getString(args, "title"),
		Description: getString(args, "description"),
		Status:      models.TaskStatus(getString(args, "status")),
		DueDate:     getString(args, "dueDate"),
	}
	task, err := s.api.CreateTask(ctx, in)
	return result(task, err)
}

func (s *Server) toolUpdate(ctx context.Context, args map[string]any) (string, bool) {
	id := getString(args, "id")
	if id == "" {
		return "id is required", true
	}

	var patch models.TaskPatch
	if v, ok := args["title"].(string); ok {
		patch.Title = &v
	}
	if v, ok := args["description"].(string); ok {
		patch.Description = &v
	}
	if v, ok := args["status"].(string); ok {
		status := models.TaskStatus(v)
		patch.Status = &status
	}
	if v, ok := args["dueDate"].(string); ok {
		patch.DueDate = &v
	}
	task, err := s.api.UpdateTask(ctx, id, patch)
	return result(task, err)
}

func (s *Server) toolDelete(ctx context.Context, args map[string]any) (string, bool) {
	id := getString(args, "id")
	if id == "" {
		return "id is required", true
	}
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return err.Error(), true
	}
	return fmt.Sprintf("deleted task %s", id), false
}

// toolSuggestSubtasks dispatches a request for a stored task when an id
// is given, and otherwise previews subtasks for a free-standing title.
func (s *Server) toolSuggestSubtasks(ctx context.Context, args map[string]any) (string, bool) {
	if id := getString(args, "id"); id != "" {
		dispatch, err := s.api.RequestSuggestions(ctx, id)
		return result(dispatch, err)
	}

	subtasks, err := s.api.Suggest(ctx, getString(args, "title"), getString(args, "description"))
	if err != nil {
		return err.Error(), true
	}
	return result(models.SuggestResponse{Subtasks: subtasks}, nil)
}

// --- Response helpers ---

func result(v any, err error) (string, bool) {
	if err != nil {
		return err.Error(), true
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("marshal error: %s", err), true
	}
	return string(data), false
}

func (s *Server) writeResponse(resp *Response) {
	data, _ := json.Marshal(resp)
	fmt.Fprintf(s.out, "%s\n", data)
}

func (s *Server) writeError(id any, code int, message string) {
	s.writeResponse(s.errorResponse(id, code, message))
}

func (s *Server) errorResponse(id any, code int, message string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	}
}

// --- Argument helpers ---

func getString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
