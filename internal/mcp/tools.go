package mcp

// ToolDefinitions returns the MCP tool definitions for the tasks server.
func ToolDefinitions() []ToolDefinition {
	statuses := []string{"pending", "in-progress", "completed"}

	return []ToolDefinition{
		{
			Name: "task_list",
			Description: "List every task on the board in display order. " +
				"Each task carries its subtasks and a pending flag that is true while subtasks are being generated.",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name:        "task_create",
			Description: "Add a task to the end of the board. The title is required; status defaults to pending.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"title":       {Type: "string", Description: "Short task title"},
					"description": {Type: "string", Description: "Optional free-text description"},
					"status":      {Type: "string", Description: "Task status", Enum: statuses, Default: "pending"},
					"dueDate":     {Type: "string", Description: "Due date as YYYY-MM-DD"},
				},
				Required: []string{"title"},
			},
		},
		{
			Name:        "task_update",
			Description: "Change the title, description, status or due date of a task. Omitted fields are left as they are.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id":          {Type: "string", Description: "ID of the task to change"},
					"title":       {Type: "string", Description: "New title, must not be empty"},
					"description": {Type: "string", Description: "New description"},
					"status":      {Type: "string", Description: "New status", Enum: statuses},
					"dueDate":     {Type: "string", Description: "New due date as YYYY-MM-DD"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "task_delete",
			Description: "Remove a task from the board. Deleting an unknown id succeeds.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id": {Type: "string", Description: "ID of the task to remove"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name: "task_suggest_subtasks",
			Description: "Generate 3-5 short subtasks. With an id, generation runs in the background " +
				"and replaces that task's subtasks when done; poll task_list to see the result. " +
				"With only a title, the subtasks are returned directly and nothing is stored.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id":          {Type: "string", Description: "ID of a stored task"},
					"title":       {Type: "string", Description: "Task title, used when no id is given"},
					"description": {Type: "string", Description: "Optional description, used with title"},
				},
			},
		},
	}
}
