package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	fmt.Println("🧪 Testing hex MCP Server and Tool Calling")
	fmt.Println("==========================================")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serverPath := findServerBinary()
	if serverPath == "" {
		log.Fatal("❌ MCP server binary not found. Run: go build -o hex-mcp ./cmd/hex-mcp")
	}
	fmt.Println("✅ Test 1: MCP server binary found")

	configPath := os.Getenv("HEX_CONFIG")
	if configPath == "" {
		configPath = "config/tasks.toml"
	}

	// Scheduling is off so the only runs are the ones made here.
	cmd := exec.Command(serverPath, "--config", configPath, "--no-schedule")
	cmd.Stderr = os.Stderr
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MCP server: %v", err)
	}
	defer session.Close()
	fmt.Println("✅ Test 2: Connected to MCP server")

	fmt.Println("\n✓ Test 3: Listing available tools")
	listResult, err := session.ListTools(ctx, nil)
	if err != nil {
		log.Fatalf("❌ Failed to list tools: %v", err)
	}
	fmt.Printf("  Found %d tools:\n", len(listResult.Tools))
	for _, tool := range listResult.Tools {
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}

	fmt.Println("\n✓ Test 4: Testing list_tasks tool")
	tasksResult, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_tasks",
		Arguments: map[string]any{},
	})
	if err != nil || tasksResult.IsError {
		log.Fatalf("❌ list_tasks failed: %v", err)
	}
	first := firstTaskID(tasksResult)
	if first == "" {
		log.Fatal("❌ list_tasks returned no tasks")
	}
	fmt.Printf("  ✅ First task: %s\n", first)

	fmt.Println("\n✓ Test 5: Testing run_task tool")
	runResult, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "run_task",
		Arguments: map[string]any{"task_id": first},
	})
	if err != nil {
		fmt.Printf("  ❌ run_task failed: %v\n", err)
	} else {
		fmt.Println("  ✅ run_task called successfully")
		printPreview(runResult)
	}

	fmt.Println("\n✓ Test 6: Testing get_task_output tool")
	outResult, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_task_output",
		Arguments: map[string]any{"task_id": first},
	})
	if err != nil || outResult.IsError {
		fmt.Printf("  ❌ get_task_output failed: %v\n", err)
	} else {
		fmt.Println("  ✅ get_task_output returned the latest run")
	}

	fmt.Println("\n✓ Test 7: Testing get_task_history tool")
	historyResult, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_task_history",
		Arguments: map[string]any{"task_id": first, "limit": 5},
	})
	switch {
	case err != nil:
		fmt.Printf("  ❌ History tool failed: %v\n", err)
	case historyResult.IsError:
		fmt.Println("  ⚠️  History is disabled (set settings.history_db or pass --history)")
	default:
		fmt.Println("  ✅ History tool called successfully")
	}

	fmt.Println("\n==========================================")
	fmt.Println("✅ All MCP tool calling tests complete!")
	fmt.Println("\n💡 To test interactively, run: go run ./cmd/mcp-client ./hex-mcp")
}

func firstTaskID(result *mcp.CallToolResult) string {
	out, ok := result.StructuredContent.(map[string]any)
	if !ok {
		return ""
	}
	tasks, ok := out["tasks"].([]any)
	if !ok || len(tasks) == 0 {
		return ""
	}
	task, ok := tasks[0].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := task["id"].(string)
	return id
}

func printPreview(result *mcp.CallToolResult) {
	for i, content := range result.Content {
		if i >= 3 {
			fmt.Printf("  ... and %d more content items\n", len(result.Content)-i)
			break
		}
		switch v := content.(type) {
		case *mcp.TextContent:
			preview := v.Text
			if len(preview) > 200 {
				preview = preview[:200] + "..."
			}
			fmt.Printf("    %s\n", preview)
		default:
			fmt.Printf("    [%T]\n", content)
		}
	}
}

func findServerBinary() string {
	candidates := []string{
		"./hex-mcp",
		"../../hex-mcp",
		"../../../hex-mcp",
	}
	for _, p := range candidates {
		if abs, err := filepath.Abs(p); err == nil {
			if _, err := os.Stat(abs); err == nil {
				return abs
			}
		}
	}
	return ""
}
