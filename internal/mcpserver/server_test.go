package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/navigation"
	"github.com/starford/folio/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir, store := testutil.TestContent(t)
	srv := New(blog.NewService(store, testutil.DiscardLogger()), 0)
	return srv, dir
}

func seed(t *testing.T, dir string) {
	t.Helper()
	testutil.WritePost(t, dir, "hooks", testutil.Post{
		Title: "Hooks",
		Date:  "2024-05-01",
		Tags:  []string{"Frontend", "React"},
		Body:  "# Hooks\n\n## useState\n\nState.\n",
	})
	testutil.WritePost(t, dir, "chi", testutil.Post{
		Title: "Routing with chi",
		Date:  "2024-02-01",
		Tags:  []string{"backend"},
	})
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are invoked
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_posts":
		result, err = srv.listPosts(ctx, req)
	case "get_post":
		result, err = srv.getPost(ctx, req)
	case "list_posts_by_tag":
		result, err = srv.listPostsByTag(ctx, req)
	case "list_tags":
		result, err = srv.listTags(ctx, req)
	case "get_outline":
		result, err = srv.getOutline(ctx, req)
	case "get_post_format":
		result, err = srv.getPostFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListPosts(t *testing.T) {
	srv, dir := testServer(t)
	seed(t, dir)

	res := callTool(t, srv, "list_posts", nil)
	if res.IsError {
		t.Fatalf("list_posts error: %s", resultText(res))
	}
	var posts []models.Post
	if err := json.Unmarshal([]byte(resultText(res)), &posts); err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 || posts[0].Slug != "hooks" || posts[1].Slug != "chi" {
		t.Errorf("posts = %+v", posts)
	}

	res = callTool(t, srv, "list_posts", map[string]interface{}{"tag": "BACKEND"})
	posts = nil
	_ = json.Unmarshal([]byte(resultText(res)), &posts)
	if len(posts) != 1 || posts[0].Slug != "chi" {
		t.Errorf("filtered posts = %+v", posts)
	}
}

func TestGetPost(t *testing.T) {
	srv, dir := testServer(t)
	seed(t, dir)

	res := callTool(t, srv, "get_post", map[string]interface{}{"slug": "hooks"})
	if res.IsError {
		t.Fatalf("get_post error: %s", resultText(res))
	}
	var view postView
	if err := json.Unmarshal([]byte(resultText(res)), &view); err != nil {
		t.Fatal(err)
	}
	if view.Title != "Hooks" || !strings.Contains(view.Content, "useState") {
		t.Errorf("post = %+v", view.Post)
	}
	if len(view.Headings) != 2 || view.ReadingTime != 1 {
		t.Errorf("headings = %+v, readingTime = %d", view.Headings, view.ReadingTime)
	}
}

func TestGetPostMissing(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "get_post", map[string]interface{}{"slug": "nope"})
	if !res.IsError {
		t.Error("expected error for missing post")
	}
	res = callTool(t, srv, "get_post", nil)
	if !res.IsError {
		t.Error("expected error for missing slug argument")
	}
}

func TestListPostsByTag(t *testing.T) {
	srv, dir := testServer(t)
	seed(t, dir)

	res := callTool(t, srv, "list_posts_by_tag", map[string]interface{}{"tag": "react"})
	var posts []models.Post
	if err := json.Unmarshal([]byte(resultText(res)), &posts); err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].Slug != "hooks" {
		t.Errorf("posts = %+v", posts)
	}

	res = callTool(t, srv, "list_posts_by_tag", map[string]interface{}{"tag": "devops"})
	if got := strings.TrimSpace(resultText(res)); got != "[]" {
		t.Errorf("unknown tag = %s, want []", got)
	}
}

func TestListTags(t *testing.T) {
	srv, dir := testServer(t)
	seed(t, dir)

	res := callTool(t, srv, "list_tags", nil)
	var tags []models.TagCount
	if err := json.Unmarshal([]byte(resultText(res)), &tags); err != nil {
		t.Fatal(err)
	}
	want := []string{"frontend", "react", "backend"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %+v", tags)
	}
	for i, tc := range tags {
		if tc.Tag != want[i] || tc.Count != 1 {
			t.Errorf("tags[%d] = %+v, want %s:1", i, tc, want[i])
		}
	}
}

func TestGetOutline(t *testing.T) {
	srv, dir := testServer(t)
	seed(t, dir)

	res := callTool(t, srv, "get_outline", map[string]interface{}{"slug": "hooks"})
	var outline []navigation.Heading
	if err := json.Unmarshal([]byte(resultText(res)), &outline); err != nil {
		t.Fatal(err)
	}
	if len(outline) != 2 || outline[1].ID != "usestate" || outline[1].Level != 2 {
		t.Errorf("outline = %+v", outline)
	}
}

func TestPostFormatContract(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "get_post_format", nil)
	if !strings.Contains(resultText(res), "date") {
		t.Error("contract should document the date field")
	}

	contents, err := srv.readPostFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != "folio://post-format" || tc.Text != PostFormatContract {
		t.Errorf("resource = %+v", contents[0])
	}
}
