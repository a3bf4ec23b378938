// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the folio catalog as read-only tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/navigation"
)

const postFormatURI = "folio://post-format"

// Server wraps the MCP server with folio tools.
type Server struct {
	mcp *server.MCPServer
	svc *blog.Service
	wpm int
}

// postView is a post as returned by get_post.
type postView struct {
	models.Post
	Headings    []navigation.Heading `json:"headings"`
	ReadingTime int                  `json:"readingTime"`
}

// New creates a new MCP server with all folio tools registered. wpm is the
// reading speed used for reading time estimates.
func New(svc *blog.Service, wpm int) *Server {
	if wpm <= 0 {
		wpm = navigation.DefaultWordsPerMinute
	}
	s := &Server{svc: svc, wpm: wpm}

	s.mcp = server.NewMCPServer(
		"Folio",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List blog posts (metadata only), most recent first."),
		mcp.WithString("tag", mcp.Description("Optional tag filter, case-insensitive")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Read a blog post with its body, table of contents and reading time."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug (file name without extension)")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("list_posts_by_tag",
		mcp.WithDescription("List blog posts carrying a tag, most recent first."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag, case-insensitive")),
	), s.listPostsByTag)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag with the number of posts carrying it."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_outline",
		mcp.WithDescription("Table of contents of a blog post: headings of level 1 to 3 with their anchors."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug")),
	), s.getOutline)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the authoring contract for blog post files. "+
			"Read it before drafting a post for this blog."),
	), s.getPostFormat)

	// Resource: post format contract.
	s.mcp.AddResource(
		mcp.NewResource(postFormatURI, "Post Format Contract",
			mcp.WithResourceDescription("Front matter keys and conventions every blog post follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		posts []models.Post
		err   error
	)
	if tag := req.GetString("tag", ""); tag != "" {
		posts, err = s.svc.ListByTag(ctx, tag)
	} else {
		posts, err = s.svc.ListAll(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(posts)
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.lookup(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(postView{
		Post:        *post,
		Headings:    navigation.ExtractHeadings(post.Content),
		ReadingTime: navigation.ReadingTime(post.Content, s.wpm),
	})
}

func (s *Server) listPostsByTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	posts, err := s.svc.ListByTag(ctx, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(posts)
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.AggregateTags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
}

func (s *Server) getOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.lookup(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(navigation.ExtractHeadings(post.Content))
}

func (s *Server) lookup(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.svc.GetBySlug(ctx, slug)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("post not found: %s", slug)
	}
	return post, err
}

func (s *Server) getPostFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      postFormatURI,
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
