package mcp

import "github.com/mark3labs/mcp-go/mcp"

// retrieveFragmentsTool defines the retrieve_fragments MCP tool.
var retrieveFragmentsTool = mcp.NewTool("retrieve_fragments",
	mcp.WithDescription("Search the municipal knowledge base semantically. Returns the most relevant text fragments with their provenance."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("k",
		mcp.Description("Number of fragments to return, between 1 and 10 (default 5)"),
	),
	mcp.WithString("category",
		mcp.Description("Restrict the search to one source category"),
		mcp.Enum("document", "web", "api", "database"),
	),
)

// askTool defines the ask MCP tool.
var askTool = mcp.NewTool("ask",
	mcp.WithDescription("Answer a question using retrieved municipal context and a language model."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to answer"),
	),
	mcp.WithString("backend",
		mcp.Description("Override the model backend as provider:model, e.g. ollama:llama3"),
	),
)
