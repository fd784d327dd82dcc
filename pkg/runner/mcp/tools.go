package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/site"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListRecordsTool(srv, svc)
	registerFacetOptionsTool(srv, svc)
	registerAddRecordTool(srv, svc)
	registerDeleteRecordTool(srv, svc)
}

func featureNames() []string {
	out := make([]string, len(site.Pages))
	for i, f := range site.Pages {
		out[i] = string(f)
	}
	return out
}

func registerListRecordsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_records",
		mcp.WithDescription("List the records of a page filtered by facets, a calendar day and free text, then sorted."),
		mcp.WithString("feature",
			mcp.Required(),
			mcp.Description("Page to list."),
			mcp.Enum(featureNames()...),
		),
		mcp.WithString("scope",
			mcp.Description("Project scope; defaults to the configured scope."),
		),
		mcp.WithObject("facets",
			mcp.Description("Facet name to selected values, e.g. {\"actions\": [\"sign\"]}. A record matches a facet when it has any selected value."),
		),
		mcp.WithString("date",
			mcp.Description("Calendar day as YYYY-MM-DD."),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive text matched against names, labels and resolved user and object names."),
		),
		mcp.WithString("sort",
			mcp.Description("Sort field, optionally with :asc or :desc, e.g. created:desc."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of records to return; 0 returns all."),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of records to skip."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Feature string         `json:"feature"`
			Scope   string         `json:"scope"`
			Facets  map[string]any `json:"facets"`
			Date    string         `json:"date"`
			Search  string         `json:"search"`
			Sort    string         `json:"sort"`
			Limit   int            `json:"limit"`
			Offset  int            `json:"offset"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		facets, err := FacetArgs(args.Facets)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := svc.List(ctx, ListOptions{
			Feature: args.Feature,
			Scope:   args.Scope,
			Query: app.Query{
				Facets: facets,
				Date:   args.Date,
				Search: args.Search,
				Sort:   args.Sort,
			},
			Limit:  args.Limit,
			Offset: args.Offset,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func registerFacetOptionsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"facet_options",
		mcp.WithDescription("List the values a facet of a page can be filtered by, with labels."),
		mcp.WithString("feature",
			mcp.Required(),
			mcp.Description("Page the facet belongs to."),
			mcp.Enum(featureNames()...),
		),
		mcp.WithString("facet",
			mcp.Required(),
			mcp.Description("Facet name, see the sitelog://features resource."),
		),
		mcp.WithString("scope",
			mcp.Description("Project scope; defaults to the configured scope."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		feature, err := request.RequireString("feature")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		facet, err := request.RequireString("facet")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts, err := svc.FacetOptions(ctx, feature, facet, request.GetString("scope", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"feature": feature,
			"facet":   facet,
			"options": opts,
		})
	})
}

func registerAddRecordTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"add_record",
		mcp.WithDescription("Create a record on a page. Field names are listed per page in the sitelog://features resource."),
		mcp.WithString("feature",
			mcp.Required(),
			mcp.Description("Page to add to."),
			mcp.Enum(featureNames()...),
		),
		mcp.WithString("scope",
			mcp.Description("Project scope; defaults to the configured scope."),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Form field name to value, all values as strings."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Feature string            `json:"feature"`
			Scope   string            `json:"scope"`
			Fields  map[string]string `json:"fields"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		res, err := svc.Add(ctx, args.Feature, args.Scope, args.Fields)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func registerDeleteRecordTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_record",
		mcp.WithDescription("Delete a record by identifier."),
		mcp.WithString("feature",
			mcp.Required(),
			mcp.Description("Page the record belongs to."),
			mcp.Enum(featureNames()...),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record identifier."),
		),
		mcp.WithString("scope",
			mcp.Description("Project scope; defaults to the configured scope."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		feature, err := request.RequireString("feature")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.Delete(ctx, feature, request.GetString("scope", ""), id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]string{"deleted": id, "feature": feature})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
