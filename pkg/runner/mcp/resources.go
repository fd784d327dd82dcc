package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerFeaturesResource(srv, svc)
	registerFeatureTemplate(srv, svc)
}

func registerFeaturesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"sitelog://features",
		"Pages",
		mcp.WithResourceDescription("Every page with its facets, sort fields and form fields."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		features, err := svc.Features()
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"features": features,
			"scope":    svc.Scope,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerFeatureTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"sitelog://records/{feature}",
		"Page Records",
		mcp.WithTemplateDescription("Records of a page in the configured scope, newest first."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		feature := argument(request.Params.Arguments["feature"])
		if feature == "" {
			return nil, fmt.Errorf("feature is required")
		}
		res, err := svc.List(ctx, ListOptions{Feature: feature})
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, res)
	})
}

// argument reads a template variable, which may arrive as a string or a
// single-element list.
func argument(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	case []any:
		if len(t) > 0 {
			s, _ := t[0].(string)
			return s
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
