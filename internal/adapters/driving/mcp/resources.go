package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for lexrag resources.
	uriScheme = "lexrag://"

	statusURI = uriScheme + "status"
)

// statusInfo is the JSON body of the status resource.
type statusInfo struct {
	TrackedFiles     int    `json:"tracked_files"`
	PendingArtifacts int    `json:"pending_artifacts"`
	Collection       string `json:"collection"`
	CollectionExists bool   `json:"collection_exists"`
	Dimensions       int    `json:"dimensions,omitempty"`
	Vectors          int    `json:"vectors"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Status == nil {
		return
	}
	s.sdk.AddResource(&mcp.Resource{
		URI:         statusURI,
		Name:        "status",
		Description: "Tracked files, pending artifacts and vector collection size",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// handleStatusResource returns the pipeline status as JSON.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	st, err := s.ports.Status.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	data, err := json.MarshalIndent(statusInfo{
		TrackedFiles:     st.TrackedFiles,
		PendingArtifacts: st.PendingArtifacts,
		Collection:       st.Collection.Name,
		CollectionExists: st.CollectionExists,
		Dimensions:       st.Collection.Dimensions,
		Vectors:          st.VectorCount,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
