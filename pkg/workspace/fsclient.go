package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-jobform/pkg/params"
)

var fixtureExtensions = []string{".yaml", ".yml", ".json"}

// FSClient serves workspaces from a filesystem laid out as
// <repository>/<workspace>.{yaml,yml,json}. Each file holds an "item"
// (workspace metadata) and a "parameters" list.
type FSClient struct {
	fsys fs.FS
}

// NewFSClient returns a Client reading fixtures from fsys.
func NewFSClient(fsys fs.FS) *FSClient {
	return &FSClient{fsys: fsys}
}

type fixtureDocument struct {
	Item       params.WorkspaceMetadata `json:"item" yaml:"item"`
	Parameters []params.Descriptor      `json:"parameters" yaml:"parameters"`
}

// FetchWorkspaceList lists the fixtures of repository in name order.
func (c *FSClient) FetchWorkspaceList(ctx context.Context, repository string) ([]params.WorkspaceSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.fsys == nil {
		return nil, errors.New("workspace fs client: fs is nil")
	}

	entries, err := fs.ReadDir(c.fsys, cleanSegment(repository))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: repository %q", ErrNotFound, repository)
		}
		return nil, fmt.Errorf("workspace fs client: read repository %q: %w", repository, err)
	}

	var out []params.WorkspaceSummary
	for _, entry := range entries {
		if entry.IsDir() || !isFixture(entry.Name()) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		doc, err := c.readFixture(path.Join(cleanSegment(repository), entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, params.WorkspaceSummary{
			Name:         name,
			Title:        doc.Item.Title,
			Description:  doc.Item.Description,
			Type:         "WORKSPACE",
			LastSaveDate: doc.Item.LastSaveDate,
		})
	}
	return out, nil
}

// FetchParameters loads the fixture for workspace.
func (c *FSClient) FetchParameters(ctx context.Context, repository, workspace string) (params.Detail, error) {
	if err := ctx.Err(); err != nil {
		return params.Detail{}, err
	}
	if c.fsys == nil {
		return params.Detail{}, errors.New("workspace fs client: fs is nil")
	}

	base := path.Join(cleanSegment(repository), cleanSegment(workspace))
	for _, ext := range fixtureExtensions {
		doc, err := c.readFixture(base + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return params.Detail{}, err
		}
		item := doc.Item
		if item.Name == "" {
			item.Name = workspace
		}
		if item.Repository == "" {
			item.Repository = repository
		}
		return params.Detail{Parameters: doc.Parameters, Item: item}, nil
	}
	return params.Detail{}, fmt.Errorf("%w: workspace %q in %q", ErrNotFound, workspace, repository)
}

func (c *FSClient) readFixture(name string) (fixtureDocument, error) {
	data, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return fixtureDocument{}, err
	}

	var doc fixtureDocument
	if path.Ext(name) == ".json" {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fixtureDocument{}, fmt.Errorf("workspace fs client: parse %s: %w", name, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fixtureDocument{}, fmt.Errorf("workspace fs client: parse %s: %w", name, err)
	}
	return doc, nil
}

func isFixture(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, candidate := range fixtureExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// cleanSegment keeps names from escaping the fixture root.
func cleanSegment(segment string) string {
	segment = strings.ReplaceAll(strings.TrimSpace(segment), "..", "")
	segment = strings.Trim(segment, "/")
	if segment == "" {
		return "."
	}
	return segment
}
