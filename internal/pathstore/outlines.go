package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

// DocumentsPrefix is the key prefix under which outlines are stored.
const DocumentsPrefix = "docoutline/documents"

const source = "docoutline"

// ErrNotFound is returned when no outline is stored for a document id.
var ErrNotFound = errors.New("outline not found")

// Meta is the summary stored next to each outline.
type Meta struct {
	DocID       string         `json:"doc_id"`
	Title       string         `json:"title"`
	Filename    string         `json:"filename,omitempty"`
	ContentHash string         `json:"content_hash,omitempty"`
	Extractor   string         `json:"extractor,omitempty"`
	Sections    int            `json:"sections"`
	Report      outline.Report `json:"report"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Outline is a persisted outline: its summary plus the flat section list.
type Outline struct {
	Meta
	Nodes []outline.SectionNode `json:"nodes"`
}

func docKey(docID string) string {
	return DocumentsPrefix + "/" + docID
}

// SaveOutline writes the section list, then the summary. The summary is
// written last so listings never show an outline whose sections are absent.
func (c *Client) SaveOutline(ctx context.Context, o Outline) error {
	if o.DocID == "" {
		return fmt.Errorf("save outline: empty doc id")
	}
	o.Sections = len(o.Nodes)
	nodes := o.Nodes
	if nodes == nil {
		nodes = []outline.SectionNode{}
	}
	if err := c.PutNode(ctx, docKey(o.DocID)+"/sections", NodeRequest{
		Value:      nodes,
		MemoryType: "semantic",
		Salience:   0.3,
		Source:     source + ":" + o.DocID,
	}); err != nil {
		return fmt.Errorf("save sections %s: %w", o.DocID, err)
	}
	if err := c.PutNode(ctx, docKey(o.DocID)+"/meta", NodeRequest{
		Value:      o.Meta,
		MemoryType: "metacognitive",
		Salience:   0.5,
		Source:     source + ":" + o.DocID,
	}); err != nil {
		return fmt.Errorf("save meta %s: %w", o.DocID, err)
	}
	return nil
}

// LoadOutline reads a stored outline. It returns ErrNotFound when the
// summary is missing.
func (c *Client) LoadOutline(ctx context.Context, docID string) (*Outline, error) {
	metaNode, err := c.GetNode(ctx, docKey(docID)+"/meta")
	if err != nil {
		return nil, err
	}
	if metaNode == nil {
		return nil, ErrNotFound
	}
	var o Outline
	if err := json.Unmarshal(metaNode.Value, &o.Meta); err != nil {
		return nil, fmt.Errorf("decode meta %s: %w", docID, err)
	}

	secNode, err := c.GetNode(ctx, docKey(docID)+"/sections")
	if err != nil {
		return nil, err
	}
	if secNode != nil {
		if err := json.Unmarshal(secNode.Value, &o.Nodes); err != nil {
			return nil, fmt.Errorf("decode sections %s: %w", docID, err)
		}
	}
	return &o, nil
}

// ListOutlines returns the summaries of stored outlines, newest first.
// Entries whose value does not decode are skipped.
func (c *Client) ListOutlines(ctx context.Context, limit int) ([]Meta, error) {
	children, err := c.ListChildren(ctx, DocumentsPrefix, limit)
	if err != nil {
		return nil, err
	}
	metas := []Meta{}
	for _, child := range children {
		if !isMetaKey(child.Key) {
			continue
		}
		var m Meta
		if err := json.Unmarshal(child.Value, &m); err != nil || m.DocID == "" {
			continue
		}
		metas = append(metas, m)
	}
	sort.SliceStable(metas, func(i, j int) bool { return metas[i].CreatedAt.After(metas[j].CreatedAt) })
	return metas, nil
}

// DeleteOutline removes a stored outline and everything under its key.
func (c *Client) DeleteOutline(ctx context.Context, docID string) error {
	if docID == "" {
		return fmt.Errorf("delete outline: empty doc id")
	}
	return c.DeleteNode(ctx, docKey(docID), true)
}

// isMetaKey accepts both slash- and dot-separated key paths; the service
// reports keys in its dotted form.
func isMetaKey(key string) bool {
	return strings.HasSuffix(key, "/meta") || strings.HasSuffix(key, ".meta")
}
