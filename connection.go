package videodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Connection is the entry point to the VideoDB resources: collections,
// media, search and real-time streams. It remembers the collection most
// recently fetched, created or updated and uses it for [Connection.Upload].
type Connection struct {
	client    *Client
	streaming *StreamingConfig
	playerURL string

	mu           sync.RWMutex
	collectionID string
}

// ConnectionOption configures a [Connection].
type ConnectionOption func(*Connection)

// WithStreaming enables the streaming-service registration that follows a
// video upload. A failed registration is logged and does not fail the
// upload.
func WithStreaming(cfg StreamingConfig) ConnectionOption {
	return func(c *Connection) {
		if cfg.APIURL != "" {
			c.streaming = &cfg
		}
	}
}

// WithPlayerURL overrides the player used by [Video.PlayURL].
func WithPlayerURL(playerURL string) ConnectionOption {
	return func(c *Connection) {
		if playerURL != "" {
			c.playerURL = playerURL
		}
	}
}

// NewConnection wraps client.
func NewConnection(client *Client, opts ...ConnectionOption) (*Connection, error) {
	if client == nil {
		return nil, errors.New("videodb client is nil")
	}

	conn := &Connection{
		client:       client,
		playerURL:    DefaultPlayerURL,
		collectionID: defaultCollectionID,
	}

	for _, opt := range opts {
		opt(conn)
	}

	return conn, nil
}

// Client returns the underlying transport client.
func (c *Connection) Client() *Client {
	return c.client
}

// CollectionID returns the collection used by [Connection.Upload].
func (c *Connection) CollectionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collectionID
}

func (c *Connection) setCollectionID(id string) {
	if id == "" {
		id = defaultCollectionID
	}
	c.mu.Lock()
	c.collectionID = id
	c.mu.Unlock()
}

// GetCollection fetches a collection. An empty id selects the default
// collection.
func (c *Connection) GetCollection(ctx context.Context, id string) (*Collection, error) {
	if id == "" {
		id = defaultCollectionID
	}

	data, err := c.client.Get(ctx, joinPath(PathCollection, id))
	if err != nil {
		return nil, err
	}

	coll, err := c.newCollection(data)
	if err != nil {
		return nil, err
	}

	c.setCollectionID(coll.ID)
	return coll, nil
}

// GetCollections lists every collection of the account.
func (c *Connection) GetCollections(ctx context.Context) ([]*Collection, error) {
	data, err := c.client.Get(ctx, PathCollection)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Collections []*Collection `json:"collections"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return nil, err
	}

	for _, coll := range payload.Collections {
		coll.conn = c
	}

	return payload.Collections, nil
}

// CreateCollection creates a collection and makes it the current one.
func (c *Connection) CreateCollection(ctx context.Context, name, description string, isPublic bool) (*Collection, error) {
	data, err := c.client.Post(ctx, PathCollection, map[string]any{
		"name":        name,
		"description": description,
		"is_public":   isPublic,
	})
	if err != nil {
		return nil, err
	}

	coll, err := c.newCollection(data)
	if err != nil {
		return nil, err
	}

	c.setCollectionID(coll.ID)
	return coll, nil
}

// UpdateCollection renames a collection and makes it the current one.
func (c *Connection) UpdateCollection(ctx context.Context, id, name, description string) (*Collection, error) {
	data, err := c.client.Patch(ctx, joinPath(PathCollection, id), map[string]any{
		"name":        name,
		"description": description,
	})
	if err != nil {
		return nil, err
	}

	coll, err := c.newCollection(data)
	if err != nil {
		return nil, err
	}

	c.setCollectionID(coll.ID)
	return coll, nil
}

// CheckUsage returns the account's usage report.
func (c *Connection) CheckUsage(ctx context.Context) (map[string]any, error) {
	data, err := c.client.Get(ctx, joinPath(PathBilling, PathUsage))
	if err != nil {
		return nil, err
	}

	var usage map[string]any
	if err := decodePayload(data, &usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// GetInvoices lists the account's invoices.
func (c *Connection) GetInvoices(ctx context.Context) ([]map[string]any, error) {
	data, err := c.client.Get(ctx, joinPath(PathBilling, PathInvoices))
	if err != nil {
		return nil, err
	}

	var invoices []map[string]any
	if err := decodePayload(data, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// Download asks the server to render streamLink into a downloadable file.
func (c *Connection) Download(ctx context.Context, streamLink, name string) (map[string]any, error) {
	data, err := c.client.Post(ctx, PathDownload, map[string]any{
		"stream_link": streamLink,
		"name":        name,
	})
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := decodePayload(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Upload uploads media into the current collection. See [UploadRequest].
func (c *Connection) Upload(ctx context.Context, req UploadRequest) (Media, error) {
	return c.upload(ctx, c.CollectionID(), req)
}

func (c *Connection) newCollection(data json.RawMessage) (*Collection, error) {
	coll := &Collection{conn: c}
	if err := decodePayload(data, coll); err != nil {
		return nil, err
	}
	return coll, nil
}

// decodePayload decodes a response payload into v. An empty payload leaves
// v untouched.
func decodePayload(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &InvalidRequestError{
			Message: fmt.Sprintf("unexpected response payload: %v", err),
			Err:     err,
		}
	}

	return nil
}
