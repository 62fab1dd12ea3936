package videodb

import (
	"context"
	"strconv"
)

// RTStream is a real-time stream ingested by the API.
type RTStream struct {
	conn *Connection

	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	CollectionID string `json:"collection_id,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	SampleRate   int    `json:"sample_rate,omitempty"`
	Status       string `json:"status,omitempty"`
}

func (s *RTStream) path(segments ...string) string {
	return joinPath(append([]string{PathRTStream, s.ID}, segments...)...)
}

// Stream returns a playable URL for the range [start, end], given as unix
// timestamps in seconds.
func (s *RTStream) Stream(ctx context.Context, start, end int64) (string, error) {
	data, err := s.conn.client.Get(ctx, s.path(PathStream), WithQueryParams(map[string]string{
		"start": strconv.FormatInt(start, 10),
		"end":   strconv.FormatInt(end, 10),
	}))
	if err != nil {
		return "", err
	}
	return decodeStreamURL(data)
}

// RTStreamIndexOptions configures [RTStream.IndexScenes]. Zero values
// select time-based extraction every 2 seconds with 5 frames, described by
// GPT4o with the prompt "Describe the scene".
type RTStreamIndexOptions struct {
	ExtractionType   ExtractionType
	ExtractionConfig map[string]any
	Prompt           string
	ModelName        SceneModel
	ModelConfig      map[string]any
	Name             string
}

// IndexScenes starts a live scene index on the stream. It returns nil when
// the server acknowledges the request without creating an index yet.
func (s *RTStream) IndexScenes(ctx context.Context, opts RTStreamIndexOptions) (*RTStreamSceneIndex, error) {
	if opts.ExtractionType == "" {
		opts.ExtractionType = ExtractionTypeTimeBased
	}
	if opts.ExtractionConfig == nil {
		opts.ExtractionConfig = map[string]any{"time": 2, "frame_count": 5}
	}
	if opts.Prompt == "" {
		opts.Prompt = "Describe the scene"
	}
	if opts.ModelName == "" {
		opts.ModelName = SceneModelGPT4o
	}
	if opts.ModelConfig == nil {
		opts.ModelConfig = map[string]any{}
	}

	data, err := s.conn.client.Post(ctx, s.path(PathIndex, PathScene), map[string]any{
		"extraction_type":   opts.ExtractionType,
		"extraction_config": opts.ExtractionConfig,
		"prompt":            opts.Prompt,
		"model_name":        opts.ModelName,
		"model_config":      opts.ModelConfig,
		"name":              nullable(opts.Name),
	})
	if err != nil {
		return nil, err
	}

	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	index := &RTStreamSceneIndex{conn: s.conn, RTStreamID: s.ID}
	if err := decodePayload(data, index); err != nil {
		return nil, err
	}
	return index, nil
}

// ListSceneIndexes lists the stream's scene indexes.
func (s *RTStream) ListSceneIndexes(ctx context.Context) ([]*RTStreamSceneIndex, error) {
	data, err := s.conn.client.Get(ctx, s.path(PathIndex, PathScene))
	if err != nil {
		return nil, err
	}

	var payload struct {
		SceneIndexes []*RTStreamSceneIndex `json:"scene_indexes"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return nil, err
	}

	for _, index := range payload.SceneIndexes {
		index.conn = s.conn
		index.RTStreamID = s.ID
	}
	return payload.SceneIndexes, nil
}

// RTStreamSceneIndex is a live scene index of an [RTStream].
type RTStreamSceneIndex struct {
	conn *Connection

	ID         string `json:"rtstream_index_id"`
	RTStreamID string `json:"-"`
	Name       string `json:"name,omitempty"`
	Status     string `json:"status,omitempty"`
}

// SceneIndexRecord is one described window of a live scene index.
type SceneIndexRecord struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Description string  `json:"description"`
}

func (i *RTStreamSceneIndex) path(segments ...string) string {
	return joinPath(append([]string{PathRTStream, i.RTStreamID, PathIndex, PathScene, i.ID}, segments...)...)
}

// GetSceneIndex returns the records produced so far.
func (i *RTStreamSceneIndex) GetSceneIndex(ctx context.Context) ([]SceneIndexRecord, error) {
	data, err := i.conn.client.Get(ctx, i.path())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Records []SceneIndexRecord `json:"scene_index_records"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return nil, err
	}
	return payload.Records, nil
}

// Start resumes indexing.
func (i *RTStreamSceneIndex) Start(ctx context.Context) error {
	return i.setStatus(ctx, "running")
}

// Stop pauses indexing.
func (i *RTStreamSceneIndex) Stop(ctx context.Context) error {
	return i.setStatus(ctx, "stopped")
}

func (i *RTStreamSceneIndex) setStatus(ctx context.Context, status string) error {
	_, err := i.conn.client.Patch(ctx, i.path(PathStatus), map[string]any{"status": status})
	if err != nil {
		return err
	}
	i.Status = status
	return nil
}
