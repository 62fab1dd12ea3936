package videodb

import (
	"context"
	"fmt"
)

// SearchOptions tunes a search. Zero values select the server defaults:
// semantic search over the spoken word index.
type SearchOptions struct {
	SearchType             SearchType
	IndexType              IndexType
	SceneModel             SceneModel
	ResultThreshold        int
	ScoreThreshold         float64
	DynamicScorePercentage float64
	Filter                 []map[string]any
}

type searchRequest struct {
	Query                  string           `json:"query"`
	SearchType             SearchType       `json:"search_type"`
	IndexType              IndexType        `json:"index_type"`
	SceneModel             SceneModel       `json:"scene_model,omitempty"`
	ResultThreshold        int              `json:"result_threshold,omitempty"`
	ScoreThreshold         float64          `json:"score_threshold,omitempty"`
	DynamicScorePercentage float64          `json:"dynamic_score_percentage,omitempty"`
	Filter                 []map[string]any `json:"filter,omitempty"`
}

type searchResponse struct {
	Results []struct {
		VideoID      string  `json:"video_id"`
		CollectionID string  `json:"collection_id"`
		Length       Seconds `json:"length"`
		Title        string  `json:"title"`
		Docs         []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
			Score float64 `json:"score"`
		} `json:"docs"`
	} `json:"results"`
}

// SearchResult holds the shots matching a search.
type SearchResult struct {
	conn *Connection

	Shots []*Shot

	streamURL string
}

// Shot is a matching range of one video.
type Shot struct {
	conn *Connection

	VideoID      string
	CollectionID string
	VideoLength  float64
	VideoTitle   string
	Start        float64
	End          float64
	Text         string
	SearchScore  float64

	streamURL string
}

func (s *Shot) String() string {
	return fmt.Sprintf("Shot(video_id=%s, video_title=%s, start=%v, end=%v, text=%s, search_score=%v)",
		s.VideoID, s.VideoTitle, s.Start, s.End, s.Text, s.SearchScore)
}

func (c *Connection) search(ctx context.Context, path, query string, opts SearchOptions) (*SearchResult, error) {
	if query == "" {
		return nil, &Error{Message: "search query is required"}
	}

	req := searchRequest{
		Query:                  query,
		SearchType:             opts.SearchType,
		IndexType:              opts.IndexType,
		SceneModel:             opts.SceneModel,
		ResultThreshold:        opts.ResultThreshold,
		ScoreThreshold:         opts.ScoreThreshold,
		DynamicScorePercentage: opts.DynamicScorePercentage,
		Filter:                 opts.Filter,
	}
	if req.SearchType == "" {
		req.SearchType = SearchTypeSemantic
	}
	if req.IndexType == "" {
		req.IndexType = IndexTypeSpokenWord
	}

	data, err := c.client.Post(ctx, path, req)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := decodePayload(data, &resp); err != nil {
		return nil, err
	}

	result := &SearchResult{conn: c}
	for _, r := range resp.Results {
		for _, doc := range r.Docs {
			result.Shots = append(result.Shots, &Shot{
				conn:         c,
				VideoID:      r.VideoID,
				CollectionID: r.CollectionID,
				VideoLength:  float64(r.Length),
				VideoTitle:   r.Title,
				Start:        doc.Start,
				End:          doc.End,
				Text:         doc.Text,
				SearchScore:  doc.Score,
			})
		}
	}

	return result, nil
}

// Compile returns one stream playing every shot of the result in order.
func (r *SearchResult) Compile(ctx context.Context) (string, error) {
	if r.streamURL != "" {
		return r.streamURL, nil
	}

	if len(r.Shots) == 0 {
		return "", &Error{Message: "no shots to compile"}
	}

	var entries []compileEntry
	index := map[string]int{}
	for _, shot := range r.Shots {
		i, ok := index[shot.VideoID]
		if !ok {
			i = len(entries)
			index[shot.VideoID] = i
			entries = append(entries, compileEntry{VideoID: shot.VideoID, CollectionID: shot.CollectionID})
		}
		entries[i].Shots = append(entries[i].Shots, Segment{Start: shot.Start, End: shot.End})
	}

	data, err := r.conn.client.Post(ctx, PathCompile, entries)
	if err != nil {
		return "", err
	}

	streamURL, err := decodeStreamURL(data)
	if err != nil {
		return "", err
	}

	r.streamURL = streamURL
	return streamURL, nil
}

// PlayURL returns the hosted player URL for the compiled stream. It is
// empty until [SearchResult.Compile] succeeds.
func (r *SearchResult) PlayURL() string {
	if r.streamURL == "" {
		return ""
	}
	return playURL(r.conn.playerURL, r.streamURL)
}

// GenerateStream returns a stream URL playing only this shot.
func (s *Shot) GenerateStream(ctx context.Context) (string, error) {
	if s.streamURL != "" {
		return s.streamURL, nil
	}

	var body struct {
		Timeline []Segment `json:"timeline"`
		Length   float64   `json:"length"`
	}
	body.Timeline = []Segment{{Start: s.Start, End: s.End}}
	body.Length = s.VideoLength

	data, err := s.conn.client.Post(ctx, joinPath(PathVideo, s.VideoID, PathStream), body)
	if err != nil {
		return "", err
	}

	streamURL, err := decodeStreamURL(data)
	if err != nil {
		return "", err
	}

	s.streamURL = streamURL
	return streamURL, nil
}
