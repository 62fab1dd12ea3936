package videodb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Seconds is a duration in seconds. The API sends it either as a number or
// as a numeric string.
type Seconds float64

func (s *Seconds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		if str == "" {
			*s = 0
			return nil
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("invalid seconds value %q: %w", str, err)
		}
		*s = Seconds(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = Seconds(f)
	return nil
}

// Media is implemented by [Video], [Audio] and [Image].
type Media interface {
	MediaID() string
}

// WordTimestamp is one word of a transcript.
type WordTimestamp struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a [start, end] range of a video in seconds. It is sent as a
// two-element array.
type Segment struct {
	Start float64
	End   float64
}

func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{s.Start, s.End})
}

func (s *Segment) UnmarshalJSON(b []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	s.Start, s.End = pair[0], pair[1]
	return nil
}

// Video is an uploaded video. Methods that fetch derived data cache it on
// the record; a Video is not safe for concurrent use.
type Video struct {
	conn *Connection

	ID             string          `json:"id"`
	CollectionID   string          `json:"collection_id"`
	StreamURL      string          `json:"stream_url,omitempty"`
	PlayerURL      string          `json:"player_url,omitempty"`
	Name           string          `json:"name,omitempty"`
	Description    string          `json:"description,omitempty"`
	ThumbnailURL   string          `json:"thumbnail_url,omitempty"`
	Length         Seconds         `json:"length"`
	Transcript     []WordTimestamp `json:"transcript,omitempty"`
	TranscriptText string          `json:"transcript_text,omitempty"`
	Scenes         []Scene         `json:"scenes,omitempty"`
}

func (v *Video) MediaID() string { return v.ID }

func (v *Video) String() string {
	return fmt.Sprintf("Video(id=%s, collection_id=%s, stream_url=%s, player_url=%s, name=%s, description=%s, thumbnail_url=%s, length=%v)",
		v.ID, v.CollectionID, v.StreamURL, v.PlayerURL, v.Name, v.Description, v.ThumbnailURL, float64(v.Length))
}

func (c *Connection) newVideo(data json.RawMessage) (*Video, error) {
	v := &Video{conn: c}
	if err := decodePayload(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Video) path(segments ...string) string {
	return joinPath(append([]string{PathVideo, v.ID}, segments...)...)
}

// Search searches inside this video.
func (v *Video) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	if opts.SceneModel == "" {
		opts.SceneModel = SceneModelGPT4Vision
	}
	return v.conn.search(ctx, v.path(PathSearch), query, opts)
}

// Delete deletes the video.
func (v *Video) Delete(ctx context.Context) error {
	_, err := v.conn.client.Delete(ctx, v.path())
	return err
}

// GenerateStream returns a stream URL for the given timeline, or for the
// whole video when timeline is empty.
func (v *Video) GenerateStream(ctx context.Context, timeline []Segment) (string, error) {
	if len(timeline) == 0 && v.StreamURL != "" {
		return v.StreamURL, nil
	}

	var body struct {
		Timeline []Segment `json:"timeline"`
		Length   float64   `json:"length"`
	}
	body.Timeline = timeline
	body.Length = float64(v.Length)

	data, err := v.conn.client.Post(ctx, v.path(PathStream), body)
	if err != nil {
		return "", err
	}
	return decodeStreamURL(data)
}

// GenerateThumbnail returns the video's thumbnail URL.
func (v *Video) GenerateThumbnail(ctx context.Context) (string, error) {
	if v.ThumbnailURL != "" {
		return v.ThumbnailURL, nil
	}

	data, err := v.conn.client.Get(ctx, v.path(PathThumbnail))
	if err != nil {
		return "", err
	}

	var payload struct {
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return "", err
	}

	v.ThumbnailURL = payload.ThumbnailURL
	return v.ThumbnailURL, nil
}

func (v *Video) fetchTranscript(ctx context.Context, languageCode string, force bool) error {
	if len(v.Transcript) > 0 && !force {
		return nil
	}

	if languageCode == "" {
		languageCode = "en_us"
	}

	data, err := v.conn.client.Get(ctx, v.path(PathTranscription), WithQueryParams(map[string]string{
		"force":         strconv.FormatBool(force),
		"language_code": languageCode,
	}))
	if err != nil {
		return err
	}

	var payload struct {
		WordTimestamps []WordTimestamp `json:"word_timestamps"`
		Text           string          `json:"text"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return err
	}

	v.Transcript = payload.WordTimestamps
	v.TranscriptText = payload.Text
	return nil
}

// GetTranscript returns the word-level transcript, generating it if needed.
func (v *Video) GetTranscript(ctx context.Context, force bool) ([]WordTimestamp, error) {
	if err := v.fetchTranscript(ctx, "", force); err != nil {
		return nil, err
	}
	return v.Transcript, nil
}

// GetTranscriptText returns the transcript as plain text.
func (v *Video) GetTranscriptText(ctx context.Context, force bool) (string, error) {
	if err := v.fetchTranscript(ctx, "", force); err != nil {
		return "", err
	}
	return v.TranscriptText, nil
}

// IndexSpokenWords transcribes the video and builds its spoken word index.
func (v *Video) IndexSpokenWords(ctx context.Context, languageCode string) error {
	if err := v.fetchTranscript(ctx, languageCode, false); err != nil {
		return err
	}

	_, err := v.conn.client.Post(ctx, v.path(PathIndex), map[string]any{
		"index_type": IndexTypeSemantic,
	})
	return err
}

// ExtractFramesOptions configures [Video.ExtractFrames].
type ExtractFramesOptions struct {
	ExtractionType   ExtractionType
	ExtractionConfig *SceneExtractionConfig
	CustomIndexID    string
	Force            bool
	CallbackURL      string
}

// ExtractFrames samples frames from the video.
func (v *Video) ExtractFrames(ctx context.Context, opts ExtractFramesOptions) ([]Frame, error) {
	if opts.ExtractionType == "" {
		opts.ExtractionType = ExtractionTypeSceneBased
	}

	data, err := v.conn.client.Post(ctx, v.path(PathGenerateScenes), map[string]any{
		"custom_index_id":   nullable(opts.CustomIndexID),
		"extraction_type":   opts.ExtractionType,
		"extraction_config": extractionConfigOrEmpty(opts.ExtractionConfig),
		"force":             opts.Force,
		"callback_url":      nullable(opts.CallbackURL),
	})
	if err != nil {
		return nil, err
	}

	var frames []Frame
	if err := decodePayload(data, &frames); err != nil {
		return nil, err
	}
	return frames, nil
}

// IndexScenesOptions configures [Video.IndexScenes]. When Frames is set the
// given frames are described instead of extracting new ones.
type IndexScenesOptions struct {
	SceneModel       SceneModel
	Prompt           string
	CustomIndexID    string
	Force            bool
	ExtractionType   ExtractionType
	ExtractionConfig *SceneExtractionConfig
	Frames           []Frame
	CallbackURL      string
}

// IndexScenes builds a scene index for the video.
func (v *Video) IndexScenes(ctx context.Context, opts IndexScenesOptions) error {
	if opts.SceneModel == "" {
		opts.SceneModel = SceneModelGPT4Vision
	}
	if opts.ExtractionType == "" {
		opts.ExtractionType = ExtractionTypeSceneBased
	}

	body := map[string]any{
		"index_type":      IndexTypeScene,
		"model_name":      opts.SceneModel,
		"custom_index_id": nullable(opts.CustomIndexID),
		"force":           opts.Force,
		"prompt":          nullable(opts.Prompt),
		"callback_url":    nullable(opts.CallbackURL),
	}

	if len(opts.Frames) > 0 {
		body["frames"] = opts.Frames
	} else {
		body["extraction_type"] = opts.ExtractionType
		body["extraction_config"] = extractionConfigOrEmpty(opts.ExtractionConfig)
	}

	_, err := v.conn.client.Post(ctx, v.path(PathIndex), body)
	return err
}

// SceneIndexOptions selects a scene index.
type SceneIndexOptions struct {
	SceneModel    SceneModel
	CustomIndexID string
}

func (o SceneIndexOptions) query() RequestOption {
	model := o.SceneModel
	if model == "" {
		model = SceneModelGPT4Vision
	}
	return WithQueryParams(map[string]string{
		"index_type":      string(IndexTypeScene),
		"model_name":      string(model),
		"custom_index_id": o.CustomIndexID,
	})
}

// GetScenes returns the video's indexed scenes, or nil when there are none.
func (v *Video) GetScenes(ctx context.Context, opts SceneIndexOptions) ([]Scene, error) {
	if len(v.Scenes) > 0 {
		return v.Scenes, nil
	}

	data, err := v.conn.client.Get(ctx, v.path(PathIndex), opts.query())
	if err != nil {
		return nil, err
	}

	var scenes []Scene
	if err := decodePayload(data, &scenes); err != nil {
		return nil, err
	}

	if len(scenes) == 0 {
		return nil, nil
	}

	v.Scenes = scenes
	return scenes, nil
}

// GetFrames returns the frames of the video's scene index.
func (v *Video) GetFrames(ctx context.Context, opts SceneIndexOptions) ([]Frame, error) {
	data, err := v.conn.client.Get(ctx, v.path(PathIndex), opts.query())
	if err != nil {
		return nil, err
	}

	var frames []Frame
	if err := decodePayload(data, &frames); err != nil {
		return nil, err
	}
	return frames, nil
}

// DeleteSceneIndex removes the scene index built with model.
func (v *Video) DeleteSceneIndex(ctx context.Context, model SceneModel) error {
	if model == "" {
		model = SceneModelGPT4Vision
	}

	_, err := v.conn.client.Post(ctx, v.path(PathIndex, PathDelete), map[string]any{
		"index_type": IndexTypeScene,
		"model_name": model,
	})
	if err != nil {
		return err
	}

	v.Scenes = nil
	return nil
}

// GetSceneCollection fetches a scene collection extracted from the video.
func (v *Video) GetSceneCollection(ctx context.Context, id string) (*SceneCollection, error) {
	data, err := v.conn.client.Get(ctx, v.path(PathScenes, id))
	if err != nil {
		return nil, err
	}

	sc := &SceneCollection{conn: v.conn}
	if err := decodePayload(data, sc); err != nil {
		return nil, err
	}
	if sc.VideoID == "" {
		sc.VideoID = v.ID
	}
	return sc, nil
}

// AddSubtitle burns subtitles into a new stream of the video. A nil style
// uses [DefaultSubtitleStyle].
func (v *Video) AddSubtitle(ctx context.Context, style *SubtitleStyle) (string, error) {
	if style == nil {
		style = DefaultSubtitleStyle()
	}

	data, err := v.conn.client.Post(ctx, v.path(PathWorkflow), map[string]any{
		"type":           workflowAddSubtitles,
		"subtitle_style": style,
	})
	if err != nil {
		return "", err
	}
	return decodeStreamURL(data)
}

// InsertVideo returns a stream of this video with other spliced in at
// timestamp seconds. A timestamp past the end appends other.
func (v *Video) InsertVideo(ctx context.Context, other *Video, timestamp float64) (string, error) {
	if other == nil {
		return "", &Error{Message: "video to insert is required"}
	}

	length := float64(v.Length)
	if timestamp > length {
		timestamp = length
	}
	if timestamp < 0 {
		timestamp = 0
	}

	parts := []compileEntry{
		{VideoID: v.ID, CollectionID: v.CollectionID, Shots: []Segment{{Start: 0, End: timestamp}}},
		{VideoID: other.ID, CollectionID: v.CollectionID, Shots: []Segment{{Start: 0, End: float64(other.Length)}}},
		{VideoID: v.ID, CollectionID: v.CollectionID, Shots: []Segment{{Start: timestamp, End: length}}},
	}

	data, err := v.conn.client.Post(ctx, PathCompile, parts)
	if err != nil {
		return "", err
	}
	return decodeStreamURL(data)
}

// PlayURL returns the hosted player URL for the video's stream.
func (v *Video) PlayURL() string {
	return playURL(v.conn.playerURL, v.StreamURL)
}

func playURL(player, stream string) string {
	if player == "" {
		player = DefaultPlayerURL
	}
	return player + "?" + url.Values{"url": {stream}}.Encode()
}

// compileEntry is one element of a compile request.
type compileEntry struct {
	VideoID      string    `json:"video_id"`
	CollectionID string    `json:"collection_id"`
	Shots        []Segment `json:"shots"`
}

func decodeStreamURL(data json.RawMessage) (string, error) {
	var payload struct {
		StreamURL string `json:"stream_url"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return "", err
	}
	return payload.StreamURL, nil
}

// nullable maps an unset optional string to JSON null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func extractionConfigOrEmpty(cfg *SceneExtractionConfig) any {
	if cfg == nil {
		return map[string]any{}
	}
	return cfg
}

// Audio is an uploaded audio file.
type Audio struct {
	conn *Connection

	ID           string  `json:"id"`
	CollectionID string  `json:"collection_id"`
	Name         string  `json:"name,omitempty"`
	Length       Seconds `json:"length"`
}

func (a *Audio) MediaID() string { return a.ID }

// Delete deletes the audio file.
func (a *Audio) Delete(ctx context.Context) error {
	_, err := a.conn.client.Delete(ctx, joinPath(PathAudio, a.ID), WithQueryParam("collection_id", a.CollectionID))
	return err
}

// Image is an uploaded image.
type Image struct {
	conn *Connection

	ID           string `json:"id"`
	CollectionID string `json:"collection_id"`
	Name         string `json:"name,omitempty"`
	URL          string `json:"url,omitempty"`
}

func (i *Image) MediaID() string { return i.ID }

// Delete deletes the image.
func (i *Image) Delete(ctx context.Context) error {
	_, err := i.conn.client.Delete(ctx, joinPath(PathImage, i.ID), WithQueryParam("collection_id", i.CollectionID))
	return err
}
