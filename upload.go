package videodb

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// UploadRequest describes media to upload. Exactly one of FilePath and URL
// must be set.
type UploadRequest struct {
	FilePath    string
	URL         string
	MediaType   MediaType
	Name        string
	Description string
	CallbackURL string
}

// StreamingConfig configures the streaming service a new video is registered
// with after upload.
type StreamingConfig struct {
	APIURL          string
	UserID          string
	SegmentDuration int
	SegmentType     string
}

type registerUploadRequest struct {
	URL         string    `json:"url"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	CallbackURL string    `json:"callback_url,omitempty"`
	MediaType   MediaType `json:"media_type,omitempty"`
}

// upload stores the file (if any) at a presigned URL, registers the media
// with the collection and returns it as a [Video], [Audio] or [Image]. The
// result is nil when the server accepted the upload for background
// processing or returned an unknown media kind.
func (c *Connection) upload(ctx context.Context, collectionID string, req UploadRequest) (Media, error) {
	if req.FilePath == "" && req.URL == "" {
		return nil, &Error{Message: "either file path or url is required"}
	}
	if req.FilePath != "" && req.URL != "" {
		return nil, &Error{Message: "only one of file path or url is allowed"}
	}

	mediaURL := req.URL
	name := req.Name

	if req.FilePath != "" {
		if name == "" {
			name = nameFromPath(req.FilePath)
		}

		uploadURL, err := c.storeFile(ctx, collectionID, req.FilePath, name)
		if err != nil {
			return nil, err
		}
		mediaURL = uploadURL
	}

	data, err := c.client.Post(ctx, joinPath(PathCollection, collectionID, PathUpload), registerUploadRequest{
		URL:         mediaURL,
		Name:        name,
		Description: req.Description,
		CallbackURL: req.CallbackURL,
		MediaType:   req.MediaType,
	})
	if err != nil {
		return nil, err
	}

	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	return c.newMedia(ctx, data, mediaURL)
}

func (c *Connection) storeFile(ctx context.Context, collectionID, path, name string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &Error{Message: "File not found", Err: err}
		}
		return "", &Error{Message: "cannot read file", Err: err}
	}

	data, err := c.client.Get(ctx, joinPath(PathCollection, collectionID, PathUploadURL), WithQueryParam("name", name))
	if err != nil {
		return "", err
	}

	var payload struct {
		UploadURL string `json:"upload_url"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return "", err
	}
	if payload.UploadURL == "" {
		return "", &Error{Message: "server returned no upload url"}
	}

	if err := c.client.uploadFile(ctx, payload.UploadURL, path); err != nil {
		return "", &Error{Message: "Error while uploading file", Err: err}
	}

	return payload.UploadURL, nil
}

func (c *Connection) newMedia(ctx context.Context, data json.RawMessage, mediaURL string) (Media, error) {
	var head struct {
		ID string `json:"id"`
	}
	if err := decodePayload(data, &head); err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(head.ID, "m-"):
		video, err := c.newVideo(data)
		if err != nil {
			return nil, err
		}
		c.registerStream(ctx, video, mediaURL)
		return video, nil

	case strings.HasPrefix(head.ID, "a-"):
		audio := &Audio{conn: c}
		if err := decodePayload(data, audio); err != nil {
			return nil, err
		}
		return audio, nil

	case strings.HasPrefix(head.ID, "img-"):
		img := &Image{conn: c}
		if err := decodePayload(data, img); err != nil {
			return nil, err
		}
		return img, nil
	}

	return nil, nil
}

// registerStream hands a new video to the streaming service when one is
// configured. Failures are logged and never fail the upload.
func (c *Connection) registerStream(ctx context.Context, video *Video, mediaURL string) {
	if c.streaming == nil {
		return
	}

	logger := c.client.options.requestLogger

	body, err := c.client.postJSON(ctx, strings.TrimRight(c.streaming.APIURL, "/")+"/"+PathUpload, map[string]any{
		"url":              mediaURL,
		"media_id":         video.ID,
		"user_id":          c.streaming.UserID,
		"segment_duration": c.streaming.SegmentDuration,
		"segment_type":     c.streaming.SegmentType,
	})
	if err != nil {
		logger.Warnf("streaming registration for %s failed: %v", video.ID, err)
		return
	}

	var payload struct {
		StreamURL string `json:"stream_url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warnf("streaming registration for %s returned an unreadable body: %v", video.ID, err)
		return
	}

	if payload.StreamURL != "" {
		video.StreamURL = payload.StreamURL
	}
}

// nameFromPath returns the file name without directory and extension.
func nameFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}
