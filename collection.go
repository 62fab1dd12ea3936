package videodb

import (
	"context"
	"fmt"
)

// Collection groups videos, audio and images.
type Collection struct {
	conn *Connection

	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

func (c *Collection) String() string {
	return fmt.Sprintf("Collection(id=%s, name=%s, description=%s, is_public=%t)", c.ID, c.Name, c.Description, c.IsPublic)
}

func (c *Collection) collectionQuery() RequestOption {
	return WithQueryParam("collection_id", c.ID)
}

// Delete deletes the collection.
func (c *Collection) Delete(ctx context.Context) error {
	_, err := c.conn.client.Delete(ctx, joinPath(PathCollection, c.ID))
	return err
}

// GetVideos lists the videos in the collection.
func (c *Collection) GetVideos(ctx context.Context) ([]*Video, error) {
	data, err := c.conn.client.Get(ctx, PathVideo, c.collectionQuery())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Videos []*Video `json:"videos"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return nil, err
	}

	for _, v := range payload.Videos {
		v.conn = c.conn
	}
	return payload.Videos, nil
}

// GetVideo fetches one video of the collection.
func (c *Collection) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	data, err := c.conn.client.Get(ctx, joinPath(PathVideo, videoID), c.collectionQuery())
	if err != nil {
		return nil, err
	}
	return c.conn.newVideo(data)
}

// DeleteVideo deletes one video of the collection.
func (c *Collection) DeleteVideo(ctx context.Context, videoID string) error {
	_, err := c.conn.client.Delete(ctx, joinPath(PathVideo, videoID), c.collectionQuery())
	return err
}

// GetAudios lists the audio files in the collection.
func (c *Collection) GetAudios(ctx context.Context) ([]*Audio, error) {
	data, err := c.conn.client.Get(ctx, PathAudio, c.collectionQuery())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Audios []*Audio `json:"audios"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return nil, err
	}

	for _, a := range payload.Audios {
		a.conn = c.conn
	}
	return payload.Audios, nil
}

// GetAudio fetches one audio file of the collection.
func (c *Collection) GetAudio(ctx context.Context, audioID string) (*Audio, error) {
	data, err := c.conn.client.Get(ctx, joinPath(PathAudio, audioID), c.collectionQuery())
	if err != nil {
		return nil, err
	}

	audio := &Audio{conn: c.conn}
	if err := decodePayload(data, audio); err != nil {
		return nil, err
	}
	return audio, nil
}

// DeleteAudio deletes one audio file of the collection.
func (c *Collection) DeleteAudio(ctx context.Context, audioID string) error {
	_, err := c.conn.client.Delete(ctx, joinPath(PathAudio, audioID), c.collectionQuery())
	return err
}

// GetImages lists the images in the collection.
func (c *Collection) GetImages(ctx context.Context) ([]*Image, error) {
	data, err := c.conn.client.Get(ctx, PathImage, c.collectionQuery())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Images []*Image `json:"images"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return nil, err
	}

	for _, img := range payload.Images {
		img.conn = c.conn
	}
	return payload.Images, nil
}

// GetImage fetches one image of the collection.
func (c *Collection) GetImage(ctx context.Context, imageID string) (*Image, error) {
	data, err := c.conn.client.Get(ctx, joinPath(PathImage, imageID), c.collectionQuery())
	if err != nil {
		return nil, err
	}

	img := &Image{conn: c.conn}
	if err := decodePayload(data, img); err != nil {
		return nil, err
	}
	return img, nil
}

// DeleteImage deletes one image of the collection.
func (c *Collection) DeleteImage(ctx context.Context, imageID string) error {
	_, err := c.conn.client.Delete(ctx, joinPath(PathImage, imageID), c.collectionQuery())
	return err
}

// Search searches every video of the collection.
func (c *Collection) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	return c.conn.search(ctx, joinPath(PathCollection, c.ID, PathSearch), query, opts)
}

// SearchTitle finds videos whose title matches query.
func (c *Collection) SearchTitle(ctx context.Context, query string) ([]*Video, error) {
	data, err := c.conn.client.Post(ctx, joinPath(PathCollection, c.ID, PathSearch, PathTitle), map[string]any{
		"query":       query,
		"search_type": SearchTypeLLM,
	})
	if err != nil {
		return nil, err
	}

	var results []struct {
		Video *Video `json:"video"`
	}
	if err := decodePayload(data, &results); err != nil {
		return nil, err
	}

	videos := make([]*Video, 0, len(results))
	for _, r := range results {
		if r.Video == nil {
			continue
		}
		r.Video.conn = c.conn
		videos = append(videos, r.Video)
	}
	return videos, nil
}

// Upload uploads media into this collection. See [UploadRequest].
func (c *Collection) Upload(ctx context.Context, req UploadRequest) (Media, error) {
	return c.conn.upload(ctx, c.ID, req)
}

// MakePublic makes the collection publicly readable.
func (c *Collection) MakePublic(ctx context.Context) error {
	return c.setPublic(ctx, true)
}

// MakePrivate revokes public access to the collection.
func (c *Collection) MakePrivate(ctx context.Context) error {
	return c.setPublic(ctx, false)
}

func (c *Collection) setPublic(ctx context.Context, public bool) error {
	_, err := c.conn.client.Patch(ctx, joinPath(PathCollection, c.ID), map[string]any{"is_public": public})
	if err != nil {
		return err
	}
	c.IsPublic = public
	return nil
}

// GetRTStream fetches a real-time stream of the collection.
func (c *Collection) GetRTStream(ctx context.Context, id string) (*RTStream, error) {
	data, err := c.conn.client.Get(ctx, joinPath(PathRTStream, id))
	if err != nil {
		return nil, err
	}

	stream := &RTStream{conn: c.conn}
	if err := decodePayload(data, stream); err != nil {
		return nil, err
	}
	return stream, nil
}

// ListRTStreams lists the real-time streams of the collection.
func (c *Collection) ListRTStreams(ctx context.Context) ([]*RTStream, error) {
	data, err := c.conn.client.Get(ctx, PathRTStream, c.collectionQuery())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []*RTStream `json:"results"`
	}
	if err := decodePayload(data, &payload); err != nil {
		return nil, err
	}

	for _, s := range payload.Results {
		s.conn = c.conn
	}
	return payload.Results, nil
}
