package videodb

import (
	"context"
	"fmt"
)

// Frame is one sampled image of a video.
type Frame struct {
	ImageURL    string  `json:"image_url,omitempty"`
	VideoID     string  `json:"video_id,omitempty"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Description string  `json:"description,omitempty"`
	FrameTime   float64 `json:"frame_time,omitempty"`
	FrameNo     int     `json:"frame_no,omitempty"`
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame(image_url=%s, video_id=%s, start=%v, end=%v, description=%s, frame_time=%v, frame_no=%d)",
		f.ImageURL, f.VideoID, f.Start, f.End, f.Description, f.FrameTime, f.FrameNo)
}

// Scene is a described time range of a video.
type Scene struct {
	ID          string  `json:"id,omitempty"`
	VideoID     string  `json:"video_id,omitempty"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Frames      []Frame `json:"frames,omitempty"`
	Description string  `json:"description,omitempty"`
}

// SceneExtractionConfig controls how scenes are cut from a video.
type SceneExtractionConfig struct {
	Time        int    `json:"time"`
	Threshold   int    `json:"threshold"`
	FrameCount  int    `json:"frame_count"`
	SelectFrame string `json:"select_frame"`
}

// DefaultSceneExtractionConfig returns the server's default extraction
// settings.
func DefaultSceneExtractionConfig() *SceneExtractionConfig {
	return &SceneExtractionConfig{
		Time:        5,
		Threshold:   20,
		FrameCount:  1,
		SelectFrame: "first",
	}
}

// SceneCollection is a set of scenes extracted from one video with one
// configuration.
type SceneCollection struct {
	conn *Connection

	ID      string                 `json:"id"`
	VideoID string                 `json:"video_id"`
	Config  *SceneExtractionConfig `json:"config,omitempty"`
	Scenes  []Scene                `json:"scenes,omitempty"`
}

// Delete deletes the scene collection.
func (s *SceneCollection) Delete(ctx context.Context) error {
	_, err := s.conn.client.Delete(ctx, joinPath(PathVideo, s.VideoID, PathScenes, s.ID))
	return err
}

// SubtitleStyle is the ASS style used by [Video.AddSubtitle].
type SubtitleStyle struct {
	FontName        string  `json:"font_name"`
	FontSize        float64 `json:"font_size"`
	PrimaryColour   string  `json:"primary_colour"`
	SecondaryColour string  `json:"secondary_colour"`
	OutlineColour   string  `json:"outline_colour"`
	BackColour      string  `json:"back_colour"`
	Bold            bool    `json:"bold"`
	Italic          bool    `json:"italic"`
	Underline       bool    `json:"underline"`
	StrikeOut       bool    `json:"strike_out"`
	ScaleX          float64 `json:"scale_x"`
	ScaleY          float64 `json:"scale_y"`
	Spacing         float64 `json:"spacing"`
	Angle           float64 `json:"angle"`
	BorderStyle     int     `json:"border_style"`
	Outline         float64 `json:"outline"`
	Shadow          float64 `json:"shadow"`
	Alignment       int     `json:"alignment"`
	MarginL         int     `json:"margin_l"`
	MarginR         int     `json:"margin_r"`
	MarginV         int     `json:"margin_v"`
}

// DefaultSubtitleStyle returns white Arial subtitles centered at the bottom.
func DefaultSubtitleStyle() *SubtitleStyle {
	return &SubtitleStyle{
		FontName:        "Arial",
		FontSize:        18,
		PrimaryColour:   "&H00FFFFFF",
		SecondaryColour: "&H000000FF",
		OutlineColour:   "&H00000000",
		BackColour:      "&H00000000",
		ScaleX:          1.0,
		ScaleY:          1.0,
		BorderStyle:     1,
		Outline:         1,
		Alignment:       2,
		MarginL:         10,
		MarginR:         10,
		MarginV:         10,
	}
}
