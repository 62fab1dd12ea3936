package videodb

import "strings"

// Resource-relative API paths.
const (
	PathCollection     = "collection"
	PathVideo          = "video"
	PathAudio          = "audio"
	PathImage          = "image"
	PathUpload         = "upload"
	PathUploadURL      = "upload_url"
	PathStream         = "stream"
	PathThumbnail      = "thumbnail"
	PathTranscription  = "transcription"
	PathIndex          = "index"
	PathSearch         = "search"
	PathTitle          = "title"
	PathCompile        = "compile"
	PathWorkflow       = "workflow"
	PathDelete         = "delete"
	PathBilling        = "billing"
	PathUsage          = "usage"
	PathInvoices       = "invoices"
	PathDownload       = "download"
	PathScenes         = "scenes"
	PathScene          = "scene"
	PathRTStream       = "rtstream"
	PathStatus         = "status"
	PathGenerateScenes = "generate_scenes"
)

// joinPath builds a resource path from its segments.
func joinPath(segments ...string) string {
	return strings.Join(segments, "/")
}

// DefaultPlayerURL is the hosted player used by [Video.PlayURL].
const DefaultPlayerURL = "https://console.videodb.io/player"

const defaultCollectionID = "default"

// IndexType selects which index a search runs against.
type IndexType string

const (
	IndexTypeSpokenWord IndexType = "spoken_word"
	IndexTypeSemantic   IndexType = "semantic"
	IndexTypeScene      IndexType = "scene"
)

// SearchType selects the search algorithm.
type SearchType string

const (
	SearchTypeSemantic SearchType = "semantic"
	SearchTypeKeyword  SearchType = "keyword"
	SearchTypeScene    SearchType = "scene"
	SearchTypeLLM      SearchType = "llm"
)

// SceneModel names the vision model used to describe scenes.
type SceneModel string

const (
	SceneModelGPT4Vision SceneModel = "gpt4-vision"
	SceneModelGPT4o      SceneModel = "GPT4o"
)

// ExtractionType selects how frames are sampled from a video.
type ExtractionType string

const (
	ExtractionTypeSceneBased ExtractionType = "scene"
	ExtractionTypeTimeBased  ExtractionType = "time"
)

// MediaType is the kind of media being uploaded.
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
	MediaTypeImage MediaType = "image"
)

const workflowAddSubtitles = "add_subtitles"
