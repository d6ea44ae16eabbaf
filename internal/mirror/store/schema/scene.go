package schema

// SceneTable represents the 'mirror.scene' table.
type SceneTable struct {
	Table string

	ID             string
	Instance       string
	Title          string
	Code           string
	Date           string
	Details        string
	Director       string
	StudioID       string
	StudioInstance string
	Duration       string
	Path           string
	Codec          string
	Width          string
	Height         string
	Bitrate        string
	Size           string
	ScreenshotPath string
	PreviewPath    string
	SpritePath     string
	VTTPath        string
	StreamPath     string
	CaptionsPath   string
	PlayCount      string
	OCount         string
	Phash          string
	AllPhash       string
	InheritedTagIDs string
	UpdatedAt       string
	DeletedAt       string
}

// Scene is the schema definition for mirror.scene.
var Scene = SceneTable{
	Table:           "mirror.scene",
	ID:              "id",
	Instance:        "instance",
	Title:           "title",
	Code:            "code",
	Date:            "date",
	Details:         "details",
	Director:        "director",
	StudioID:        "studio_id",
	StudioInstance:  "studio_instance",
	Duration:        "duration",
	Path:            "path",
	Codec:           "codec",
	Width:           "width",
	Height:          "height",
	Bitrate:         "bitrate",
	Size:            "size",
	ScreenshotPath:  "screenshot_path",
	PreviewPath:     "preview_path",
	SpritePath:      "sprite_path",
	VTTPath:         "vtt_path",
	StreamPath:      "stream_path",
	CaptionsPath:    "captions_path",
	PlayCount:       "play_count",
	OCount:          "o_count",
	Phash:           "phash",
	AllPhash:        "all_phash",
	InheritedTagIDs: "inherited_tag_ids",
	UpdatedAt:       "updated_at",
	DeletedAt:       "deleted_at",
}

func (t SceneTable) Columns() []string {
	return []string{
		t.ID, t.Instance, t.Title, t.Code, t.Date, t.Details, t.Director,
		t.StudioID, t.StudioInstance, t.Duration, t.Path, t.Codec, t.Width,
		t.Height, t.Bitrate, t.Size, t.ScreenshotPath, t.PreviewPath,
		t.SpritePath, t.VTTPath, t.StreamPath, t.CaptionsPath, t.PlayCount,
		t.OCount, t.Phash, t.AllPhash, t.InheritedTagIDs, t.UpdatedAt, t.DeletedAt,
	}
}

// ClipTable represents the 'mirror.clip' table (scene markers).
type ClipTable struct {
	Table string

	ID                 string
	Instance           string
	SceneID            string
	SceneInstance      string
	Start              string
	End                string
	PrimaryTagID       string
	PrimaryTagInstance string
	PreviewPath        string
	ScreenshotPath     string
	StreamPath         string
	IsGenerated        string
	UpdatedAt          string
	DeletedAt          string
}

// Clip is the schema definition for mirror.clip.
var Clip = ClipTable{
	Table:              "mirror.clip",
	ID:                 "id",
	Instance:           "instance",
	SceneID:            "scene_id",
	SceneInstance:      "scene_instance",
	Start:              "start_seconds",
	End:                "end_seconds",
	PrimaryTagID:       "primary_tag_id",
	PrimaryTagInstance: "primary_tag_instance",
	PreviewPath:        "preview_path",
	ScreenshotPath:     "screenshot_path",
	StreamPath:         "stream_path",
	IsGenerated:        "is_generated",
	UpdatedAt:          "updated_at",
	DeletedAt:          "deleted_at",
}

func (t ClipTable) Columns() []string {
	return []string{
		t.ID, t.Instance, t.SceneID, t.SceneInstance, t.Start, t.End,
		t.PrimaryTagID, t.PrimaryTagInstance, t.PreviewPath, t.ScreenshotPath,
		t.StreamPath, t.IsGenerated, t.UpdatedAt, t.DeletedAt,
	}
}
