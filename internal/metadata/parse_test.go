package metadata

import (
	"testing"

	"grabarr/internal/models"
)

const videoLine = `{"id":"abc123","title":"Test Video","duration":212.5,` +
	`"uploader":"Test Channel","view_count":1000,"upload_date":"20240115",` +
	`"thumbnails":[{"url":"https://i.ytimg.com/low.jpg"},{"url":"https://i.ytimg.com/high.jpg"}],` +
	`"formats":[` +
	`{"format_id":"140","resolution":"audio only","acodec":"mp4a.40.2","vcodec":"none"},` +
	`{"format_id":"18","resolution":"640x360","acodec":"mp4a.40.2","vcodec":"avc1"},` +
	`{"format_id":"137","resolution":"1920x1080","acodec":"none","vcodec":"avc1"},` +
	`{"format_id":"313","resolution":"3840x2160","acodec":"none","vcodec":"vp9"}]}`

func TestParseNDJSONSingleVideo(t *testing.T) {
	t.Parallel()

	meta, err := ParseNDJSON([]byte(videoLine), "https://www.youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("ParseNDJSON error: %v", err)
	}
	if meta.Type != models.MetadataVideo {
		t.Errorf("type = %q, want video", meta.Type)
	}
	if meta.ID != "abc123" || meta.Title != "Test Video" {
		t.Errorf("id/title = %q/%q", meta.ID, meta.Title)
	}
	if meta.Thumbnail != "https://i.ytimg.com/high.jpg" {
		t.Errorf("thumbnail = %q, want the last entry", meta.Thumbnail)
	}
	if meta.Duration != 212.5 {
		t.Errorf("duration = %v, want 212.5", meta.Duration)
	}
	if meta.UploadedAt == nil || meta.UploadedAt.Year() != 2024 {
		t.Errorf("uploadedAt = %v, want a 2024 date", meta.UploadedAt)
	}
	if len(meta.Formats) != 4 {
		t.Errorf("formats = %d, want 4", len(meta.Formats))
	}
}

func TestParseNDJSONPlaylistObject(t *testing.T) {
	t.Parallel()

	input := `{"_type":"playlist","id":"PL1","title":"My List","playlist_count":2,` +
		`"channel":"List Channel","entries":[` +
		`{"id":"v1","title":"One","duration":60,"url":"https://youtu.be/v1"},` +
		`{"id":"v2","title":"Two","duration":90}]}`

	meta, err := ParseNDJSON([]byte(input), "https://www.youtube.com/playlist?list=PL1")
	if err != nil {
		t.Fatalf("ParseNDJSON error: %v", err)
	}
	if meta.Type != models.MetadataPlaylist {
		t.Errorf("type = %q, want playlist", meta.Type)
	}
	if meta.Uploader != "List Channel" {
		t.Errorf("uploader = %q, want channel fallback", meta.Uploader)
	}
	if meta.ItemCount != 2 || len(meta.Items) != 2 {
		t.Errorf("itemCount/items = %d/%d, want 2/2", meta.ItemCount, len(meta.Items))
	}
	if meta.Items[1].URL != "https://www.youtube.com/watch?v=v2" {
		t.Errorf("item URL = %q, want synthesized watch URL", meta.Items[1].URL)
	}
}

func TestParseNDJSONSyntheticPlaylist(t *testing.T) {
	t.Parallel()

	input := `{"id":"v1","title":"One","thumbnail":"https://i.ytimg.com/v1.jpg"}` + "\n" +
		`{"id":"v2","title":"Two","webpage_url":"https://www.youtube.com/watch?v=v2"}` + "\n"

	meta, err := ParseNDJSON([]byte(input), "https://www.youtube.com/@chan/videos")
	if err != nil {
		t.Fatalf("ParseNDJSON error: %v", err)
	}
	if meta.Type != models.MetadataPlaylist {
		t.Errorf("type = %q, want playlist", meta.Type)
	}
	if meta.ID != "synthetic_playlist" {
		t.Errorf("id = %q, want synthetic_playlist", meta.ID)
	}
	if meta.Title != "Playlist (2 videos)" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Thumbnail != "https://i.ytimg.com/v1.jpg" {
		t.Errorf("thumbnail = %q, want first item's", meta.Thumbnail)
	}
	if meta.Items[1].URL != "https://www.youtube.com/watch?v=v2" {
		t.Errorf("item URL = %q, want webpage_url", meta.Items[1].URL)
	}
}

func TestParseNDJSONSkipsGarbageLines(t *testing.T) {
	t.Parallel()

	input := "WARNING: something\n" + videoLine + "\n"
	meta, err := ParseNDJSON([]byte(input), "u")
	if err != nil {
		t.Fatalf("ParseNDJSON error: %v", err)
	}
	if meta.Type != models.MetadataVideo {
		t.Errorf("type = %q, want video", meta.Type)
	}
}

func TestParseNDJSONEmpty(t *testing.T) {
	t.Parallel()

	if _, err := ParseNDJSON([]byte("\n\n"), "u"); err == nil {
		t.Error("expected error for empty output")
	}
}

func TestAvailableQualities(t *testing.T) {
	t.Parallel()

	meta, err := ParseNDJSON([]byte(videoLine), "u")
	if err != nil {
		t.Fatal(err)
	}

	got := AvailableQualities(meta)
	want := []models.QualityOption{
		{Quality: "2160p", HasAudio: false},
		{Quality: "1080p", HasAudio: false},
		{Quality: "360p", HasAudio: true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d options, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAvailableQualitiesPlaylistEmpty(t *testing.T) {
	t.Parallel()

	got := AvailableQualities(&models.VideoMetadata{Type: models.MetadataPlaylist})
	if len(got) != 0 {
		t.Errorf("playlist qualities = %v, want empty", got)
	}
}
