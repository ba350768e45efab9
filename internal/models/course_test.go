package models

import (
	"encoding/json"
	"testing"
)

// The lesson create/update API accepts the video link as "vidUrl"; the
// serialized lesson must echo it under the same key.
func TestLessonVideoURLJSONKey(t *testing.T) {
	data, err := json.Marshal(Lesson{VideoURL: "https://example.com/intro.mp4"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fields["vidUrl"] != "https://example.com/intro.mp4" {
		t.Errorf("Expected the video link under \"vidUrl\", got fields %v", fields)
	}
}
