package model

import (
	"reflect"
	"testing"
)

func TestPlaylist_AddEntry(t *testing.T) {
	p := NewPlaylist("PL1", "https://www.youtube.com/playlist?list=PL1")

	p.AddEntry(&PlaylistEntry{ID: "a", URL: "https://www.youtube.com/watch?v=a"})
	p.AddEntry(&PlaylistEntry{ID: "b", URL: "https://www.youtube.com/watch?v=b"})
	p.AddEntry(&PlaylistEntry{ID: "a", URL: "https://www.youtube.com/watch?v=a"})
	p.AddEntry(&PlaylistEntry{ID: "c"})
	p.AddEntry(nil)

	expected := []string{
		"https://www.youtube.com/watch?v=a",
		"https://www.youtube.com/watch?v=b",
	}
	if got := p.URLs(); !reflect.DeepEqual(got, expected) {
		t.Errorf("URLs() = %v, expected %v", got, expected)
	}
}
