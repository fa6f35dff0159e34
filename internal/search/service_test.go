package search

import "testing"

func TestSanitizeResultsDropsPrivateComments(t *testing.T) {
	results := []Result{
		{Type: ResultStory, ID: "story_1"},
		{Type: ResultComment, ID: "comment_1", IsPrivate: true},
		{Type: ResultComment, ID: "comment_2"},
	}

	got := sanitizeResults(results, false)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	for _, r := range got {
		if r.ID == "comment_1" {
			t.Fatal("private comment leaked into public results")
		}
	}
}

func TestSanitizeResultsKeepsPrivateForAdmin(t *testing.T) {
	results := []Result{
		{Type: ResultComment, ID: "comment_1", IsPrivate: true},
	}
	got := sanitizeResults(results, true)
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
}

func TestNonNilNormalizesNilSlice(t *testing.T) {
	if nonNil(nil) == nil {
		t.Fatal("nonNil(nil) returned nil")
	}
}

func TestSpecForIndex(t *testing.T) {
	for _, spec := range indexSpecs {
		got, ok := specForIndex(spec.uid)
		if !ok || got.rtype != spec.rtype {
			t.Fatalf("specForIndex(%q) = %+v ok=%v", spec.uid, got, ok)
		}
	}
	if _, ok := specForIndex("unknown"); ok {
		t.Fatal("unknown index resolved to a spec")
	}
}
