package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kilimobot/kilimobot/internal/vectordb"
)

// stubStore is a scriptable passage store.
type stubStore struct {
	results []vectordb.SearchResult
	err     error
	calls   int
}

func (s *stubStore) AddPassages(ctx context.Context, p []vectordb.Passage) error { return nil }
func (s *stubStore) Persist(ctx context.Context, dir string) error               { return nil }
func (s *stubStore) Load(ctx context.Context, dir string) error                  { return nil }
func (s *stubStore) Count() int                                                  { return len(s.results) }

func (s *stubStore) Search(ctx context.Context, query string, limit int, filter *vectordb.SearchFilter) ([]vectordb.SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func TestRetrieveLocalFirst(t *testing.T) {
	store := &stubStore{results: []vectordb.SearchResult{
		{Passage: vectordb.Passage{Content: "external passage about maize"}},
	}}
	r := NewRetriever(store, 10, false)

	got := r.Retrieve(context.Background(), "when do I plant maize", Context{Crop: "maize"})
	if len(got) < 2 {
		t.Fatalf("len(passages) = %d, want local + external", len(got))
	}
	if !strings.Contains(got[0], "Maize planting") {
		t.Errorf("first passage should be local, got %q", got[0])
	}
	if got[len(got)-1] != "external passage about maize" {
		t.Errorf("external passage should come after local ones, got %q", got[len(got)-1])
	}
}

func TestRetrieveExternalFailureIsSilent(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	r := NewRetriever(store, 10, false)

	got := r.Retrieve(context.Background(), "when do I plant maize", Context{Crop: "maize"})
	if len(got) == 0 {
		t.Fatal("local passages should survive an external failure")
	}
	if store.calls != 1 {
		t.Errorf("store called %d times, want 1", store.calls)
	}
}

func TestRetrieveDisabledSkipsExternal(t *testing.T) {
	store := &stubStore{results: []vectordb.SearchResult{
		{Passage: vectordb.Passage{Content: "external"}},
	}}
	r := NewRetriever(store, 10, true)

	got := r.Retrieve(context.Background(), "maize planting", Context{})
	for _, p := range got {
		if p == "external" {
			t.Error("disabled retriever should not return external passages")
		}
	}
	if store.calls != 0 {
		t.Errorf("store called %d times, want 0", store.calls)
	}
}

func TestRetrieveFallbackNeverEmpty(t *testing.T) {
	r := NewRetriever(nil, 10, false)

	got := r.Retrieve(context.Background(), "zxqw nothing matches this", Context{})
	if len(got) == 0 {
		t.Fatal("retrieve must never return an empty set")
	}
}

func TestRetrieveCapsPassages(t *testing.T) {
	store := &stubStore{results: []vectordb.SearchResult{
		{Passage: vectordb.Passage{Content: "e1"}},
		{Passage: vectordb.Passage{Content: "e2"}},
		{Passage: vectordb.Passage{Content: "e3"}},
	}}
	r := NewRetriever(store, 2, false)

	got := r.Retrieve(context.Background(), "maize pests with holes in leaves", Context{Crop: "maize"})
	if len(got) > 2 {
		t.Errorf("len(passages) = %d, want <= 2", len(got))
	}
}

func TestPlantingCalendar(t *testing.T) {
	e, ok := PlantingCalendar("Maize")
	if !ok {
		t.Fatal("maize should have a calendar entry")
	}
	if e.Spacing == "" || e.PlantingMonths == "" {
		t.Error("calendar entry incomplete")
	}
	if _, ok := PlantingCalendar("dragonfruit"); ok {
		t.Error("unknown crop should have no entry")
	}
}

func TestPestsMatching(t *testing.T) {
	got := PestsMatching("my maize leaves have ragged holes", "maize")
	if len(got) == 0 {
		t.Fatal("symptom text should match a pest")
	}
	if got[0].Name != "fall armyworm" {
		t.Errorf("matched %q, want fall armyworm", got[0].Name)
	}

	// Crop fallback with no symptom mention.
	got = PestsMatching("problems with my beans", "beans")
	if len(got) == 0 {
		t.Error("crop fallback should return the crop's pests")
	}
}

func TestLivestockFor(t *testing.T) {
	e, ok := LivestockFor("my cow is not eating")
	if !ok {
		t.Fatal("cow should match dairy cattle")
	}
	if e.Animal != "dairy cattle" {
		t.Errorf("Animal = %q, want dairy cattle", e.Animal)
	}
}
