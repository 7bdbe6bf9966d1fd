package htmltree_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	main "github.com/fdkevin0/htmltree"
)

func TestPageStoreSaveLoadList(t *testing.T) {
	store := main.NewPageStore(filepath.Join(t.TempDir(), "pages"))

	fetchedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pages := []*main.Page{
		{URL: "https://b.example.com/", StatusCode: 200, ContentType: "text/html", FetchedAt: fetchedAt, Body: []byte("<html>b</html>")},
		{URL: "https://a.example.com/", StatusCode: 200, FetchedAt: fetchedAt, Body: []byte("<html>a</html>")},
	}
	for _, page := range pages {
		if err := store.Save(page); err != nil {
			t.Fatalf("save %s: %v", page.URL, err)
		}
	}

	loaded, err := store.Load("https://b.example.com/")
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	if string(loaded.Body) != "<html>b</html>" || loaded.ContentType != "text/html" {
		t.Fatalf("unexpected loaded page: %+v", loaded)
	}
	if !loaded.FetchedAt.Equal(fetchedAt) {
		t.Fatalf("unexpected fetch time: %v", loaded.FetchedAt)
	}

	listed, err := store.List()
	if err != nil {
		t.Fatalf("list pages: %v", err)
	}
	if len(listed) != 2 || listed[0].URL != "https://a.example.com/" || listed[1].URL != "https://b.example.com/" {
		t.Fatalf("unexpected listing: %+v", listed)
	}
	if listed[0].Body != nil {
		t.Fatalf("listing should not load bodies")
	}

	if err := store.Remove("https://a.example.com/"); err != nil {
		t.Fatalf("remove page: %v", err)
	}
	if _, err := store.Load("https://a.example.com/"); err == nil {
		t.Fatal("expected removed page to be gone")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear store: %v", err)
	}
	if _, err := os.Stat(store.RootDir()); !os.IsNotExist(err) {
		t.Fatalf("expected store root to be removed, got %v", err)
	}
	if listed, err := store.List(); err != nil || len(listed) != 0 {
		t.Fatalf("expected empty listing after clear, got %v %v", listed, err)
	}
}

func TestPageStoreLoadMissingPage(t *testing.T) {
	store := main.NewPageStore(t.TempDir())
	if _, err := store.Load("https://missing.example.com/"); err == nil {
		t.Fatal("expected error for missing page")
	} else if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPageStoreRejectsEmptyURL(t *testing.T) {
	store := main.NewPageStore(t.TempDir())
	if err := store.Save(&main.Page{}); err == nil {
		t.Fatal("expected error for empty url")
	}
}
