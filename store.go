package htmltree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

const (
	pageFileName     = "page.html"
	metadataFileName = "metadata.toml"
)

// PageStore manages fetched pages in the user data directory.
type PageStore struct {
	rootDir string
}

// NewPageStore creates a page store under the given root directory.
func NewPageStore(rootDir string) *PageStore {
	return &PageStore{rootDir: rootDir}
}

// RootDir returns the root directory of the store.
func (ps *PageStore) RootDir() string {
	return ps.rootDir
}

// EnsureRoot creates the root directory if missing.
func (ps *PageStore) EnsureRoot() error {
	if ps == nil {
		return fmt.Errorf("page store is nil")
	}
	if ps.rootDir == "" {
		return fmt.Errorf("page store root dir is empty")
	}
	return os.MkdirAll(ps.rootDir, 0755)
}

// PageDir returns the directory path for one URL.
func (ps *PageStore) PageDir(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return filepath.Join(ps.rootDir, hex.EncodeToString(sum[:])[:16])
}

// Save writes the page body and its metadata.
func (ps *PageStore) Save(page *Page) error {
	if page == nil || page.URL == "" {
		return fmt.Errorf("page url is empty")
	}
	if err := ps.EnsureRoot(); err != nil {
		return err
	}

	dir := ps.PageDir(page.URL)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create page dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, pageFileName), page.Body, 0644); err != nil {
		return fmt.Errorf("failed to write page body: %w", err)
	}
	metadata, err := toml.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode page metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), metadata, 0644); err != nil {
		return fmt.Errorf("failed to write page metadata: %w", err)
	}
	return nil
}

// Load reads a stored page by URL.
func (ps *PageStore) Load(pageURL string) (*Page, error) {
	if ps == nil {
		return nil, fmt.Errorf("page store is nil")
	}
	if pageURL == "" {
		return nil, fmt.Errorf("page url is empty")
	}

	dir := ps.PageDir(pageURL)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("page %s not found in local store", pageURL)
		}
		return nil, fmt.Errorf("failed to stat page dir: %w", err)
	}

	page, err := readMetadata(filepath.Join(dir, metadataFileName))
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(filepath.Join(dir, pageFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read page body from store: %w", err)
	}
	page.Body = body
	return page, nil
}

// List returns the metadata of all stored pages sorted by URL.
func (ps *PageStore) List() ([]*Page, error) {
	entries, err := os.ReadDir(ps.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read page store: %w", err)
	}

	var pages []*Page
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		page, err := readMetadata(filepath.Join(ps.rootDir, entry.Name(), metadataFileName))
		if err != nil {
			continue
		}
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].URL < pages[j].URL })
	return pages, nil
}

// Remove deletes one stored page.
func (ps *PageStore) Remove(pageURL string) error {
	if err := os.RemoveAll(ps.PageDir(pageURL)); err != nil {
		return fmt.Errorf("failed to remove page: %w", err)
	}
	return nil
}

// Clear deletes every stored page.
func (ps *PageStore) Clear() error {
	if ps.rootDir == "" {
		return fmt.Errorf("page store root dir is empty")
	}
	if err := os.RemoveAll(ps.rootDir); err != nil {
		return fmt.Errorf("failed to clear page store: %w", err)
	}
	return nil
}

func readMetadata(path string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata from store: %w", err)
	}
	var page Page
	if err := toml.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode metadata from store: %w", err)
	}
	return &page, nil
}
