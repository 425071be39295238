package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ObjectStore defines what we need from the storage backend.
type ObjectStore interface {
	Put(ctx context.Context, objectPath, contentType string, data []byte) error
	Get(ctx context.Context, objectPath string) ([]byte, string, error)
}

// HTTPStore is an ObjectStore backed by the storage HTTP API.
type HTTPStore struct {
	BaseURL   string
	SecretKey string
	Bucket    string
	Client    *http.Client
}

func (s *HTTPStore) httpClient() *http.Client {
	if s.Client == nil {
		s.Client = &http.Client{Timeout: 15 * time.Second}
	}
	return s.Client
}

func (s *HTTPStore) objectURL(objectPath string) (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("storage: STORAGE_URL is not set")
	}
	if s.SecretKey == "" {
		return "", fmt.Errorf("storage: STORAGE_SECRET_KEY is not set")
	}
	base := strings.TrimRight(s.BaseURL, "/")
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", base, s.Bucket, objectPath), nil
}

func (s *HTTPStore) Put(ctx context.Context, objectPath, contentType string, data []byte) error {
	url, err := s.objectURL(objectPath)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.SecretKey)
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage error: status %d body: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (s *HTTPStore) Get(ctx context.Context, objectPath string) ([]byte, string, error) {
	url, err := s.objectURL(objectPath)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("apikey", s.SecretKey)
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrBlobNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("storage error: status %d body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// MemoryStore keeps objects in memory; used in dev mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	contentType string
	data        []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Put(_ context.Context, objectPath, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[objectPath] = memoryObject{contentType: contentType, data: cp}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, objectPath string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[objectPath]
	if !ok {
		return nil, "", ErrBlobNotFound
	}
	return obj.data, obj.contentType, nil
}

// Service encapsulates visitor image storage. It satisfies the photo
// uploader used by the roster editor.
type Service struct {
	Store ObjectStore
}

var fileNameSafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadVisitorImage stores a photo under the editor's temp key and returns
// the object path recorded on the roster entry.
func (s *Service) UploadVisitorImage(ctx context.Context, tempKey string, slot int, fileName, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	name := fileNameSafe.ReplaceAllString(path.Base(fileName), "-")
	if name == "" || name == "." {
		name = "photo"
	}
	objectPath := fmt.Sprintf("visitor-images/%s/%d-%d-%s", tempKey, slot, time.Now().UnixMilli(), name)
	if err := s.Store.Put(ctx, objectPath, contentType, data); err != nil {
		return "", err
	}
	return objectPath, nil
}

// UploadImage adapts UploadVisitorImage to the roster editor's interface.
func (s *Service) UploadImage(ctx context.Context, tempKey string, slot int, fileName, contentType string, data []byte) (string, error) {
	return s.UploadVisitorImage(ctx, tempKey, slot, fileName, contentType, data)
}

// FetchBlob retrieves a stored object by path.
func (s *Service) FetchBlob(ctx context.Context, objectPath string) ([]byte, string, error) {
	cleaned := path.Clean(strings.TrimPrefix(objectPath, "/"))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return nil, "", ErrBlobNotFound
	}
	return s.Store.Get(ctx, cleaned)
}
