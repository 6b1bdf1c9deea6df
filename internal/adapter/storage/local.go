package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// sniffLen is how many leading bytes http.DetectContentType inspects.
const sniffLen = 512

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// LocalStore keeps receipt files in a directory on the local filesystem.
// A handle is the generated file name inside that directory.
type LocalStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory files are stored in.
func (s *LocalStore) Dir() string { return s.dir }

// Ping reports whether the upload directory is still a usable directory.
func (s *LocalStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat upload dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("upload dir %s is not a directory", s.dir)
	}
	return nil
}

// Save validates and stores an upload. declaredType is the content type the
// client sent; the stored bytes must sniff to the same image type.
func (s *LocalStore) Save(ctx context.Context, r io.Reader, declaredType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(declaredType))]
	if !ok {
		return "", domain.NewValidationError("receipt", "Only JPEG and PNG images are allowed")
	}

	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(head) == 0 {
		return "", domain.NewValidationError("receipt", "Receipt file is empty")
	}
	if _, ok := allowedTypes[http.DetectContentType(head)]; !ok {
		return "", domain.NewValidationError("receipt", "Only JPEG and PNG images are allowed")
	}

	handle := uuid.New().String() + ext
	path := filepath.Join(s.dir, handle)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(br, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("write receipt file: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("close receipt file: %w", closeErr)
	case n > s.maxBytes:
		_ = os.Remove(path)
		return "", domain.NewValidationError("receipt", fmt.Sprintf("Receipt file exceeds %d bytes", s.maxBytes))
	}

	return handle, nil
}

// Delete removes a stored file. Deleting a missing handle is not an error.
func (s *LocalStore) Delete(_ context.Context, handle string) error {
	name, err := s.resolve(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete receipt %s: %w", handle, err)
	}
	return nil
}

// resolve maps a handle to a path, rejecting anything that is not a plain
// file name in the store directory.
func (s *LocalStore) resolve(handle string) (string, error) {
	base := filepath.Base(handle)
	if base == "." || base == "/" || base == ".." || base != handle {
		return "", fmt.Errorf("invalid receipt handle %q", handle)
	}
	return filepath.Join(s.dir, base), nil
}

// URL builds the public address of a stored receipt.
func URL(publicBaseURL, handle string) string {
	if handle == "" {
		return ""
	}
	return strings.TrimRight(publicBaseURL, "/") + "/uploads/" + filepath.Base(handle)
}
