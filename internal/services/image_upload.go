package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize caps a single post image.
const MaxImageSize = 10 << 20

// ImageDir is the directory under the media root that holds post images.
const ImageDir = "posts_img"

var (
	ErrImageTooLarge = errors.New("image is larger than 10 MB")
	ErrNotAnImage    = errors.New("file is not an image")
)

// ImageStore keeps uploaded post images on local disk under Root.
// Stored paths are relative to Root and use forward slashes so they can be
// served from /media/ as-is.
type ImageStore struct {
	Root string
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{Root: root}
}

// Save validates the upload and writes it as posts_img/<uuid><ext>.
func (s *ImageStore) Save(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	// Sniff the content; the client-sent Content-Type is not trusted.
	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(sniff[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotAnImage
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		switch contentType {
		case "image/jpeg":
			ext = ".jpg"
		case "image/png":
			ext = ".png"
		case "image/gif":
			ext = ".gif"
		case "image/webp":
			ext = ".webp"
		default:
			ext = ".img"
		}
	}

	rel := path.Join(ImageDir, uuid.NewString()+ext)
	dst := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(sniff[:n]); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	// One extra byte past the cap means the declared size lied.
	written, err := io.Copy(out, io.LimitReader(file, MaxImageSize-int64(n)+1))
	if err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if int64(n)+written > MaxImageSize {
		out.Close()
		os.Remove(dst)
		return "", ErrImageTooLarge
	}
	return rel, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *ImageStore) Remove(rel string) {
	if rel == "" {
		return
	}
	clean := path.Clean("/" + rel)[1:]
	if !strings.HasPrefix(clean, ImageDir+"/") {
		return
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove image %s: %v", rel, err)
	}
}
