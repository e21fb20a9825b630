// Package objectstore puts uploaded files into hosted or local object storage
// and returns their public URL.
package objectstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Object is a single file to store.
type Object struct {
	Key         string // e.g. images/1700000000000-a1b2c3.png
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store saves objects and returns their public URL.
type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
}

// Config selects a Store. Cloudinary is used when CloudinaryURL is set.
type Config struct {
	CloudinaryURL    string
	CloudinaryFolder string

	LocalDir     string
	LocalBaseURL string
}

// New builds the Store described by cfg.
func New(cfg Config) (Store, error) {
	if cfg.CloudinaryURL != "" {
		return NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	}
	if cfg.LocalDir == "" {
		return nil, errors.New("objectstore: no storage configured")
	}
	return &Local{Dir: cfg.LocalDir, BaseURL: cfg.LocalBaseURL}, nil
}

// NewKey returns a collision-resistant key under prefix keeping ext.
func NewKey(prefix, ext string) string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s-%s.%s", prefix, strconv.FormatInt(time.Now().UnixMilli(), 10), hex.EncodeToString(b[:]), ext)
}

// Local writes objects below Dir and serves them from BaseURL.
type Local struct {
	Dir     string
	BaseURL string
}

func (l *Local) Put(ctx context.Context, obj Object) (string, error) {
	key, err := cleanKey(obj.Key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, obj.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(l.BaseURL, "/") + "/" + key, nil
}

func cleanKey(key string) (string, error) {
	key = path.Clean("/" + key)[1:]
	if key == "" || strings.HasPrefix(key, "..") {
		return "", fmt.Errorf("objectstore: invalid key %q", key)
	}
	return key, nil
}

// Cloudinary uploads objects to a Cloudinary folder.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(url, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Put(ctx context.Context, obj Object) (string, error) {
	key, err := cleanKey(obj.Key)
	if err != nil {
		return "", err
	}
	resourceType := "raw"
	publicID := key
	if strings.HasPrefix(obj.ContentType, "image/") {
		// Cloudinary appends the format to image public IDs itself.
		resourceType = "image"
		publicID = strings.TrimSuffix(key, path.Ext(key))
	}
	res, err := c.cld.Upload.Upload(ctx, obj.Body, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}
