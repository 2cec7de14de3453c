package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Folders under the configured root.
const (
	FolderProfiles = "profiles"
	FolderBlog     = "blog"
)

var ErrNotCloudinaryURL = errors.New("not a cloudinary upload url")

// Client wraps Cloudinary upload with optimization.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url string, err error)
	DeleteByURL(ctx context.Context, url string) error
}

const ImageWidth = 800

// BuildOptimizedImageURL returns a Cloudinary URL with transformations for optimized delivery.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_fill/%s",
		cloudName, width, publicID)
}

const imageEager = "q_auto,f_auto,w_800,c_fill"

var eagerAsyncFalse = false

type clientImpl struct {
	cloudName string
	root      string
	uploader  *uploader.API
}

// UploadImage uploads an image with eager optimizations and returns the optimized URL.
func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     path.Join(c.root, folder),
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", err
	}
	if result.Error.Message != "" {
		return "", errors.New(result.Error.Message)
	}
	if len(result.Eager) > 0 && result.Eager[0].SecureURL != "" {
		return result.Eager[0].SecureURL, nil
	}
	return BuildOptimizedImageURL(c.cloudName, result.PublicID, ImageWidth), nil
}

// DeleteByURL destroys the asset behind a delivery URL. URLs that are not Cloudinary
// uploads are ignored.
func (c *clientImpl) DeleteByURL(ctx context.Context, rawURL string) error {
	publicID, err := PublicIDFromURL(rawURL)
	if err != nil {
		return nil
	}
	_, err = c.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// PublicIDFromURL extracts "folder/name" from
// https://res.cloudinary.com/<cloud>/image/upload/[transformations/][v123/]folder/name.ext
func PublicIDFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.HasSuffix(u.Host, "cloudinary.com") {
		return "", ErrNotCloudinaryURL
	}
	_, rest, ok := strings.Cut(u.Path, "/upload/")
	if !ok || rest == "" {
		return "", ErrNotCloudinaryURL
	}
	parts := strings.Split(rest, "/")
	for len(parts) > 1 && !isVersion(parts[0]) && looksLikeTransform(parts[0]) {
		parts = parts[1:]
	}
	if len(parts) > 1 && isVersion(parts[0]) {
		parts = parts[1:]
	}
	id := strings.Join(parts, "/")
	id = strings.TrimSuffix(id, path.Ext(id))
	if id == "" {
		return "", ErrNotCloudinaryURL
	}
	return id, nil
}

// looksLikeTransform matches a transformation segment such as w_800 or q_auto,f_auto.
func looksLikeTransform(seg string) bool {
	for _, t := range strings.Split(seg, ",") {
		k, _, ok := strings.Cut(t, "_")
		if !ok || len(k) > 2 {
			return false
		}
	}
	return true
}

func isVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NewClientFromParams builds a Client from Cloudinary credentials. Uploads land under root.
func NewClientFromParams(cloudName, apiKey, apiSecret, root string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{
		cloudName: cloudName,
		root:      root,
		uploader:  up,
	}, nil
}
