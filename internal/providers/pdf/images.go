package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/smallbiznis/storefront/internal/cache"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/observability/tracing"
)

const maxImageBytes = 2 << 20

var ErrUnsupportedImage = errors.New("unsupported_image_type")

// Image is a decoded-enough header or footer image.
type Image struct {
	Bytes []byte
	Ext   extension.Type
}

// ImageLoader fetches branding images referenced by settings.
type ImageLoader interface {
	Load(ctx context.Context, url string) (*Image, error)
}

// NoImages always fails, so the renderer falls back to text blocks.
type NoImages struct{}

func (NoImages) Load(context.Context, string) (*Image, error) {
	return nil, errors.New("image loading disabled")
}

// HTTPImageLoader downloads images with a bounded wait and keeps them
// for the settings TTL.
type HTTPImageLoader struct {
	client  *http.Client
	timeout time.Duration
	ttl     time.Duration
	cache   cache.Cache[string, *Image]
}

func NewHTTPImageLoader(cfg config.Config) ImageLoader {
	return &HTTPImageLoader{
		client:  tracing.WrapHTTPClient(&http.Client{}),
		timeout: cfg.Invoice.ImageTimeout,
		ttl:     cfg.Invoice.SettingsTTL,
		cache:   cache.ForTTL[string, *Image](cfg.Invoice.SettingsTTL),
	}
}

func (l *HTTPImageLoader) Load(ctx context.Context, url string) (*Image, error) {
	if img, ok := l.cache.Get(url); ok {
		return img, nil
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, err
	}

	img, err := DetectImage(body)
	if err != nil {
		return nil, err
	}
	l.cache.Set(url, img, l.ttl)
	return img, nil
}

// DetectImage sniffs body and accepts PNG or JPEG.
func DetectImage(body []byte) (*Image, error) {
	mt := mimetype.Detect(body)
	switch {
	case mt.Is("image/png"):
		return &Image{Bytes: body, Ext: extension.Png}, nil
	case mt.Is("image/jpeg"):
		return &Image{Bytes: body, Ext: extension.Jpg}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}
}
