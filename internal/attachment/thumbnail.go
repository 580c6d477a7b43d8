package attachment

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"issueapi/internal/storage"
)

const (
	// ThumbSize is the edge length of the square thumbnail.
	ThumbSize    = 256
	thumbQuality = 78
	thumbExt     = ".jpg"
	// maxPixels bounds decoding of hostile images.
	maxPixels = 40_000_000
)

func thumbKey(key string) string {
	return ThumbDir + key + thumbExt
}

// DeriveThumbnail makes sure the thumbnail of the stored photo key exists and
// returns its URL. An existing thumbnail is left untouched.
func (s *Store) DeriveThumbnail(ctx context.Context, key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	url := s.URL(thumbKey(key))
	if ok, err := s.storage.Exists(ctx, thumbKey(key)); err == nil && ok {
		s.metrics.Thumbnail("exists")
		return url, nil
	}

	rc, _, err := s.storage.Get(ctx, key)
	if err != nil {
		s.metrics.Thumbnail("failed")
		return "", fmt.Errorf("read original: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, s.maxBytes+1))
	if err != nil {
		s.metrics.Thumbnail("failed")
		return "", fmt.Errorf("read original: %w", err)
	}
	if err := s.thumbnailFrom(ctx, key, data); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Store) thumbnailFrom(ctx context.Context, key string, data []byte) error {
	tk := thumbKey(key)
	if ok, err := s.storage.Exists(ctx, tk); err == nil && ok {
		s.metrics.Thumbnail("exists")
		return nil
	}
	out, err := renderThumbnail(data)
	if err != nil {
		s.metrics.Thumbnail("failed")
		return err
	}
	if _, err := s.storage.Put(ctx, tk, bytes.NewReader(out), storage.PutObjectOptions{
		Size:        int64(len(out)),
		ContentType: "image/jpeg",
	}); err != nil {
		s.metrics.Thumbnail("failed")
		return fmt.Errorf("store thumbnail: %w", err)
	}
	s.metrics.Thumbnail("created")
	s.log.Debug("thumbnail_created", zap.String("key", tk))
	return nil
}

// renderThumbnail center-crops the image to a square, scales it to ThumbSize
// and encodes it as JPEG.
func renderThumbnail(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("image dimensions %dx%d not supported", cfg.Width, cfg.Height)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, ThumbSize, ThumbSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverCrop(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// coverCrop returns the largest centered square inside b.
func coverCrop(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	side := min(w, h)
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
