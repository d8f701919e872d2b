// Package cover downloads and shrinks book cover thumbnails.
package cover

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/lepinkainen/mylibrary/internal/book"
)

// DefaultMaxWidth is used when no positive width is configured
const DefaultMaxWidth = 300

// httpClient is replaced in tests
var httpClient = &http.Client{}

// Filename returns the local file name for b's cover
func Filename(b *book.Book) string {
	name := b.ISBN13
	if name == "" {
		name = b.ID
	}
	return name + ".jpg"
}

// Download fetches b's cover, scales it down to maxWidth and saves it as
// JPEG in dir. Records without an image URL are skipped and yield "".
func Download(ctx context.Context, b *book.Book, dir string, maxWidth int) (string, error) {
	if b.ImageURL == nil {
		slog.Debug("Book has no cover image", "id", b.ID)
		return "", nil
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.ImageURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cover request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, b.ImageURL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode cover: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create covers directory: %w", err)
	}

	path := filepath.Join(dir, Filename(b))
	if err := imaging.Save(img, path, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save cover: %w", err)
	}

	slog.Info("Downloaded cover", "id", b.ID, "path", path)
	return path, nil
}
