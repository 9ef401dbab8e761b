package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"mealplanner/internal/logger"
)

const (
	defaultThumbnailWidth = 300
	maxThumbnailWidth     = 1200
	maxImageBytes         = 10 << 20
)

// Thumbnail fetches a cached recipe's image and serves it resized as JPEG.
func (h *Handler) Thumbnail(c *gin.Context) {
	width := defaultThumbnailWidth
	if raw := c.Query("width"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxThumbnailWidth {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("width must be between 1 and %d", maxThumbnailWidth)})
			return
		}
		width = n
	}

	r, ok := h.lookupRecipe(c, c.Param("id"))
	if !ok {
		return
	}
	if r.ImageURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe has no image"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	data, err := h.fetchImage(ctx, r.ImageURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "Image download timed out after 15 seconds"})
			return
		}
		logger.Error("failed to fetch recipe image", zap.String("recipe_id", r.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("image fetch err: %s", err.Error())})
		return
	}

	thumb, err := resizeImage(data, uint(width))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/jpeg", thumb)
}

func (h *Handler) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// resizeImage scales the image to width, keeping the aspect ratio, and
// re-encodes it as JPEG. Images narrower than width are not enlarged.
func resizeImage(data []byte, width uint) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if uint(img.Bounds().Dx()) > width {
		img = resize.Resize(width, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
