package handler

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/repository"
)

// ObjectReader opens stored objects for download.
type ObjectReader interface {
	Open(ctx context.Context, bucket, path string) (io.ReadCloser, int64, error)
}

// PhotoHandler serves the public URLs of uploaded listing images.
type PhotoHandler struct {
	Objects ObjectReader
	Bucket  string
}

func (h *PhotoHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/objects/:bucket/*path", h.DownloadObject)
}

// GET /api/objects/:bucket/*path
func (h *PhotoHandler) DownloadObject(c *gin.Context) {
	bucket := c.Param("bucket")
	path := strings.TrimPrefix(c.Param("path"), "/")
	if bucket != h.Bucket || path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}

	rc, size, err := h.Objects.Open(c.Request.Context(), bucket, path)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
		return
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)

	c.DataFromReader(http.StatusOK, size, contentType, br, map[string]string{
		"Cache-Control":       "public, max-age=3600",
		"Content-Disposition": "inline; filename=" + strconv.Quote(path[strings.LastIndex(path, "/")+1:]),
	})
}
