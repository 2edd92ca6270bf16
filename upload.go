package folio

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	uploadField  = "file"
	uploadPrefix = "uploads"

	msgUploadMissing  = "No file provided"
	msgUploadMultiple = "Only one file may be uploaded per request"
	msgUploadNotImage = "Only image files are allowed!"
	msgUploadDone     = "File uploaded successfully"
	msgUploadLimited  = "Too many API requests, please try again later."
)

// UploadedFile is an image accepted from a client, held in memory until it
// is stored.
type UploadedFile struct {
	OriginalName string
	MIMEType     string
	Size         int64
	Data         []byte
}

// readUpload extracts and validates the single file of an upload request.
func (a *App) readUpload(c echo.Context) (UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return UploadedFile{}, &ValidationError{Message: msgUploadMissing}
	}
	files := form.File[uploadField]
	switch {
	case len(files) == 0:
		return UploadedFile{}, &ValidationError{Message: msgUploadMissing}
	case len(files) > 1:
		return UploadedFile{}, &ValidationError{Message: msgUploadMultiple}
	}
	fh := files[0]

	mimeType := fh.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(mimeType, "image/") {
		return UploadedFile{}, &ValidationError{Message: msgUploadNotImage}
	}

	max := a.Config.Limits.MaxUploadBytes
	tooLarge := &ValidationError{Message: fmt.Sprintf("File too large (max %s)", formatSize(max))}
	if fh.Size > max {
		return UploadedFile{}, tooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return UploadedFile{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, max+1))
	if err != nil {
		return UploadedFile{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return UploadedFile{}, tooLarge
	}

	return UploadedFile{
		OriginalName: fh.Filename,
		MIMEType:     mimeType,
		Size:         int64(len(data)),
		Data:         data,
	}, nil
}

func (a *App) handleUpload(c echo.Context) error {
	file, err := a.readUpload(c)
	if err != nil {
		return err
	}

	key := a.objectKey(file.OriginalName)
	width, height, _ := probeDimensions(file.Data)

	ctx, cancel := context.WithTimeout(c.Request().Context(), a.Config.StorageTimeout.Duration)
	defer cancel()

	obj, err := a.objects.Put(ctx, key, bytes.NewReader(file.Data), file.Size, file.MIMEType)
	if err != nil {
		return &StorageError{Err: err}
	}
	c.Logger().Infof("upload: stored %s (%d bytes)", obj.Key, file.Size)

	return c.JSON(http.StatusOK, uploadResponse{
		apiResponse: okResponse(msgUploadDone),
		URL:         obj.URL,
		Key:         obj.Key,
		Width:       width,
		Height:      height,
	})
}

// objectKey names an upload uploads/<unix-millis>-<original basename>.
func (a *App) objectKey(original string) string {
	name := path.Base(strings.ReplaceAll(original, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("%s/%d-%s", uploadPrefix, a.now().UnixMilli(), name)
}

// probeDimensions reads the image header only. Formats it cannot decode
// report ok=false and are still accepted.
func probeDimensions(data []byte) (width, height int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
