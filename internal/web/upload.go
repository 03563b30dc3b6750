package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
)

// ErrMissingFile reports a multipart request without the expected file part.
var ErrMissingFile = errors.New("file is required")

// MaxUploadBytes bounds every uploaded document and picture.
const MaxUploadBytes = 16 << 20

// ReadFormFile loads one uploaded file into memory.
func ReadFormFile(c *fiber.Ctx, field string) ([]byte, *multipart.FileHeader, error) {
	header, err := c.FormFile(field)
	if err != nil || header == nil {
		return nil, nil, fmt.Errorf("%s: %w", field, ErrMissingFile)
	}
	if header.Size > MaxUploadBytes {
		return nil, header, fmt.Errorf("%s is larger than %d bytes", field, MaxUploadBytes)
	}

	file, err := header.Open()
	if err != nil {
		return nil, header, fmt.Errorf("open %s: %w", field, err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return nil, header, fmt.Errorf("read %s: %w", field, err)
	}
	return content, header, nil
}
