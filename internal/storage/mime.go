package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalidFile is wrapped by upload check failures.
var ErrInvalidFile = errors.New("invalid file")

// documentTypes are accepted for contract documents.
var documentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.oasis.opendocument.text",
	"image/png",
	"image/jpeg",
}

// CheckImage fails unless the upload both declares and contains an image.
func CheckImage(fh *multipart.FileHeader) error {
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return fmt.Errorf("%w: %s is not an image", ErrInvalidFile, fh.Filename)
	}
	mt, err := detect(fh)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%w: %s is not an image", ErrInvalidFile, fh.Filename)
	}
	return nil
}

// CheckDocument fails unless the upload is a known document type.
func CheckDocument(fh *multipart.FileHeader) error {
	if fh.Size == 0 {
		return fmt.Errorf("%w: the submitted file is empty", ErrInvalidFile)
	}
	mt, err := detect(fh)
	if err != nil {
		return err
	}
	if !mimetype.EqualsAny(mt.String(), documentTypes...) {
		return fmt.Errorf("%w: unsupported document type %s", ErrInvalidFile, mt.String())
	}
	return nil
}

func detect(fh *multipart.FileHeader) (*mimetype.MIME, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	return mt, nil
}
