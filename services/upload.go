package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	MaxUploadSize = 15 * 1024 * 1024 // 15MB
)

var (
	ErrFileTooLarge     = errors.New("file size exceeds the maximum limit of 15MB")
	ErrFileTypeRejected = errors.New("file type not allowed. Accepted formats: PDF, JPG, PNG, HEIC, DOC, DOCX")
	ErrFileEmpty        = errors.New("file is empty")
)

// allowedExtensions maps accepted extensions to the sniffed content type
// prefixes they may carry. HEIC and DOC are not recognized by the sniffer.
var allowedExtensions = map[string][]string{
	".pdf":  {"application/pdf"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".heic": nil,
	".doc":  nil,
	".docx": {"application/zip", "application/octet-stream"},
}

// ValidateDocumentUpload checks size, extension and magic bytes of an upload
func ValidateDocumentUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxUploadSize {
		return ErrFileTooLarge
	}
	if fileHeader.Size == 0 {
		return ErrFileEmpty
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	sniffable, ok := allowedExtensions[ext]
	if !ok {
		return ErrFileTypeRejected
	}
	if sniffable == nil {
		return nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Read first 512 bytes to detect content type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	for _, prefix := range sniffable {
		if strings.HasPrefix(detected, prefix) {
			return nil
		}
	}
	return fmt.Errorf("%w: content does not match %s", ErrFileTypeRejected, ext)
}

// UploadContentType returns the declared content type or one derived from the name
func UploadContentType(fileHeader *multipart.FileHeader) string {
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return ContentTypeForName(fileHeader.Filename)
}
