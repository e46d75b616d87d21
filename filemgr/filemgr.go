package filemgr

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"tiffin/utils"

	"github.com/disintegration/imaging"
)

type EntityType string

const (
	EntityMenu EntityType = "menu"
	EntityChat EntityType = "chat"
	EntityUser EntityType = "user"
)

var uploadDirs = map[EntityType]string{
	EntityMenu: "static/menupic",
	EntityChat: "static/chatpic",
	EntityUser: "static/userpic",
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var (
	ErrInvalidExtension = errors.New("invalid file extension")
	ErrFileTooLarge     = errors.New("file size exceeds limit")
)

const maxImageBytes = 10 << 20

// SaveImage decodes, re-encodes and thumbnails an uploaded image, returning
// the public path of the saved original. The write happens before any caller
// persists a reference to it, so a stored URL always resolves.
func SaveImage(file *multipart.FileHeader, entity EntityType) (string, error) {
	if file.Size > maxImageBytes {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrInvalidExtension
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	dir, ok := uploadDirs[entity]
	if !ok {
		return "", fmt.Errorf("unsupported entity type %q", entity)
	}

	uniqueID := utils.GetUUID()
	fileName := uniqueID + ".jpg"
	originalPath := filepath.Join(dir, fileName)
	thumbDir := filepath.Join(dir, "thumb")
	thumbnailPath := filepath.Join(thumbDir, fileName)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	if err := imaging.Save(img, originalPath); err != nil {
		return "", fmt.Errorf("failed to save original image: %w", err)
	}

	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, thumbnailPath); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/" + filepath.ToSlash(originalPath), nil
}

// SaveFormImage saves the first file under the given form key, if any.
// Returns ("", nil) when the form carries no file: absence of an image is a
// normal case, not an error.
func SaveFormImage(form *multipart.Form, key string, entity EntityType) (string, error) {
	if form == nil || form.File == nil {
		return "", nil
	}
	files := form.File[key]
	if len(files) == 0 {
		return "", nil
	}
	return SaveImage(files[0], entity)
}
