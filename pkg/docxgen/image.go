package docxgen

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	imageRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	defaultImageMIMEType  = "image/png"
)

// imageFormat describes how an image payload is stored in the package.
type imageFormat struct {
	MIMEType  string
	Extension string
}

// detectImageFormat sniffs the payload's raster format. Payloads nothing
// recognizes are stored as PNG; they are never rejected.
func detectImageFormat(data []byte) imageFormat {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return imageFormat{MIMEType: defaultImageMIMEType, Extension: getImageExtension(defaultImageMIMEType)}
	}
	mimeType := "image/" + name
	return imageFormat{MIMEType: mimeType, Extension: getImageExtension(mimeType)}
}

// getImageExtension returns the file extension for a given MIME type
func getImageExtension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpeg"
	case "image/bmp":
		return "bmp"
	case "image/gif":
		return "gif"
	case "image/tiff":
		return "tiff"
	case "image/webp":
		return "webp"
	default:
		return "png" // default
	}
}

// imagePixelSize reads the pixel size from the image header.
func imagePixelSize(data []byte) (uint32, uint32, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, false
	}
	return uint32(cfg.Width), uint32(cfg.Height), true
}

// resolveImageSize fills in a zero width or height from the image header,
// keeping the aspect ratio when one side was given. Non-zero dimensions are
// returned unchanged, as are both zeros for payloads that cannot be sniffed.
func resolveImageSize(data []byte, width, height uint32) (uint32, uint32) {
	if width != 0 && height != 0 {
		return width, height
	}
	w, h, ok := imagePixelSize(data)
	if !ok {
		return width, height
	}
	switch {
	case width == 0 && height == 0:
		return w, h
	case width == 0:
		return uint32(uint64(height) * uint64(w) / uint64(h)), height
	default:
		return width, uint32(uint64(width) * uint64(h) / uint64(w))
	}
}

// generateImageFilename generates the media file name for the n-th image
func generateImageFilename(format imageFormat, index int) string {
	return fmt.Sprintf("image%d.%s", index, format.Extension)
}

// addImageRelationship adds a new image relationship and returns its ID
func addImageRelationship(rels *Relationships, target string) string {
	newID := getNextRelationshipID(rels)

	newRel := Relationship{
		ID:     newID,
		Type:   imageRelationshipType,
		Target: target,
	}

	rels.Relationship = append(rels.Relationship, newRel)
	return newID
}

// getNextRelationshipID generates the next available relationship ID
func getNextRelationshipID(rels *Relationships) string {
	maxID := 0

	for _, rel := range rels.Relationship {
		if strings.HasPrefix(rel.ID, "rId") {
			idStr := rel.ID[3:]
			if id, err := strconv.Atoi(idStr); err == nil && id > maxID {
				maxID = id
			}
		}
	}

	return fmt.Sprintf("rId%d", maxID+1)
}
