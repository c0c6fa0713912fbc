package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/sdejongh/photoharvest/pkg/logging"
	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/storage"
	"github.com/sdejongh/photoharvest/pkg/timestamp"
)

// exifExtensions are the containers goexif can decode directly. Other files
// are not opened, which keeps large videos from being scanned for a JPEG marker.
var exifExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// heifExtensions carry their EXIF block as an item of the HEIF container
var heifExtensions = map[string]bool{
	".heic": true,
	".heif": true,
}

// maxBufferedHEIF bounds how much of a HEIF file is buffered when the
// backend reader does not support random access
const maxBufferedHEIF = 64 << 20

// dateFields are tried in order; DateTimeOriginal is when the shutter fired
var dateFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// ExifProvider reads capture dates from EXIF data. Timestamps are returned
// in timestamp.LayoutExif.
type ExifProvider struct {
	backend storage.Backend
	logger  logging.Logger
}

// NewExifProvider creates a provider reading files through backend
func NewExifProvider(backend storage.Backend, logger logging.Logger) *ExifProvider {
	return &ExifProvider{backend: backend, logger: logging.OrNull(logger)}
}

// CaptureTimestamp returns the first EXIF date field holding a real date.
// Camera placeholders such as "0000:00:00 00:00:00" count as missing.
func (p *ExifProvider) CaptureTimestamp(ctx context.Context, ref models.FileRef) (string, error) {
	path := ref.Path()
	ext := strings.ToLower(filepath.Ext(path))
	if !exifExtensions[ext] && !heifExtensions[ext] {
		return "", nil
	}

	r, err := p.backend.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read metadata of %s: %w", path, err)
	}
	defer r.Close()

	var x *exif.Exif
	if heifExtensions[ext] {
		x, err = decodeHEIF(r)
	} else {
		x, err = exif.Decode(r)
	}
	if x == nil {
		// No EXIF block is normal for screenshots and edited exports
		p.logger.Debug(ctx, "No EXIF data", logging.Fields{"path": path, "reason": errString(err)})
		return "", nil
	}

	for _, field := range dateFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		value, err := tag.StringVal()
		if err != nil {
			continue
		}
		value = strings.TrimSpace(value)
		if !validDate(value) {
			if value != "" {
				p.logger.Debug(ctx, "Ignore EXIF date", logging.Fields{"path": path, "field": string(field), "value": value})
			}
			continue
		}
		return value, nil
	}

	return "", nil
}

// validDate reports whether value is a real EXIF date
func validDate(value string) bool {
	t, err := time.Parse(timestamp.LayoutExif, value)
	return err == nil && t.Year() > 0
}

// decodeHEIF extracts and decodes the EXIF item of a HEIF file
func decodeHEIF(r io.Reader) (*exif.Exif, error) {
	ra, ok := r.(io.ReaderAt)
	if !ok {
		data, err := io.ReadAll(io.LimitReader(r, maxBufferedHEIF))
		if err != nil {
			return nil, err
		}
		ra = bytes.NewReader(data)
	}

	payload, err := heifExif(ra)
	if err != nil {
		return nil, err
	}
	return exif.Decode(bytes.NewReader(payload))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
