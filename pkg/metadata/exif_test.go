package metadata

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/spf13/afero"

	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/storage"
)

type pathRef string

func (p pathRef) Path() string { return string(p) }

type asciiField struct {
	tag   uint16
	value string
}

// tiffWithASCII builds a little-endian TIFF whose first IFD holds one ASCII tag
func tiffWithASCII(tag uint16, value string) []byte {
	return tiffWithFields(asciiField{tag, value})
}

// tiffWithFields builds a little-endian TIFF whose first IFD holds the given
// ASCII tags, in ascending tag order. Values must be longer than four bytes.
func tiffWithFields(fields ...asciiField) []byte {
	var buf bytes.Buffer
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(42))
	binary.Write(&buf, binary.LittleEndian, uint32(8))

	// IFD0 entries, then the next-IFD pointer, then the string payloads
	dataOffset := uint32(8 + 2 + 12*len(fields) + 4)
	binary.Write(&buf, binary.LittleEndian, uint16(len(fields)))
	var payload bytes.Buffer
	for _, f := range fields {
		data := append([]byte(f.value), 0)
		binary.Write(&buf, binary.LittleEndian, f.tag)
		binary.Write(&buf, binary.LittleEndian, uint16(2)) // ASCII
		binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
		binary.Write(&buf, binary.LittleEndian, dataOffset+uint32(payload.Len()))
		payload.Write(data)
	}
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.Write(payload.Bytes())

	return buf.Bytes()
}

func u16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func u32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }

func isoBox(typ string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	out := append(u32(uint32(8+len(body))), typ...)
	return append(out, body...)
}

func isoFullBox(typ string, version byte, payload ...[]byte) []byte {
	return isoBox(typ, append([]byte{version, 0, 0, 0}, bytes.Join(payload, nil)...))
}

// heicFile builds a minimal HEIF file with an image item and, when tiff is
// not nil, an Exif item stored in mdat or in meta/idat.
func heicFile(tiff []byte, inIdat bool) []byte {
	image := []byte("not really hevc")
	var exifItem []byte
	if tiff != nil {
		exifItem = bytes.Join([][]byte{u32(6), []byte("Exif\x00\x00"), tiff}, nil)
	}

	ftyp := isoBox("ftyp", []byte("heic"), u32(0), []byte("mif1heic"))
	hdlr := isoFullBox("hdlr", 0, u32(0), []byte("pict"), make([]byte, 12), []byte{0})

	build := func(mdatData uint32) []byte {
		infes := [][]byte{isoFullBox("infe", 2, u16(1), u16(0), []byte("hvc1"), []byte{0})}
		if exifItem != nil {
			infes = append(infes, isoFullBox("infe", 2, u16(2), u16(0), []byte("Exif"), []byte{0}))
		}
		iinf := isoFullBox("iinf", 0, u16(uint16(len(infes))), bytes.Join(infes, nil))

		// iloc version 1: 4-byte offsets and lengths, no base offset or index
		items := [][]byte{bytes.Join([][]byte{
			u16(1), u16(0), u16(0), u16(1), u32(mdatData), u32(uint32(len(image))),
		}, nil)}
		children := [][]byte{hdlr, iinf}
		if exifItem != nil {
			method, offset := uint16(0), mdatData+uint32(len(image))
			if inIdat {
				method, offset = 1, 0
				children = append(children, isoBox("idat", exifItem))
			}
			items = append(items, bytes.Join([][]byte{
				u16(2), u16(method), u16(0), u16(1), u32(offset), u32(uint32(len(exifItem))),
			}, nil))
		}
		iloc := isoFullBox("iloc", 1, []byte{0x44, 0x00}, u16(uint16(len(items))), bytes.Join(items, nil))
		children = append(children, iloc)
		return isoFullBox("meta", 0, children...)
	}

	meta := build(0)
	mdatData := uint32(len(ftyp) + len(meta) + 8)
	meta = build(mdatData)

	mdat := isoBox("mdat", image)
	if !inIdat {
		mdat = isoBox("mdat", image, exifItem)
	}
	return bytes.Join([][]byte{ftyp, meta, mdat}, nil)
}

func newProvider(t *testing.T, files map[string][]byte) *ExifProvider {
	t.Helper()
	mem := afero.NewMemMapFs()
	for p, content := range files {
		if err := afero.WriteFile(mem, p, content, 0644); err != nil {
			t.Fatalf("failed to create %s: %v", p, err)
		}
	}
	return NewExifProvider(storage.NewFS(mem), nil)
}

func TestExifProvider_CaptureTimestamp(t *testing.T) {
	p := newProvider(t, map[string][]byte{
		"/src/original.tif":  tiffWithASCII(0x9003, "2023:01:15 10:15:00"),
		"/src/modified.TIFF": tiffWithASCII(0x0132, "2021:06:01 08:00:00"),
		"/src/plain.jpg":     []byte("not really a jpeg"),
		"/src/clip.mov":      []byte("moov"),
	})
	ctx := context.Background()

	tests := []struct {
		path string
		want string
	}{
		{"/src/original.tif", "2023:01:15 10:15:00"},
		{"/src/modified.TIFF", "2021:06:01 08:00:00"},
		{"/src/plain.jpg", ""},
		{"/src/clip.mov", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := p.CaptureTimestamp(ctx, pathRef(tt.path))
			if err != nil {
				t.Fatalf("CaptureTimestamp() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CaptureTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExifProvider_UnreadableFile(t *testing.T) {
	p := newProvider(t, nil)

	if _, err := p.CaptureTimestamp(context.Background(), pathRef("/src/gone.jpg")); err == nil {
		t.Error("CaptureTimestamp() should fail when the file cannot be opened")
	}
}

func TestExifProvider_SkipsUnsupportedWithoutOpening(t *testing.T) {
	p := newProvider(t, nil)

	got, err := p.CaptureTimestamp(context.Background(), pathRef("/src/gone.mov"))
	if err != nil || got != "" {
		t.Errorf("CaptureTimestamp() = %q, %v; want \"\", nil", got, err)
	}
}

func TestExifProvider_PlaceholderDates(t *testing.T) {
	p := newProvider(t, map[string][]byte{
		"/src/zero_original.tif": tiffWithFields(
			asciiField{0x0132, "2021:06:01 08:00:00"},
			asciiField{0x9003, "0000:00:00 00:00:00"},
		),
		"/src/zero_digitized.tif": tiffWithFields(
			asciiField{0x9003, "0000:00:00 00:00:00"},
			asciiField{0x9004, "2022:03:04 05:06:07"},
		),
		"/src/blank.tif": tiffWithFields(
			asciiField{0x9003, "    :  :     :  :  "},
			asciiField{0x9004, "0000:00:00 00:00:00"},
		),
		"/src/garbage.tif": tiffWithASCII(0x9003, "yesterday afternoon"),
	})
	ctx := context.Background()

	tests := []struct {
		path string
		want string
	}{
		{"/src/zero_original.tif", "2021:06:01 08:00:00"},
		{"/src/zero_digitized.tif", "2022:03:04 05:06:07"},
		{"/src/blank.tif", ""},
		{"/src/garbage.tif", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := p.CaptureTimestamp(ctx, pathRef(tt.path))
			if err != nil {
				t.Fatalf("CaptureTimestamp() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CaptureTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExifProvider_HEIC(t *testing.T) {
	tiff := tiffWithASCII(0x9003, "2023:01:15 10:15:00")
	p := newProvider(t, map[string][]byte{
		"/src/IMG_0001.HEIC": heicFile(tiff, false),
		"/src/IMG_0002.heic": heicFile(tiff, true),
		"/src/IMG_0003.heic": heicFile(nil, false),
		"/src/IMG_0004.heif": []byte("truncated"),
	})
	ctx := context.Background()

	tests := []struct {
		path string
		want string
	}{
		{"/src/IMG_0001.HEIC", "2023:01:15 10:15:00"},
		{"/src/IMG_0002.heic", "2023:01:15 10:15:00"},
		{"/src/IMG_0003.heic", ""},
		{"/src/IMG_0004.heif", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := p.CaptureTimestamp(ctx, pathRef(tt.path))
			if err != nil {
				t.Fatalf("CaptureTimestamp() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CaptureTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeifExif_PlainReader(t *testing.T) {
	tiff := tiffWithASCII(0x0132, "2021:06:01 08:00:00")

	x, err := decodeHEIF(io.MultiReader(bytes.NewReader(heicFile(tiff, false))))
	if err != nil {
		t.Fatalf("decodeHEIF() error = %v", err)
	}
	tag, err := x.Get("DateTime")
	if err != nil {
		t.Fatalf("DateTime missing: %v", err)
	}
	if got, _ := tag.StringVal(); got != "2021:06:01 08:00:00" {
		t.Errorf("DateTime = %q", got)
	}
}

func TestNoneAndFunc(t *testing.T) {
	ctx := context.Background()

	if got, err := (None{}).CaptureTimestamp(ctx, pathRef("/a.jpg")); got != "" || err != nil {
		t.Errorf("None = %q, %v", got, err)
	}

	var p Provider = ProviderFunc(func(ctx context.Context, ref models.FileRef) (string, error) {
		return "ts:" + ref.Path(), nil
	})
	if got, _ := p.CaptureTimestamp(ctx, pathRef("/a.jpg")); got != "ts:/a.jpg" {
		t.Errorf("ProviderFunc = %q", got)
	}
}
