package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HEIF files are ISO base media files. The EXIF block is an item of type
// "Exif" declared in meta/iinf and located by meta/iloc, either as file
// extents or inside meta/idat.

const (
	maxMetaBoxSize  = 4 << 20
	maxExifItemSize = 4 << 20
	maxBoxesScanned = 64
)

var (
	errNoExifItem = errors.New("no Exif item")
	errMalformed  = errors.New("malformed HEIF container")
)

type extent struct {
	offset uint64
	length uint64
}

type itemLocation struct {
	method     uint16 // 0 = file offset, 1 = idat offset
	baseOffset uint64
	extents    []extent
}

// heifExif returns the TIFF payload of the Exif item of a HEIF file
func heifExif(r io.ReaderAt) ([]byte, error) {
	meta, err := findTopLevelBox(r, "meta")
	if err != nil {
		return nil, err
	}
	if len(meta) < 4 {
		return nil, errMalformed
	}

	var (
		exifID   uint32
		found    bool
		location *itemLocation
		idat     []byte
	)
	locations := map[uint32]*itemLocation{}

	children := meta[4:]
	for len(children) > 0 {
		typ, body, rest, err := nextBox(children)
		if err != nil {
			return nil, err
		}
		children = rest

		switch typ {
		case "iinf":
			exifID, found, err = parseItemInfo(body)
		case "iloc":
			locations, err = parseItemLocations(body)
		case "idat":
			idat = body
		}
		if err != nil {
			return nil, err
		}
	}

	if !found {
		return nil, errNoExifItem
	}
	location = locations[exifID]
	if location == nil || len(location.extents) == 0 {
		return nil, fmt.Errorf("%w: Exif item has no location", errMalformed)
	}

	payload, err := readItem(r, location, idat)
	if err != nil {
		return nil, err
	}
	return tiffPayload(payload)
}

// tiffPayload strips the Exif item header down to the TIFF header
func tiffPayload(item []byte) ([]byte, error) {
	if len(item) < 4 {
		return nil, errMalformed
	}
	skip := binary.BigEndian.Uint32(item)
	item = item[4:]
	if uint64(skip) > uint64(len(item)) {
		return nil, errMalformed
	}
	item = item[skip:]
	item = bytes.TrimPrefix(item, []byte("Exif\x00\x00"))
	if len(item) < 8 {
		return nil, errMalformed
	}
	return item, nil
}

func readItem(r io.ReaderAt, loc *itemLocation, idat []byte) ([]byte, error) {
	var total uint64
	for _, e := range loc.extents {
		total += e.length
	}
	if total == 0 || total > maxExifItemSize {
		return nil, fmt.Errorf("%w: Exif item size %d", errMalformed, total)
	}

	out := make([]byte, 0, total)
	for _, e := range loc.extents {
		start := loc.baseOffset + e.offset
		switch loc.method {
		case 0:
			buf := make([]byte, e.length)
			if _, err := r.ReadAt(buf, int64(start)); err != nil {
				return nil, fmt.Errorf("failed to read Exif item: %w", err)
			}
			out = append(out, buf...)
		case 1:
			if start+e.length > uint64(len(idat)) {
				return nil, errMalformed
			}
			out = append(out, idat[start:start+e.length]...)
		default:
			return nil, fmt.Errorf("%w: construction method %d", errMalformed, loc.method)
		}
	}
	return out, nil
}

// findTopLevelBox returns the payload of the first top-level box of type typ
func findTopLevelBox(r io.ReaderAt, typ string) ([]byte, error) {
	var offset int64
	header := make([]byte, 16)

	for i := 0; i < maxBoxesScanned; i++ {
		n, err := r.ReadAt(header, offset)
		if n < 8 {
			if err == nil || err == io.EOF {
				break
			}
			return nil, err
		}

		size := uint64(binary.BigEndian.Uint32(header[0:4]))
		name := string(header[4:8])
		headerLen := uint64(8)
		toEOF := false
		switch size {
		case 0:
			toEOF = true
		case 1:
			if n < 16 {
				return nil, errMalformed
			}
			size = binary.BigEndian.Uint64(header[8:16])
			headerLen = 16
		}
		if !toEOF && size < headerLen {
			return nil, errMalformed
		}

		if name == typ {
			length := uint64(maxMetaBoxSize)
			if !toEOF {
				length = size - headerLen
				if length > maxMetaBoxSize {
					return nil, fmt.Errorf("%w: %s box too large", errMalformed, typ)
				}
			}
			body := make([]byte, length)
			n, err := r.ReadAt(body, offset+int64(headerLen))
			if uint64(n) < length && !(toEOF && err == io.EOF) {
				if err == nil || err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				return nil, fmt.Errorf("failed to read %s box: %w", typ, err)
			}
			return body[:n], nil
		}
		if toEOF {
			break
		}
		offset += int64(size)
	}
	return nil, fmt.Errorf("%w: no %s box", errMalformed, typ)
}

// nextBox splits the first box off b
func nextBox(b []byte) (typ string, body, rest []byte, err error) {
	if len(b) < 8 {
		return "", nil, nil, errMalformed
	}
	size := uint64(binary.BigEndian.Uint32(b[0:4]))
	typ = string(b[4:8])
	headerLen := uint64(8)
	switch size {
	case 0:
		size = uint64(len(b))
	case 1:
		if len(b) < 16 {
			return "", nil, nil, errMalformed
		}
		size = binary.BigEndian.Uint64(b[8:16])
		headerLen = 16
	}
	if size < headerLen || size > uint64(len(b)) {
		return "", nil, nil, errMalformed
	}
	return typ, b[headerLen:size], b[size:], nil
}

// fields reads big-endian integers from a box body
type fields struct {
	b   []byte
	err error
}

func (f *fields) uint(size int) uint64 {
	if f.err != nil {
		return 0
	}
	if size == 0 {
		return 0
	}
	if len(f.b) < size {
		f.err = errMalformed
		return 0
	}
	var v uint64
	for _, c := range f.b[:size] {
		v = v<<8 | uint64(c)
	}
	f.b = f.b[size:]
	return v
}

func (f *fields) fourCC() string {
	if f.err != nil {
		return ""
	}
	if len(f.b) < 4 {
		f.err = errMalformed
		return ""
	}
	s := string(f.b[:4])
	f.b = f.b[4:]
	return s
}

// parseItemInfo finds the Exif item in an iinf box
func parseItemInfo(body []byte) (uint32, bool, error) {
	f := &fields{b: body}
	version := f.uint(1)
	f.uint(3)
	count := f.uint(2)
	if version > 0 {
		count = count<<16 | f.uint(2)
	}
	if f.err != nil {
		return 0, false, f.err
	}

	entries := f.b
	for i := uint64(0); i < count && len(entries) > 0; i++ {
		typ, infe, rest, err := nextBox(entries)
		if err != nil {
			return 0, false, err
		}
		entries = rest
		if typ != "infe" {
			continue
		}

		e := &fields{b: infe}
		v := e.uint(1)
		e.uint(3)
		if v < 2 {
			continue
		}
		idSize := 2
		if v >= 3 {
			idSize = 4
		}
		id := e.uint(idSize)
		e.uint(2) // protection index
		itemType := e.fourCC()
		if e.err != nil {
			return 0, false, e.err
		}
		if itemType == "Exif" {
			return uint32(id), true, nil
		}
	}
	return 0, false, nil
}

// parseItemLocations decodes an iloc box
func parseItemLocations(body []byte) (map[uint32]*itemLocation, error) {
	f := &fields{b: body}
	version := f.uint(1)
	f.uint(3)
	sizes := f.uint(1)
	offsetSize, lengthSize := int(sizes>>4), int(sizes&0x0f)
	sizes = f.uint(1)
	baseOffsetSize, indexSize := int(sizes>>4), int(sizes&0x0f)
	if version == 0 {
		indexSize = 0
	}

	idSize := 2
	if version == 2 {
		idSize = 4
	}
	count := f.uint(idSize)

	locations := make(map[uint32]*itemLocation)
	for i := uint64(0); i < count && f.err == nil; i++ {
		id := uint32(f.uint(idSize))
		loc := &itemLocation{}
		if version == 1 || version == 2 {
			loc.method = uint16(f.uint(2) & 0x0f)
		}
		f.uint(2) // data reference index
		loc.baseOffset = f.uint(baseOffsetSize)

		extents := f.uint(2)
		for j := uint64(0); j < extents && f.err == nil; j++ {
			f.uint(indexSize)
			loc.extents = append(loc.extents, extent{
				offset: f.uint(offsetSize),
				length: f.uint(lengthSize),
			})
		}
		locations[id] = loc
	}
	if f.err != nil {
		return nil, f.err
	}
	return locations, nil
}
