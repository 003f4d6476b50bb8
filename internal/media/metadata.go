package media

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var ErrMalformedWebP = errors.New("malformed webp container")

var exifHeader = []byte("Exif\x00\x00")

const (
	vp8xFlagAlpha = 0x10
	vp8xFlagEXIF  = 0x08
)

// ExtractEXIF returns the TIFF payload of the first EXIF APP1 segment of a
// JPEG stream, or nil when there is none.
func ExtractEXIF(data []byte) []byte {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil
		}
		marker := data[pos+1]
		switch {
		case marker == 0xFF:
			pos++
			continue
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			pos += 2
			continue
		case marker == 0xDA || marker == 0xD9:
			// Start of scan or end of image, metadata segments are over.
			return nil
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			return nil
		}
		payload := data[pos+4 : pos+2+length]
		if marker == 0xE1 && bytes.HasPrefix(payload, exifHeader) {
			return append([]byte(nil), payload[len(exifHeader):]...)
		}
		pos += 2 + length
	}
	return nil
}

type riffChunk struct {
	fourCC string
	data   []byte
}

func parseWebP(data []byte) ([]riffChunk, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, ErrMalformedWebP
	}
	var chunks []riffChunk
	pos := 12
	for pos+8 <= len(data) {
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		end := pos + 8 + size
		if size < 0 || end > len(data) {
			return nil, ErrMalformedWebP
		}
		chunks = append(chunks, riffChunk{fourCC: string(data[pos : pos+4]), data: data[pos+8 : end]})
		pos = end + size%2
	}
	if len(chunks) == 0 {
		return nil, ErrMalformedWebP
	}
	return chunks, nil
}

func writeWebP(chunks []riffChunk) []byte {
	body := 4
	for _, c := range chunks {
		body += 8 + len(c.data) + len(c.data)%2
	}
	out := make([]byte, 0, 8+body)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(body))
	out = append(out, "WEBP"...)
	for _, c := range chunks {
		out = append(out, c.fourCC...)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(c.data)))
		out = append(out, c.data...)
		if len(c.data)%2 == 1 {
			out = append(out, 0)
		}
	}
	return out
}

// vp8lHasAlpha reads the alpha_is_used bit of a lossless bitstream header.
func vp8lHasAlpha(data []byte) bool {
	if len(data) < 5 || data[0] != 0x2F {
		return false
	}
	return binary.LittleEndian.Uint32(data[1:5])&(1<<28) != 0
}

// InjectEXIF rewrites a simple WebP file into the extended format carrying
// exif. width and height describe the canvas.
func InjectEXIF(data, exif []byte, width, height int) ([]byte, error) {
	chunks, err := parseWebP(data)
	if err != nil {
		return nil, err
	}
	if len(exif) == 0 {
		return data, nil
	}

	kept := chunks[:0]
	for _, c := range chunks {
		if c.fourCC != "EXIF" {
			kept = append(kept, c)
		}
	}
	chunks = kept
	if len(chunks) == 0 {
		return nil, ErrMalformedWebP
	}

	if chunks[0].fourCC == "VP8X" {
		if len(chunks[0].data) < 10 {
			return nil, ErrMalformedWebP
		}
		header := append([]byte(nil), chunks[0].data...)
		header[0] |= vp8xFlagEXIF
		chunks[0].data = header
	} else {
		if width <= 0 || height <= 0 || width > 1<<24 || height > 1<<24 {
			return nil, ErrMalformedWebP
		}
		header := make([]byte, 10)
		header[0] = vp8xFlagEXIF
		if chunks[0].fourCC == "VP8L" && vp8lHasAlpha(chunks[0].data) {
			header[0] |= vp8xFlagAlpha
		}
		putUint24(header[4:7], uint32(width-1))
		putUint24(header[7:10], uint32(height-1))
		chunks = append([]riffChunk{{fourCC: "VP8X", data: header}}, chunks...)
	}

	chunks = append(chunks, riffChunk{fourCC: "EXIF", data: exif})
	return writeWebP(chunks), nil
}

// EXIF returns the EXIF payload of a WebP file, or nil.
func EXIF(data []byte) []byte {
	chunks, err := parseWebP(data)
	if err != nil {
		return nil
	}
	for _, c := range chunks {
		if c.fourCC == "EXIF" {
			return c.data
		}
	}
	return nil
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
