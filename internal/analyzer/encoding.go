package analyzer

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"loclens/internal/core/errors"
)

// Encoding is the detected byte encoding of a file.
type Encoding uint8

const (
	EncUTF8 Encoding = iota
	EncUTF16LE
	EncUTF16BE
	EncBinary
)

func (e Encoding) String() string {
	switch e {
	case EncUTF8:
		return "utf-8"
	case EncUTF16LE:
		return "utf-16le"
	case EncUTF16BE:
		return "utf-16be"
	case EncBinary:
		return "binary"
	}
	return "unknown"
}

// binaryThresholdPercent is the share of disallowed control bytes in a
// sample beyond which content is treated as binary.
const binaryThresholdPercent = 20

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// sniffEncoding classifies a bounded sample as UTF-8, UTF-16 (LE/BE),
// or binary. Byte-order marks win; without one, a zero-byte parity
// heuristic flags BOM-less UTF-16, and a control-byte ratio (or any
// NUL) flags binary. Everything else is treated as UTF-8.
func sniffEncoding(sample []byte) Encoding {
	if enc, ok := bomEncoding(sample); ok {
		return enc
	}
	if enc, ok := sniffUTF16WithoutBOM(sample); ok {
		return enc
	}
	if looksBinary(sample) {
		return EncBinary
	}
	return EncUTF8
}

func bomEncoding(sample []byte) (Encoding, bool) {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return EncUTF8, true
	case bytes.HasPrefix(sample, bomUTF16LE):
		return EncUTF16LE, true
	case bytes.HasPrefix(sample, bomUTF16BE):
		return EncUTF16BE, true
	}
	return EncUTF8, false
}

// sniffUTF16WithoutBOM applies the zero-byte parity heuristic: UTF-16
// text over a mostly-ASCII alphabet has a strong zero bias on one byte
// parity.
func sniffUTF16WithoutBOM(sample []byte) (Encoding, bool) {
	if len(sample) < 4 {
		return EncUTF8, false
	}
	var zeroEven, zeroOdd int
	for i, b := range sample {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			zeroEven++
		} else {
			zeroOdd++
		}
	}
	if zeroEven+zeroOdd < len(sample)/4 {
		return EncUTF8, false
	}
	if zeroOdd >= zeroEven*2 {
		return EncUTF16LE, true
	}
	if zeroEven >= zeroOdd*2 {
		return EncUTF16BE, true
	}
	return EncUTF8, false
}

func looksBinary(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	nonText := 0
	for _, b := range sample {
		switch {
		case b <= 0x08, b == 0x0B, b == 0x0C, b >= 0x0E && b <= 0x1F, b == 0x7F:
			nonText++
		}
	}
	if nonText*100/len(sample) > binaryThresholdPercent {
		return true
	}
	return bytes.IndexByte(sample, 0) >= 0
}

// decodeContent normalizes file bytes to UTF-8 text, stripping any BOM.
// Malformed UTF-16 sequences are replaced (U+FFFD) rather than failing;
// a decode error is only returned when transcoding produces nothing.
func decodeContent(data []byte, enc Encoding) (string, error) {
	switch enc {
	case EncUTF8:
		return string(bytes.TrimPrefix(data, bomUTF8)), nil
	case EncUTF16LE, EncUTF16BE:
		endianness := unicode.LittleEndian
		if enc == EncUTF16BE {
			endianness = unicode.BigEndian
		}
		decoder := unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder()
		stripped := data
		if enc == EncUTF16LE {
			stripped = bytes.TrimPrefix(stripped, bomUTF16LE)
		} else {
			stripped = bytes.TrimPrefix(stripped, bomUTF16BE)
		}
		decoded, _, err := transform.Bytes(decoder, stripped)
		if err != nil && len(decoded) == 0 {
			wrapped := errors.Wrap(err, errors.CodeDecodeFailure, "transcode utf-16")
			return "", errors.AddContext(wrapped, errors.CtxEncoding, enc.String())
		}
		return string(decoded), nil
	}
	return "", errors.AddContext(
		errors.New(errors.CodeBinaryFile, "cannot decode binary content"),
		errors.CtxEncoding, enc.String())
}
