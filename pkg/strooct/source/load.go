package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/charmap"
)

// LoadOptions controls how Load turns a file into a source buffer.
type LoadOptions struct {
	// Encoding names the single-byte code page the UTF-8 file content is
	// converted to. Empty or "utf-8" keeps the bytes as they are.
	Encoding string

	// MaxSize rejects files whose decoded size exceeds this many bytes.
	// Zero means no limit.
	MaxSize int64
}

// codePages lists the supported 8-bit encodings by their canonical name.
var codePages = map[string]*charmap.Charmap{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"latin9":       charmap.ISO8859_15,
}

// Encodings returns the encoding names accepted by LoadOptions.Encoding.
func Encodings() []string {
	names := []string{"utf-8"}
	for name := range codePages {
		names = append(names, name)
	}
	slices.Sort(names[1:])
	return names
}

// ValidEncoding reports whether name is accepted by LoadOptions.Encoding.
func ValidEncoding(name string) bool {
	name = strings.ToLower(name)
	if name == "" || name == "utf-8" || name == "utf8" {
		return true
	}
	_, ok := codePages[name]
	return ok
}

var utf8BOM = []byte("\xef\xbb\xbf")

// Load reads the file at path and returns its content ready for lexing.
// Files ending in .gz or .zst are decompressed first.
func Load(path string, opts LoadOptions) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, filepath.Base(path), opts)
}

// Read decodes r the same way Load decodes a file called name.
func Read(r io.Reader, name string, opts LoadOptions) ([]byte, error) {
	var reader io.Reader = r

	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		reader = zr
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	if opts.MaxSize > 0 {
		reader = io.LimitReader(reader, opts.MaxSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if opts.MaxSize > 0 && int64(len(data)) > opts.MaxSize {
		return nil, fmt.Errorf("%s exceeds the maximum source size of %d bytes", name, opts.MaxSize)
	}

	// A byte order mark is not Structured Text in any encoding.
	data = bytes.TrimPrefix(data, utf8BOM)

	return Transcode(data, opts.Encoding)
}

// Transcode converts UTF-8 data into the named single-byte code page so
// that every character occupies exactly one byte.
func Transcode(data []byte, name string) ([]byte, error) {
	name = strings.ToLower(name)
	if name == "" || name == "utf-8" || name == "utf8" {
		return data, nil
	}

	cm, ok := codePages[name]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}

	// Skip a UTF-8 byte order mark; it has no single-byte equivalent.
	data = bytes.TrimPrefix(data, utf8BOM)

	out, err := cm.NewEncoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode as %s: %w", name, err)
	}
	return out, nil
}
