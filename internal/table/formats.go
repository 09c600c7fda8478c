package table

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Reader produces raw records for one upload format.
type Reader interface {
	CanRead(filename string) bool
	Read(path string, opt Options) (Records, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// Supported reports whether some registered reader accepts the filename.
func Supported(filename string) bool {
	return readerFor(filename) != nil
}

func readerFor(filename string) Reader {
	for _, r := range registry {
		if r.CanRead(filename) {
			return r
		}
	}
	return nil
}

// LoadFile checks type and size, then reads and validates a table upload.
func LoadFile(path string, opt Options) (*Table, ValidationResult, error) {
	r := readerFor(path)
	if r == nil {
		return nil, ValidationResult{}, eris.Wrapf(ErrWrongFileType, "table: %s (expected .csv, .tsv or .xlsx)", filepath.Base(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, ValidationResult{}, eris.Wrap(err, "table: stat upload")
	}
	if opt.MaxBytes > 0 && info.Size() > opt.MaxBytes {
		return nil, ValidationResult{}, eris.Wrapf(ErrFileTooLarge, "table: %s is %d bytes (limit %d)", filepath.Base(path), info.Size(), opt.MaxBytes)
	}
	recs, err := r.Read(path, opt)
	if err != nil {
		return nil, ValidationResult{}, err
	}
	t, res := build(filepath.Base(path), recs)
	zap.L().Debug("table: loaded",
		zap.String("file", t.Name),
		zap.Int("rows", res.RowCount),
		zap.Int("columns", res.ColumnCount),
		zap.Bool("valid", res.IsValid),
	)
	return t, res, nil
}

type delimitedReader struct {
	ext   string
	comma rune
}

func (d delimitedReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), d.ext)
}

func (d delimitedReader) Read(path string, opt Options) (Records, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Records{}, eris.Wrap(err, "table: read file")
	}
	comma := d.comma
	if opt.Delimiter != 0 && d.ext == ".csv" {
		comma = opt.Delimiter
	}
	return readDelimited(b, comma), nil
}

func init() {
	Register(delimitedReader{ext: ".csv", comma: ','})
	Register(delimitedReader{ext: ".tsv", comma: '\t'})
	Register(xlsxReader{})
}
