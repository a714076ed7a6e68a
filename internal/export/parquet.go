package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/JonMunkholm/accidents/internal/frame"
)

// DefaultRowGroupSize is used when ParquetSink.RowGroupSize is not positive.
const DefaultRowGroupSize = 64 * 1024

// Codec returns the parquet compression codec for a configuration name.
func Codec(name string) (compress.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unsupported parquet compression %q", name)
	}
}

// ParquetSink writes the dataset as a single parquet file.
type ParquetSink struct {
	Path         string
	Compression  string
	RowGroupSize int64
}

func (s *ParquetSink) Name() string { return "parquet" }

// Write replaces the file at Path. The data goes to a temporary file in the
// same directory, renamed into place once complete, so readers never see a
// partial file.
func (s *ParquetSink) Write(ctx context.Context, t *frame.Table) error {
	codec, err := Codec(s.Compression)
	if err != nil {
		return err
	}
	rowGroup := s.RowGroupSize
	if rowGroup <= 0 {
		rowGroup = DefaultRowGroupSize
	}

	tbl, err := ToArrow(t, memory.NewGoAllocator())
	if err != nil {
		return fmt.Errorf("converting to arrow: %w", err)
	}
	defer tbl.Release()

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithMaxRowGroupLength(rowGroup),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(tbl.Schema(), tmp, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	if err := writer.WriteTable(tbl, rowGroup); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing parquet: %w", err)
	}
	// Closing the writer writes the footer and closes tmp.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	if err := tmp.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("moving parquet into place: %w", err)
	}
	committed = true
	return nil
}

// ReadParquet reads a parquet file into an arrow table. The caller releases
// the table.
func ReadParquet(ctx context.Context, path string) (arrow.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("creating parquet reader: %w", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("creating arrow reader: %w", err)
	}

	tbl, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading parquet data: %w", err)
	}
	return tbl, nil
}
