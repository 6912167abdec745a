package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitlibraries/marcxml/marc"
	"github.com/mitlibraries/marcxml/slim"
)

// collectionSink writes a single collection document, either straight to a
// stream or to a temporary file that replaces the destination on commit.
type collectionSink struct {
	bw   *bufio.Writer
	cw   *slim.CollectionWriter
	file *os.File
	dest string
}

func newStreamSink(w io.Writer, enc slim.Encoder, tee io.Writer) *collectionSink {
	bw := bufio.NewWriterSize(io.MultiWriter(w, tee), 64*1024)
	return &collectionSink{bw: bw, cw: slim.NewCollectionWriter(bw, enc)}
}

func newFileCollectionSink(dest string, enc slim.Encoder, tee io.Writer) (*collectionSink, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("cannot open output file %s: %w", dest, err)
	}
	s := newStreamSink(tmp, enc, tee)
	s.file = tmp
	s.dest = dest
	return s, nil
}

func (s *collectionSink) write(_ int, r marc.Record) (string, error) {
	return s.dest, s.cw.Write(r)
}

func (s *collectionSink) commit() ([]string, error) {
	if err := s.cw.Close(); err != nil {
		s.abort()
		return nil, err
	}
	if err := s.bw.Flush(); err != nil {
		s.abort()
		return nil, fmt.Errorf("write output: %w", err)
	}
	if s.file == nil {
		return nil, nil
	}
	tmpPath := s.file.Name()
	if err := s.file.Sync(); err != nil {
		s.abort()
		return nil, fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := s.file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, s.dest); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("cannot replace output file %s: %w", s.dest, err)
	}
	return []string{s.dest}, nil
}

func (s *collectionSink) abort() {
	if s.file == nil {
		_ = s.bw.Flush()
		return
	}
	_ = s.file.Close()
	_ = os.Remove(s.file.Name())
}

// fileSink writes one document per record.
type fileSink struct {
	w     *slim.IndividualWriter
	files []string
}

func (s *fileSink) write(index int, r marc.Record) (string, error) {
	path, err := s.w.Write(index, r)
	if err != nil {
		return path, err
	}
	s.files = append(s.files, path)
	return path, nil
}

func (s *fileSink) commit() ([]string, error) {
	return s.files, nil
}

func (s *fileSink) abort() {}
