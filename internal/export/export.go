// Package export drives the MARC to MARCXML conversion: it reads records
// from the input, filters and encodes them, and writes either one
// collection document or one document per record.
//
// Processing is sequential and output follows input order. The context is
// checked between records; a cancelled run leaves whatever was already
// written to stdout or to per-record files, but never replaces a collection
// output file with a partial document.
package export

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/mitlibraries/marcxml/internal/source"
	"github.com/mitlibraries/marcxml/internal/validate"
	"github.com/mitlibraries/marcxml/marc"
	"github.com/mitlibraries/marcxml/slim"
)

// ErrNotWellFormed is returned when validation of the output fails.
var ErrNotWellFormed = errors.New("generated XML is not well-formed")

// Options configures a Run.
type Options struct {
	// Input is the MARC file to read, or "-" for stdin.
	Input string
	// Output is the collection file, or the directory in Separate mode.
	// An empty Output means stdout, or the current directory in Separate
	// mode.
	Output string
	// Fields restricts output to these tags. Empty means all fields.
	Fields []string
	// Separate writes one document per record.
	Separate bool
	// Compact disables pretty printing.
	Compact bool
	// Strict rejects records with any field anomaly.
	Strict bool
	// Normalize converts text to Unicode NFC.
	Normalize bool
	// Validate re-reads every written file and checks it is well-formed.
	Validate bool
	// Stdout receives collection output when Output is empty. Defaults to
	// os.Stdout.
	Stdout io.Writer
}

// Summary accumulates the outcome of a Run.
type Summary struct {
	RunID    string
	Records  int      // Records read from the input
	Written  int      // Records written to the output
	Failed   int      // Records that could not be decoded or written
	Warnings int      // Recoverable field anomalies
	Files    []string // Files written, in order
	Digest   string   // BLAKE3-256 of all bytes written, hex encoded
	Invalid  []string // Files that failed validation
}

// sink is where encoded records go.
type sink interface {
	write(index int, r marc.Record) (string, error)
	commit() ([]string, error)
	abort()
}

// ParseFields splits a comma separated tag list, trimming blanks and
// dropping empty entries.
func ParseFields(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Run performs one export. The returned Summary is valid even when err is
// non-nil. A truncated input is reported as an error after everything
// before the truncation has been written.
func Run(ctx context.Context, opts Options, log *zap.Logger) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", sum.RunID))

	in, err := source.Open(opts.Input)
	if err != nil {
		return sum, err
	}
	defer in.Close()

	enc := slim.Encoder{Compact: opts.Compact, Normalize: opts.Normalize}
	hasher := blake3.New()
	out, err := openSink(opts, enc, hasher, log)
	if err != nil {
		return sum, err
	}

	var tags marc.TagSet
	if len(opts.Fields) > 0 {
		tags = marc.NewTagSet(opts.Fields...)
	}
	log.Info("export started",
		zap.String("input", opts.Input),
		zap.String("output", opts.Output),
		zap.Bool("separate", opts.Separate),
		zap.Strings("fields", opts.Fields))

	iter := marc.NewMarcIterator(in)
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			out.abort()
			return sum, err
		}
		sum.Records++
		index := iter.Index()
		rlog := log.With(zap.Int("record", index))
		iter.Decoder = marc.Decoder{Strict: opts.Strict, Logger: rlog}

		r, err := iter.Value()
		if err != nil {
			sum.Failed++
			rlog.Error("record skipped", zap.Int64("offset", iter.Offset()), zap.Error(err))
			continue
		}
		sum.Warnings += len(r.Warnings)
		if tags != nil {
			r = r.Filter(tags)
		}
		path, err := out.write(index, r)
		if err != nil {
			if !opts.Separate {
				out.abort()
				return sum, err
			}
			sum.Failed++
			rlog.Error("cannot write record", zap.String("path", path), zap.Error(err))
			continue
		}
		sum.Written++
		rlog.Debug("record written", zap.String("control_number", r.ControlNum()))
	}
	readErr := iter.Err()
	if readErr != nil {
		log.Error("input stopped", zap.Error(readErr))
	}

	files, err := out.commit()
	if err != nil {
		return sum, err
	}
	sum.Files = files
	sum.Digest = hex.EncodeToString(hasher.Sum(nil))

	if opts.Validate {
		if err := validateFiles(&sum, log); err != nil {
			return sum, err
		}
	}
	log.Info("export completed",
		zap.Int("records", sum.Records),
		zap.Int("written", sum.Written),
		zap.Int("failed", sum.Failed),
		zap.Int("warnings", sum.Warnings),
		zap.String("digest", sum.Digest))
	return sum, readErr
}

func validateFiles(sum *Summary, log *zap.Logger) error {
	for _, f := range sum.Files {
		res, err := validate.File(f)
		if err != nil {
			return err
		}
		if !res.WellFormed {
			sum.Invalid = append(sum.Invalid, f)
			log.Error("validation failed", zap.String("path", f), zap.Error(res.Err))
			continue
		}
		log.Debug("validation passed", zap.String("path", f), zap.Int("records", res.Records))
	}
	if len(sum.Invalid) > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrNotWellFormed, len(sum.Invalid), len(sum.Files))
	}
	return nil
}

func openSink(opts Options, enc slim.Encoder, tee io.Writer, log *zap.Logger) (sink, error) {
	if opts.Separate {
		dir := strings.TrimRight(opts.Output, "/")
		if dir == "" {
			dir = "."
		}
		log.Info("writing separate files", zap.String("dir", dir))
		w, err := slim.NewIndividualWriter(dir, enc)
		if err != nil {
			return nil, err
		}
		w.Tee = tee
		return &fileSink{w: w}, nil
	}
	if opts.Output == "" || opts.Output == source.Stdin {
		stdout := opts.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		return newStreamSink(stdout, enc, tee), nil
	}
	return newFileCollectionSink(opts.Output, enc, tee)
}
