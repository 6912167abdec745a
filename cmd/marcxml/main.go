package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/mitlibraries/marcxml/internal/export"
	"github.com/mitlibraries/marcxml/internal/logging"
	"github.com/mitlibraries/marcxml/internal/source"
	"github.com/mitlibraries/marcxml/internal/validate"
	"github.com/mitlibraries/marcxml/marc"
	"github.com/mitlibraries/marcxml/slim"
)

const version = "0.1.0"

var (
	logger = zap.NewNop()

	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
)

func main() {
	app := newApp()
	err := app.Run(os.Args)
	if err != nil {
		red.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "marcxml"
	app.Usage = "Convert MARC 21 files to MARCXML"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log level: debug, info, warn or error"},
		cli.StringFlag{Name: "log-format", Value: logging.FormatConsole, Usage: "log format: console or json"},
	}
	app.Before = func(c *cli.Context) error {
		l, err := logging.New(c.String("log-level"), c.String("log-format"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	}
	app.After = func(c *cli.Context) error {
		_ = logger.Sync()
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:      "export",
			Usage:     "Convert MARC records to a MARCXML collection, or to one file per record",
			ArgsUsage: "[file.mrc]",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "output, o", Usage: "output file, or directory with --separate (default: stdout)"},
				cli.StringFlag{Name: "fields, f", Usage: "export only these comma separated tags, e.g. 245,100,260"},
				cli.BoolFlag{Name: "separate, s", Usage: "create a separate file for each record"},
				cli.BoolFlag{Name: "compact, c", Usage: "generate compact XML without pretty printing"},
				cli.BoolFlag{Name: "validate, v", Usage: "check that the written XML is well-formed"},
				cli.BoolFlag{Name: "strict", Usage: "reject records containing any invalid field"},
				cli.BoolFlag{Name: "normalize", Usage: "normalize text to Unicode NFC"},
			},
			Action: exportAction,
		},
		{
			Name:      "pick",
			Usage:     "Pull a single MARC record from the data by control number",
			ArgsUsage: "[controlnum] [file]",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "xml, x", Usage: "write the record as a MARCXML document"},
				cli.BoolFlag{Name: "compact, c", Usage: "generate compact XML (with --xml)"},
				cli.StringFlag{Name: "fields, f", Usage: "keep only these comma separated tags"},
			},
			Action: pickAction,
		},
		{
			Name:      "validate",
			Usage:     "Check that a MARCXML file is well-formed",
			ArgsUsage: "[file.xml]",
			Action:    validateAction,
		},
	}
	return app
}

func exportAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("export needs exactly one input file")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := export.Options{
		Input:     c.Args().Get(0),
		Output:    c.String("output"),
		Fields:    export.ParseFields(c.String("fields")),
		Separate:  c.Bool("separate"),
		Compact:   c.Bool("compact"),
		Strict:    c.Bool("strict"),
		Normalize: c.Bool("normalize"),
		Validate:  c.Bool("validate"),
		Stdout:    c.App.Writer,
	}
	sum, err := export.Run(ctx, opts, logger)
	printSummary(os.Stderr, sum, opts.Validate && err == nil)
	return err
}

func printSummary(w io.Writer, sum export.Summary, validated bool) {
	green.Fprintf(w, "Export completed: %d records processed\n", sum.Written)
	if sum.Failed > 0 {
		yellow.Fprintf(w, "Skipped %d of %d records\n", sum.Failed, sum.Records)
	}
	if sum.Warnings > 0 {
		yellow.Fprintf(w, "%d field warnings\n", sum.Warnings)
	}
	if validated && len(sum.Files) > 0 {
		green.Fprintln(w, "XML validation: Well-formed")
	}
}

func pickAction(c *cli.Context) error {
	id := c.Args().Get(0)
	file, err := source.Open(c.Args().Get(1))
	if err != nil {
		return err
	}
	defer file.Close()

	var tags marc.TagSet
	if fields := export.ParseFields(c.String("fields")); len(fields) > 0 {
		tags = marc.NewTagSet(fields...)
	}
	m := marc.NewMarcIterator(file)
	for m.Next() {
		record, err := m.Value()
		if err != nil {
			logger.Warn("record skipped", zap.Int("record", m.Index()), zap.Error(err))
			continue
		}
		if record.ControlNum() != id {
			continue
		}
		if tags != nil {
			record = record.Filter(tags)
		}
		return writePicked(c.App.Writer, record, c.Bool("xml"), c.Bool("compact"))
	}
	if err := m.Err(); err != nil {
		return err
	}
	return fmt.Errorf("no record with control number %q", id)
}

func writePicked(w io.Writer, record marc.Record, asXML, compact bool) error {
	var data []byte
	switch {
	case asXML:
		data = slim.Encoder{Compact: compact}.Document(record)
	case record.Data != nil:
		data = record.Data
	default:
		b, err := record.MarshalBinary()
		if err != nil {
			return err
		}
		data = b
	}
	_, err := w.Write(data)
	return err
}

func validateAction(c *cli.Context) error {
	res, err := validate.File(c.Args().Get(0))
	if err != nil {
		return err
	}
	if !res.WellFormed {
		return fmt.Errorf("%w: %v", export.ErrNotWellFormed, res.Err)
	}
	green.Fprintf(c.App.Writer, "XML validation: Well-formed (%s, %d records)\n", res.Root, res.Records)
	return nil
}
