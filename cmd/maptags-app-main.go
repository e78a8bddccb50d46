package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/maptags-app/export"
	"github.com/jamesrr39/maptags-app/maptagsdal"
	"github.com/jamesrr39/maptags-app/webservices"
	"github.com/pkg/profile"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

const DEFAULT_PORT = 9000

var logger *logpkg.Logger

func main() {
	logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelInfo)

	setupInspect()
	setupScan()
	setupPBFTags()
	setupServe()

	kingpin.Parse()
}

// openOutWriter returns either a file in fs or stdout for outPath "".
func openOutWriter(fs gofs.Fs, outPath string) (io.Writer, func() error, errorsx.Error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	file, err := fs.Create(outPath)
	if err != nil {
		return nil, nil, errorsx.Wrap(err, "outPath", outPath)
	}
	return file, file.Close, nil
}

func setupInspect() {
	cmd := kingpin.Command("inspect", "decode one .map file and report its header and tag tables")
	filePath := cmd.Arg("file", ".map file to inspect").Required().String()
	formatStr := cmd.Flag("format", "output format (text, json or csv)").Default(string(export.FormatText)).String()
	outPath := cmd.Flag("out", "file to write the report to (stdout if not set)").String()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		run := func() errorsx.Error {
			format, err := export.ParseFormat(*formatStr)
			if err != nil {
				return err
			}

			fs := gofs.NewOsFs()
			conn, err := maptagsdal.OpenMapFileConn(fs, *filePath)
			if err != nil {
				return err
			}

			outWriter, closeOut, err := openOutWriter(fs, *outPath)
			if err != nil {
				return err
			}
			defer closeOut()

			return export.WriteMapFileReport(outWriter, conn.Name(), conn.MapFile(), format)
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

func setupScan() {
	cmd := kingpin.Command("scan", "decode every .map file in a folder and print a consolidated tag report")
	dirPath := cmd.Arg("dir", "folder containing .map files").Required().String()
	outDirPath := cmd.Flag("out-dir", "folder to write per-file tag reports into").String()
	maxParallel := cmd.Flag("max-parallel", "maximum amount of files decoded at the same time").Default(fmt.Sprintf("%d", maptagsdal.DefaultMaxParallelDecodes)).Uint()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		run := func() errorsx.Error {
			fs := gofs.NewOsFs()

			summary, err := maptagsdal.ScanFolder(fs, *dirPath, *maxParallel)
			if err != nil {
				return err
			}

			for _, result := range summary.Results {
				if result.Err != nil {
					logger.Error("failed to decode %q. Error: %q\nStack: %s", result.FilePath, result.Err.Error(), result.Err.Stack())
				}
			}

			if *outDirPath != "" {
				err = writePerFileReports(fs, *outDirPath, summary)
				if err != nil {
					return err
				}
			}

			return export.WriteFolderSummaryReport(os.Stdout, summary)
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

func writePerFileReports(fs gofs.Fs, outDirPath string, summary *maptagsdal.FolderSummary) errorsx.Error {
	err := fs.MkdirAll(outDirPath, 0755)
	if err != nil {
		return errorsx.Wrap(err, "outDirPath", outDirPath)
	}

	for _, result := range summary.Results {
		if result.Err != nil {
			continue
		}

		conn := result.Conn
		stem := strings.TrimSuffix(conn.Name(), filepath.Ext(conn.Name()))
		outPath := filepath.Join(outDirPath, stem+"_tags.txt")

		err := writeMapFileReportToFile(fs, outPath, conn)
		if err != nil {
			return err
		}

		logger.Info("tags exported to %q", outPath)
	}

	return nil
}

func writeMapFileReportToFile(fs gofs.Fs, outPath string, conn *maptagsdal.MapFileConn) errorsx.Error {
	file, err := fs.Create(outPath)
	if err != nil {
		return errorsx.Wrap(err, "outPath", outPath)
	}
	defer file.Close()

	return export.WriteMapFileReport(file, conn.Name(), conn.MapFile(), export.FormatText)
}

func setupPBFTags() {
	cmd := kingpin.Command("pbf-tags", "count tag occurrences in an OSM PBF extract")
	filePath := cmd.Arg("file", "PBF file to scan").Required().String()
	formatStr := cmd.Flag("format", "output format (text, json or csv)").Default(string(export.FormatText)).String()
	outPath := cmd.Flag("out", "file to write the report to (stdout if not set)").String()
	minCount := cmd.Flag("min-count", "leave out tags seen fewer times than this").Default("1").Int()
	shouldProfile := cmd.Flag("profile", "profile the scan performance").Bool()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		run := func() errorsx.Error {
			format, err := export.ParseFormat(*formatStr)
			if err != nil {
				return err
			}

			if *shouldProfile {
				defer profile.Start(profile.CPUProfile).Stop()
			}

			fs := gofs.NewOsFs()
			file, openErr := fs.Open(*filePath)
			if openErr != nil {
				return errorsx.Wrap(openErr, "filePath", *filePath)
			}
			defer file.Close()

			startTime := time.Now()
			counts, err := maptagsdal.CountPBFTags(context.Background(), file)
			if err != nil {
				return err
			}
			logger.Info("scanned %q in %s", *filePath, time.Since(startTime))

			outWriter, closeOut, err := openOutWriter(fs, *outPath)
			if err != nil {
				return err
			}
			defer closeOut()

			return export.WriteTagCountsReport(outWriter, counts, format, *minCount)
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

var addrHelp = fmt.Sprintf(
	`address to serve on. Ex: ':%d' listen on port %d to traffic from anywhere. 'localhost:%d' listen on port %d to traffic from localhost`,
	DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT,
)

func setupServe() {
	cmd := kingpin.Command("serve", "serve decoded map file info over HTTP")
	dirPath := cmd.Arg("dir", "folder containing .map files").Required().String()
	addr := cmd.Flag("addr", addrHelp).Default(fmt.Sprintf(":%d", DEFAULT_PORT)).String()
	traceFilePath := cmd.Flag("trace-file", "file to write request traces to").String()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		run := func() errorsx.Error {
			fs := gofs.NewOsFs()

			conns, err := loadMapFileConnsFromDir(fs, *dirPath)
			if err != nil {
				return err
			}

			router := chi.NewRouter()
			router.Use(middleware.Recoverer)

			if *traceFilePath != "" {
				traceFile, err := fs.Create(*traceFilePath)
				if err != nil {
					return errorsx.Wrap(err, "traceFilePath", *traceFilePath)
				}
				defer traceFile.Close()

				logger.Info("tracing at %q", *traceFilePath)
				router.Use(tracing.Middleware(tracing.NewTracer(traceFile)))
			}

			router.Mount("/api/info", webservices.NewMapInfoService(logger, conns))

			server := httpextra.NewServerWithTimeouts()
			server.Addr = *addr
			server.Handler = router

			logger.Info("about to start serving on %q", *addr)

			httpErr := server.ListenAndServe()
			if httpErr != nil {
				return errorsx.Wrap(httpErr)
			}
			return nil
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

// loadMapFileConnsFromDir decodes every .map file in dirPath. A file that
// fails to decode is logged and skipped; the server starts with the rest.
func loadMapFileConnsFromDir(fs gofs.Fs, dirPath string) ([]*maptagsdal.MapFileConn, errorsx.Error) {
	filePaths, err := maptagsdal.FindMapFiles(fs, dirPath)
	if err != nil {
		return nil, err
	}

	var conns []*maptagsdal.MapFileConn
	for _, filePath := range filePaths {
		conn, err := maptagsdal.OpenMapFileConn(fs, filePath)
		if err != nil {
			logger.Error("failed to load %q as a map file. Error: %q\nStack: %s", filePath, err.Error(), err.Stack())
			continue
		}

		conns = append(conns, conn)
	}

	return conns, nil
}
