package convert

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/restaurant-cli/internal/fetcher"
)

// ReadOptions controls how input files are decoded.
type ReadOptions struct {
	Encoding   string // CSV charset label; empty means UTF-8
	SheetIndex int
	SheetName  string
	Fetcher    fetcher.Fetcher // downloads http(s) inputs; nil uses a default HTTPFetcher
}

// Table is the header and data rows of one input file.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// IsRemote reports whether p is an http or https URL.
func IsRemote(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// ReadFile reads a .csv, .tsv or .xlsx file. An http(s) URL is downloaded
// to a temporary file first.
func ReadFile(ctx context.Context, path string, opts ReadOptions) (*Table, error) {
	if IsRemote(path) {
		return readRemote(ctx, path, opts)
	}
	ext := strings.ToLower(filepath.Ext(path))

	var header []string
	var rows [][]string
	var err error

	switch ext {
	case ".csv", ".tsv", ".txt":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "convert: open %s", path)
		}
		defer f.Close() //nolint:errcheck

		csvOpts := fetcher.CSVOptions{
			LazyQuotes: true,
			Encoding:   opts.Encoding,
		}
		if ext == ".tsv" {
			csvOpts.Delimiter = '\t'
		}
		header, rows, err = fetcher.ReadCSV(ctx, f, csvOpts)
	case ".xlsx":
		header, rows, err = fetcher.ReadXLSX(path, fetcher.XLSXOptions{
			SheetIndex: opts.SheetIndex,
			SheetName:  opts.SheetName,
		})
	default:
		return nil, eris.Errorf("convert: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "convert: read %s", path)
	}
	if header == nil {
		return nil, eris.Errorf("convert: %s is empty", path)
	}

	zap.L().Debug("convert: read file",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
	)
	return &Table{Path: path, Header: header, Rows: rows}, nil
}

func readRemote(ctx context.Context, rawURL string, opts ReadOptions) (*Table, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: parse url %s", rawURL)
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".csv", ".tsv", ".txt", ".xlsx":
	default:
		return nil, eris.Errorf("convert: unsupported file type %q", ext)
	}

	dir, err := os.MkdirTemp("", "restaurant-convert-*")
	if err != nil {
		return nil, eris.Wrap(err, "convert: create temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	f := opts.Fetcher
	if f == nil {
		f = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}
	local := filepath.Join(dir, "input"+ext)
	n, err := f.DownloadToFile(ctx, rawURL, local)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: download %s", rawURL)
	}
	zap.L().Debug("convert: downloaded input",
		zap.String("url", rawURL),
		zap.Int64("bytes", n),
	)

	t, err := ReadFile(ctx, local, opts)
	if err != nil {
		return nil, err
	}
	t.Path = rawURL
	return t, nil
}

// ReadFiles reads paths with at most limit files open at once. Tables are
// returned in the order of paths.
func ReadFiles(ctx context.Context, paths []string, opts ReadOptions, limit int) ([]*Table, error) {
	if limit <= 0 {
		limit = 1
	}

	if opts.Fetcher == nil {
		for _, p := range paths {
			if IsRemote(p) {
				opts.Fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
				break
			}
		}
	}

	tables := make([]*Table, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, p := range paths {
		g.Go(func() error {
			t, err := ReadFile(gCtx, p, opts)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
