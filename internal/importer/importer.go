// Package importer turns raw railway data files into network records.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"raillog.org/engine/internal/logging"
	"raillog.org/engine/internal/network"
)

// ErrMalformedFeature marks a single feature that could not be converted.
// Importers log and skip such features.
var ErrMalformedFeature = errors.New("malformed feature")

// ErrUnknownFormat is returned for files whose format cannot be detected.
var ErrUnknownFormat = errors.New("unknown data format")

// Format is a supported input format.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatGTFS    Format = "gtfs"
	FormatOSM     Format = "osm"
)

// Batch is the output of one import.
type Batch struct {
	// Company is the operator applied to records that name none.
	Company string
	Records []network.Record
	// Skipped counts malformed features.
	Skipped int
}

// Lines counts the line records of the batch.
func (b Batch) Lines() int {
	return b.count(network.KindLine)
}

// Stations counts the station records of the batch.
func (b Batch) Stations() int {
	return b.count(network.KindStation)
}

func (b Batch) count(kind network.RecordKind) int {
	n := 0
	for _, r := range b.Records {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

func (b *Batch) skip(logger *slog.Logger, format Format, err error, attrs ...slog.Attr) {
	b.Skipped++
	attrs = append(attrs, slog.String("component", "importer"), slog.String("format", string(format)))
	logging.LogError(logger, "skipping feature", err, attrs...)
}

// DetectFormat guesses the format from a file name or URL.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(sourcePath(path))) {
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	case ".zip":
		return FormatGTFS, nil
	case ".osm", ".xml":
		return FormatOSM, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// CompanyFromPath derives the default operator of a data file from its name,
// resolved against the operator table when one is given.
func CompanyFromPath(path string, companies network.CompanyIndex) string {
	base := filepath.Base(sourcePath(path))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if companies == nil {
		return name
	}
	return companies.BestKey(name)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// sourcePath strips the scheme, host and query of a URL.
func sourcePath(source string) string {
	if !isRemote(source) {
		return source
	}
	u, err := url.Parse(source)
	if err != nil {
		return source
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		return u.Path
	}
	return p
}

// readSource reads a local file or downloads an http(s) URL.
func readSource(ctx context.Context, source string, logger *slog.Logger) ([]byte, error) {
	if !isRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", source, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", source, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, logger, "download body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: unexpected status %s", source, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", source, err)
	}
	return data, nil
}

// LoadFile reads and decodes one data file, local or http(s).
func LoadFile(ctx context.Context, path string, companies network.CompanyIndex, logger *slog.Logger) (Batch, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return Batch{}, err
	}

	data, err := readSource(ctx, path, logger)
	if err != nil {
		return Batch{}, err
	}

	var batch Batch
	switch format {
	case FormatGeoJSON:
		batch, err = DecodeGeoJSON(data, logger)
	case FormatGTFS:
		batch, err = DecodeGTFS(data, logger)
	case FormatOSM:
		batch, err = DecodeOSM(ctx, bytes.NewReader(data), logger)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	batch.Company = CompanyFromPath(path, companies)
	logging.LogOperation(logger, "data_file_imported",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.String("company", batch.Company),
		slog.Int("lines", batch.Lines()),
		slog.Int("stations", batch.Stations()),
		slog.Int("skipped", batch.Skipped))
	return batch, nil
}

// LoadCompanies reads an operator table from a JSON or YAML file keyed by
// operator name.
func LoadCompanies(path string) (map[string]network.CompanyInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading company table: %w", err)
	}

	table := map[string]network.CompanyInfo{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &table)
	default:
		err = json.Unmarshal(data, &table)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing company table %s: %w", path, err)
	}
	return table, nil
}
