package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/woozymasta/edumap/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrStatus is returned when a remote resource answers with a non-200 status.
var ErrStatus = errors.New("unexpected status")

// Dataset is the fully loaded input: records plus code mappings.
type Dataset struct {
	Records  []Record
	Mappings Mappings
}

// Positioned counts records with a usable position.
func (d *Dataset) Positioned() int {
	n := 0
	for i := range d.Records {
		if d.Records[i].HasPosition {
			n++
		}
	}
	return n
}

// Loader fetches the establishment and mapping resources.
type Loader struct {
	Client         *http.Client
	Source         Source
	Establishments string
	Mappings       string
}

// NewLoader returns a loader with a default HTTP client.
func NewLoader(src Source, establishments, mappings string) *Loader {
	return &Loader{
		Client:         &http.Client{Timeout: 60 * time.Second},
		Source:         src,
		Establishments: establishments,
		Mappings:       mappings,
	}
}

// Load fetches both resources concurrently. Both must be fetched and decoded,
// otherwise the first error is returned and nothing is.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	var ds Dataset
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		body, err := l.open(ctx, "establishments", l.Establishments)
		if err != nil {
			return err
		}
		defer func() { _ = body.Close() }()

		records, err := l.Source.Decode(body)
		if err != nil {
			return fmt.Errorf("establishments %s: %w", l.Establishments, err)
		}
		ds.Records = records
		return nil
	})

	g.Go(func() error {
		body, err := l.open(ctx, "mappings", l.Mappings)
		if err != nil {
			return err
		}
		defer func() { _ = body.Close() }()

		m, err := DecodeMappings(body)
		if err != nil {
			return fmt.Errorf("mappings %s: %w", l.Mappings, err)
		}
		ds.Mappings = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("format", l.Source.Name()).
		Int("records", len(ds.Records)).
		Int("types", len(ds.Mappings.Types)).
		Int("statuses", len(ds.Mappings.Statuses)).
		Msg("Dataset loaded")

	return &ds, nil
}

// open returns a reader for a local path or an http(s) URL.
func (l *Loader) open(ctx context.Context, service, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", service, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", service, err)
	}
	req.Header.Set("Accept", "application/json")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		metrics.ObserveExternal(service, 0, time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", service, location, err)
	}
	metrics.ObserveExternal(service, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w %d", service, location, ErrStatus, resp.StatusCode)
	}

	return resp.Body, nil
}
