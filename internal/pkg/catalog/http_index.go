package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/logger"
)

// HTTPIndex is a remote directory listing of *.nc rasters.
type HTTPIndex struct {
	IndexURL string
	Client   *http.Client
}

func NewHTTPIndex(indexURL string, client *http.Client) *HTTPIndex {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPIndex{IndexURL: indexURL, Client: client}
}

func (h *HTTPIndex) List(ctx context.Context) ([]Entry, error) {
	base, err := url.Parse(h.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}

	resp, err := h.get(ctx, h.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get index page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("goquery.NewDocumentFromReader: %w", err)
	}

	seen := make(map[string]struct{})
	entries := make([]Entry, 0, 64)

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".nc") {
			return true
		}

		ref, parseErr := url.Parse(href)
		if parseErr != nil {
			logger.Warnf(ctx, "skipping link %q: %s", href, parseErr.Error())
			return true
		}
		location := base.ResolveReference(ref).String()
		if _, ok := seen[location]; ok {
			return true
		}
		seen[location] = struct{}{}

		name := path.Base(ref.Path)
		captured, nameErr := timeFromName(name)
		if nameErr != nil {
			err = fmt.Errorf("link %s: %w", href, nameErr)
			return false
		}

		entries = append(entries, Entry{ID: name, Location: location, Captured: captured})
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})

	return entries, nil
}

// Open downloads the raster into a temporary file, reads the band and removes the file.
func (h *HTTPIndex) Open(ctx context.Context, entry Entry, band string) (*domain.Grid, error) {
	tmp, err := os.CreateTemp("", "frame-*.nc")
	if err != nil {
		return nil, fmt.Errorf("os.CreateTemp: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if err = h.download(ctx, entry.Location, tmp); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("download %s: %w", entry.ID, err)
	}
	if err = tmp.Close(); err != nil {
		return nil, err
	}

	return openGrid(tmp.Name(), band)
}

func (h *HTTPIndex) download(ctx context.Context, location string, w io.Writer) error {
	resp, err := h.get(ctx, location)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	_, err = io.Copy(w, resp.Body)
	return err
}

func (h *HTTPIndex) get(ctx context.Context, location string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http.Get: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
	}

	return resp, nil
}
