package data

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"devicefailure/internal/errs"
)

// CachePolicy decides whether the loader may reuse, must refresh, or must
// never fetch the cached copy of the dataset.
type CachePolicy int

const (
	CacheReuse CachePolicy = iota
	CacheRefresh
	CacheOffline
)

func (p CachePolicy) String() string {
	switch p {
	case CacheRefresh:
		return "refresh"
	case CacheOffline:
		return "offline"
	default:
		return "reuse"
	}
}

func ParseCachePolicy(s string) (CachePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reuse":
		return CacheReuse, nil
	case "refresh":
		return CacheRefresh, nil
	case "offline":
		return CacheOffline, nil
	}
	return CacheReuse, errs.Config("cache_policy", "unknown policy %q (want reuse|refresh|offline)", s)
}

type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

type HTTPFetcher struct {
	Client *http.Client
}

func (f HTTPFetcher) Fetch(url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

type Loader struct {
	URL       string
	CachePath string
	Policy    CachePolicy
	Fetcher   Fetcher
}

func NewLoader(url, cachePath string, policy CachePolicy) *Loader {
	return &Loader{URL: url, CachePath: cachePath, Policy: policy, Fetcher: HTTPFetcher{}}
}

// Load returns the parsed dataset. Fetched bytes are persisted verbatim
// before parsing, so a later reuse reads exactly what was downloaded.
func (l *Loader) Load() (*Dataset, error) {
	raw, err := l.raw()
	if err != nil {
		return nil, err
	}
	return ReadCSV(bytes.NewReader(raw))
}

// Fetched reports whether Load would go to the network under the current policy.
func (l *Loader) Fetched() bool {
	if l.Policy == CacheRefresh {
		return true
	}
	if l.Policy == CacheOffline {
		return false
	}
	_, err := os.Stat(l.CachePath)
	return errors.Is(err, fs.ErrNotExist)
}

func (l *Loader) raw() ([]byte, error) {
	if !l.Fetched() {
		b, err := os.ReadFile(l.CachePath)
		if err != nil {
			return nil, &errs.IOError{Op: "read cache", Path: l.CachePath, Err: err}
		}
		return b, nil
	}
	if l.URL == "" {
		return nil, &errs.IOError{Op: "fetch", Path: l.CachePath, Err: errors.New("no source url configured")}
	}
	fetcher := l.Fetcher
	if fetcher == nil {
		fetcher = HTTPFetcher{}
	}
	b, err := fetcher.Fetch(l.URL)
	if err != nil {
		return nil, &errs.IOError{Op: "fetch", Path: l.URL, Err: err}
	}
	if err := writeAtomic(l.CachePath, b); err != nil {
		return nil, &errs.IOError{Op: "write cache", Path: l.CachePath, Err: err}
	}
	return b, nil
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
