// Package wordlist loads the ordered word lists that drive every search:
// passwords, usernames, candidate auth paths and directory names.
//
// Sources are a local file (optionally .gz), an http(s) URL, or a built-in
// list named "builtin:<name>". Blank lines and lines starting with "#" are
// skipped and counted in Wordlist.Skipped. Order and duplicates are
// preserved.
package wordlist

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/duration"
	"github.com/authprobe/authprobe/pkg/httpclient"
	"github.com/authprobe/authprobe/pkg/iohelper"
	"github.com/spaolacci/murmur3"
)

// BuiltinPrefix marks a built-in source.
const BuiltinPrefix = "builtin:"

// Wordlist represents a loaded wordlist
type Wordlist struct {
	Name   string       `json:"name"`
	Source string       `json:"source"`
	Words  []string     `json:"words,omitempty"`
	Size   int          `json:"size"`
	Type   WordlistType `json:"type"`
	Loaded time.Time    `json:"loaded"`
	// Skipped counts "#" lines dropped while reading.
	Skipped int `json:"skipped,omitempty"`
}

// WordlistType defines the type of wordlist
type WordlistType string

const (
	TypeGeneral     WordlistType = "general"
	TypeDirectories WordlistType = "directories"
	TypeUsernames   WordlistType = "usernames"
	TypePasswords   WordlistType = "passwords"
	TypeAPI         WordlistType = "api"
)

// Manager handles wordlist loading and caching
type Manager struct {
	mu         sync.RWMutex
	cache      map[string]*Wordlist
	cacheDir   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Config for the wordlist manager
type Config struct {
	// CacheDir holds downloaded lists. Empty disables the on-disk cache.
	CacheDir        string
	DownloadTimeout time.Duration
	// Proxy is used for downloads.
	Proxy  string
	Logger *slog.Logger
}

// NewManager creates a new wordlist manager
func NewManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = &Config{}
	}
	hc := httpclient.WithTimeout(duration.HTTPWordlist)
	if cfg.DownloadTimeout > 0 {
		hc.Timeout = cfg.DownloadTimeout
	}
	hc.Proxy = cfg.Proxy
	hc.FollowRedirects = true

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cache:      make(map[string]*Wordlist),
		cacheDir:   cfg.CacheDir,
		httpClient: httpclient.New(hc),
		logger:     logger,
	}

	if m.cacheDir != "" {
		if err := os.MkdirAll(m.cacheDir, 0o755); err != nil {
			logger.Warn("wordlist: failed to create cache directory",
				slog.String("path", m.cacheDir),
				slog.String("error", err.Error()))
			m.cacheDir = ""
		}
	}

	return m
}

// Load loads a wordlist from a built-in name, URL or file. A source that
// yields no words returns ErrEmpty.
func (m *Manager) Load(ctx context.Context, source string) (*Wordlist, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrNoSource
	}

	m.mu.RLock()
	if wl, ok := m.cache[source]; ok {
		m.mu.RUnlock()
		return wl, nil
	}
	m.mu.RUnlock()

	var (
		wl  *Wordlist
		err error
	)
	switch {
	case strings.HasPrefix(source, BuiltinPrefix):
		wl, err = loadBuiltIn(strings.TrimPrefix(source, BuiltinPrefix))
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		wl, err = m.loadFromURL(ctx, source)
	default:
		wl, err = loadFromFile(source)
	}
	if err != nil {
		return nil, err
	}
	if len(wl.Words) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, source)
	}
	wl.Source = source

	m.mu.Lock()
	m.cache[source] = wl
	m.mu.Unlock()

	m.logger.Debug("wordlist loaded", slog.String("source", source), slog.Int("words", wl.Size))
	m.logSkipped(wl)
	return wl, nil
}

// LoadMultiple loads each source in order and concatenates the words.
// Duplicates across sources are kept.
func (m *Manager) LoadMultiple(ctx context.Context, sources []string) (*Wordlist, error) {
	var all []string
	names := make([]string, 0, len(sources))

	for _, source := range sources {
		wl, err := m.Load(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", source, err)
		}
		all = append(all, wl.Words...)
		names = append(names, wl.Name)
	}
	if len(all) == 0 {
		return nil, ErrEmpty
	}

	return &Wordlist{
		Name:   strings.Join(names, "+"),
		Source: strings.Join(sources, ","),
		Words:  all,
		Size:   len(all),
		Type:   TypeGeneral,
		Loaded: time.Now(),
	}, nil
}

// logSkipped reports dropped "#" lines. Password lists warn, since an entry
// such as "#1password" is never tried.
func (m *Manager) logSkipped(wl *Wordlist) {
	if wl.Skipped == 0 {
		return
	}
	level := slog.LevelInfo
	if wl.Type == TypePasswords {
		level = slog.LevelWarn
	}
	m.logger.Log(context.Background(), level, "wordlist: skipped comment lines",
		slog.String("source", wl.Source),
		slog.Int("skipped", wl.Skipped))
}

func loadBuiltIn(name string) (*Wordlist, error) {
	b, ok := builtIns[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBuiltin, name, strings.Join(ListBuiltIn(), ", "))
	}
	words := append([]string(nil), b.words...)
	return &Wordlist{
		Name:   BuiltinPrefix + strings.ToLower(name),
		Words:  words,
		Size:   len(words),
		Type:   b.typ,
		Loaded: time.Now(),
	}, nil
}

func loadFromFile(path string) (*Wordlist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wordlist: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	words, skipped, err := readLines(reader)
	if err != nil {
		return nil, err
	}

	return &Wordlist{
		Name:    filepath.Base(path),
		Words:   words,
		Size:    len(words),
		Type:    detectWordlistType(path),
		Loaded:  time.Now(),
		Skipped: skipped,
	}, nil
}

// maxWordlistSize bounds a downloaded list (100 MB).
const maxWordlistSize = 100 << 20

func (m *Manager) loadFromURL(ctx context.Context, url string) (*Wordlist, error) {
	var cachePath string
	if m.cacheDir != "" {
		cachePath = filepath.Join(m.cacheDir, cacheFileName(url))
		if info, err := os.Stat(cachePath); err == nil && time.Since(info.ModTime()) < duration.WordlistCacheTTL {
			wl, err := loadFromFile(cachePath)
			if err == nil {
				wl.Name = filepath.Base(url)
				wl.Type = detectWordlistType(url)
				return wl, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	req.Header.Set("User-Agent", defaults.UserAgent("wordlist"))

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", httpclient.Classify(err))
	}
	defer iohelper.DrainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrDownload, url, resp.StatusCode)
	}

	var reader io.Reader = io.LimitReader(resp.Body, maxWordlistSize)
	if strings.HasSuffix(url, ".gz") {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	words, skipped, err := readLines(reader)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		m.writeCache(cachePath, words)
	}

	return &Wordlist{
		Name:    filepath.Base(url),
		Words:   words,
		Size:    len(words),
		Type:    detectWordlistType(url),
		Loaded:  time.Now(),
		Skipped: skipped,
	}, nil
}

// writeCache stores words as plain text. Failures only cost a re-download.
func (m *Manager) writeCache(path string, words []string) {
	data := strings.Join(words, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		m.logger.Debug("wordlist: cache write failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// readLines reads one word per line, trimming whitespace. Blank lines are
// dropped and "#" lines are dropped and counted.
func readLines(r io.Reader) (words []string, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, defaults.BufferLarge), defaults.BufferHuge)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "#"):
			skipped++
		default:
			words = append(words, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("error reading wordlist: %w", err)
	}
	return words, skipped, nil
}

// ListBuiltIn returns the names of the built-in wordlists, sorted.
func ListBuiltIn() []string {
	names := make([]string, 0, len(builtIns))
	for name := range builtIns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltInSize returns the number of words in a built-in list, or 0.
func BuiltInSize(name string) int {
	return len(builtIns[name].words)
}

func detectWordlistType(path string) WordlistType {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "user"):
		return TypeUsernames
	case strings.Contains(name, "pass"), strings.Contains(name, "pwd"):
		return TypePasswords
	case strings.Contains(name, "dir"), strings.Contains(name, "folder"):
		return TypeDirectories
	case strings.Contains(name, "api"), strings.Contains(name, "auth"):
		return TypeAPI
	}
	return TypeGeneral
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// maxCacheNameTail bounds the readable part of a cache file name.
const maxCacheNameTail = 64

// cacheFileName keys the on-disk copy of url by a murmur3 hash of the full
// URL. The readable tail is the end of the URL with any .gz removed, since
// cached copies are stored as plain text.
func cacheFileName(url string) string {
	h1, h2 := murmur3.Sum128([]byte(url))
	tail := unsafeFilename.ReplaceAllString(strings.TrimSuffix(url, ".gz"), "_")
	if len(tail) > maxCacheNameTail {
		tail = tail[len(tail)-maxCacheNameTail:]
	}
	return fmt.Sprintf("%016x%016x-%s", h1, h2, tail)
}
