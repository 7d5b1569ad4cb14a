// Package hub implements the alias catalog and local model-file lookups
// the chat-completion pipeline consumes (spec.md §4.3). The hub downloader
// that populates the on-disk cache is out of scope at serve time; this
// package only performs deterministic, side-effect-free lookups against
// whatever is already on disk.
package hub

import (
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"bodhi/internal/objs"
)

// Adapter resolves aliases and local model files against an on-disk
// $BODHI_HOME alias catalog and an $HF_HOME model cache.
type Adapter struct {
	bodhiHome string
	hfHome    string

	mu      sync.RWMutex
	aliases map[string]objs.Alias

	fileCache *lru.Cache[string, *objs.LocalModelFile]
	group     singleflight.Group
}

// New constructs an Adapter rooted at bodhiHome (the alias catalog
// directory) and hfHome (the Hugging Face model cache).
func New(bodhiHome, hfHome string) (*Adapter, error) {
	cache, err := lru.New[string, *objs.LocalModelFile](256)
	if err != nil {
		return nil, err
	}
	a := &Adapter{
		bodhiHome: bodhiHome,
		hfHome:    hfHome,
		aliases:   make(map[string]objs.Alias),
		fileCache: cache,
	}
	if err := a.reloadCatalog(); err != nil {
		return nil, err
	}
	return a, nil
}

// HFHome returns the absolute path to the Hugging Face model cache, for
// diagnostics (spec.md §4.3).
func (a *Adapter) HFHome() string {
	return a.hfHome
}

// aliasesDir is the subdirectory of $BODHI_HOME holding one YAML file per
// alias.
const aliasesDir = "aliases"

func (a *Adapter) catalogDir() string {
	return filepath.Join(a.bodhiHome, aliasesDir)
}

// reloadCatalog re-reads every alias YAML file under $BODHI_HOME/aliases.
func (a *Adapter) reloadCatalog() error {
	dir := a.catalogDir()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		a.mu.Lock()
		a.aliases = make(map[string]objs.Alias)
		a.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}

	loaded := make(map[string]objs.Alias, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		alias, err := loadAliasFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		loaded[alias.Alias] = alias
	}

	a.mu.Lock()
	a.aliases = loaded
	a.mu.Unlock()
	return nil
}

func loadAliasFile(path string) (objs.Alias, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return objs.Alias{}, err
	}
	var alias objs.Alias
	if err := yaml.Unmarshal(data, &alias); err != nil {
		return objs.Alias{}, err
	}
	return alias, nil
}

// SaveAlias writes alias to $BODHI_HOME/aliases/<alias>.yaml, round-tripping
// through YAML, and refreshes the in-memory catalog (spec.md §8 invariant:
// alias YAML round-trip).
func (a *Adapter) SaveAlias(alias objs.Alias) error {
	dir := a.catalogDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(alias)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, alias.Alias+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	a.mu.Lock()
	a.aliases[alias.Alias] = alias
	a.mu.Unlock()
	return nil
}

// FindAlias looks up an alias by name, returning ok=false if none exists.
func (a *Adapter) FindAlias(name string) (objs.Alias, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	alias, ok := a.aliases[name]
	return alias, ok
}

// ListAliases returns every alias in the catalog.
func (a *Adapter) ListAliases() []objs.Alias {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]objs.Alias, 0, len(a.aliases))
	for _, alias := range a.aliases {
		out = append(out, alias)
	}
	return out
}

// ModelFilePath returns the absolute path a (repo, filename, snapshot)
// triple resolves to under $HF_HOME, independent of whether the file
// actually exists (spec.md §4.3, used for diagnostics).
func (a *Adapter) ModelFilePath(repo, filename, snapshot string) string {
	return objs.ModelFilePath(a.hfHome, repo, filename, snapshot)
}

// FindLocalFile locates a (repo, filename, snapshot) triple on disk,
// returning ok=false if it is absent. Concurrent lookups for the same
// triple collapse onto a single stat call via singleflight.
func (a *Adapter) FindLocalFile(repo, filename, snapshot string) (objs.LocalModelFile, bool) {
	key := repo + "/" + filename + "@" + snapshot
	if cached, ok := a.fileCache.Get(key); ok {
		return *cached, true
	}

	result, _, _ := a.group.Do(key, func() (any, error) {
		file := objs.LocalModelFile{HFCacheRoot: a.hfHome, Repo: repo, Filename: filename, Snapshot: snapshot}
		info, err := os.Stat(file.Path())
		if err != nil {
			return (*objs.LocalModelFile)(nil), nil
		}
		file.Size = info.Size()
		a.fileCache.Add(key, &file)
		return &file, nil
	})

	file, _ := result.(*objs.LocalModelFile)
	if file == nil {
		return objs.LocalModelFile{}, false
	}
	return *file, true
}
