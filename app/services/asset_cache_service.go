package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

// AssetCacheService keeps a versioned copy of the static assets so the
// kasir UI keeps working without a network. The same versioning rules
// drive the service worker it emits: install precaches the asset list
// under the current version, activate deletes every other version, fetch
// goes to the network and answers from the cache only when that fails.
type AssetCacheService struct {
	staticDir string
	cacheDir  string
	version   string
	logger    *LoggerService
}

// NewAssetCacheService creates a new asset cache service. An empty
// cacheDir defaults to a "cache" directory next to the static assets.
func NewAssetCacheService(staticDir, cacheDir, version string, logger *LoggerService) *AssetCacheService {
	if version == "" {
		version = "kasir-cache-v1"
	}
	if cacheDir == "" {
		cacheDir = filepath.Join(staticDir, "..", "cache")
	}
	return &AssetCacheService{
		staticDir: staticDir,
		cacheDir:  cacheDir,
		version:   version,
		logger:    logger,
	}
}

// Version returns the active cache version.
func (s *AssetCacheService) Version() string {
	return s.version
}

// Assets lists the cacheable static files as URL paths, sorted.
func (s *AssetCacheService) Assets() ([]string, error) {
	var assets []string
	err := filepath.Walk(s.staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.staticDir, path)
		if err != nil {
			return err
		}
		assets = append(assets, "/static/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list static assets: %w", err)
	}
	sort.Strings(assets)
	return assets, nil
}

// Install copies every static asset into the versioned cache directory.
func (s *AssetCacheService) Install() error {
	versionDir := filepath.Join(s.cacheDir, s.version)
	if err := os.MkdirAll(versionDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	err := filepath.Walk(s.staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.staticDir, path)
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(versionDir, rel))
	})
	if err != nil {
		return fmt.Errorf("failed to install asset cache: %w", err)
	}

	if s.logger != nil {
		s.logger.LogInfo("Asset cache installed", s.version)
	}
	return nil
}

// Activate removes every cache version except the current one.
func (s *AssetCacheService) Activate() error {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == s.version {
			continue
		}
		stale := filepath.Join(s.cacheDir, entry.Name())
		if err := os.RemoveAll(stale); err != nil {
			return fmt.Errorf("failed to remove stale cache %s: %w", entry.Name(), err)
		}
		if s.logger != nil {
			s.logger.LogInfo("Removed stale asset cache", entry.Name())
		}
	}
	return nil
}

// Fetch returns the live static file, falling back to the versioned
// cached copy only when the live file cannot be read.
func (s *AssetCacheService) Fetch(urlPath string) ([]byte, error) {
	rel := strings.TrimPrefix(urlPath, "/static/")
	rel = filepath.Clean(filepath.FromSlash(rel))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("invalid asset path %q", urlPath)
	}

	if data, err := os.ReadFile(filepath.Join(s.staticDir, rel)); err == nil {
		return data, nil
	}

	data, err := os.ReadFile(filepath.Join(s.cacheDir, s.version, rel))
	if err != nil {
		return nil, fmt.Errorf("asset %s not found: %w", urlPath, err)
	}
	return data, nil
}

var serviceWorkerTemplate = template.Must(template.New("sw").Parse(`const CACHE_NAME = '{{.Version}}';
const ASSETS = [
{{- range .Assets}}
  '{{.}}',
{{- end}}
];

self.addEventListener('install', function (event) {
  event.waitUntil(
    caches.open(CACHE_NAME).then(function (cache) {
      return cache.addAll(ASSETS);
    })
  );
});

self.addEventListener('activate', function (event) {
  event.waitUntil(
    caches.keys().then(function (names) {
      return Promise.all(
        names.filter(function (name) {
          return name !== CACHE_NAME;
        }).map(function (name) {
          return caches.delete(name);
        })
      );
    })
  );
});

self.addEventListener('fetch', function (event) {
  event.respondWith(
    fetch(event.request).catch(function () {
      return caches.match(event.request);
    })
  );
});
`))

var installPromptTemplate = template.Must(template.New("pwa").Parse(`if ('serviceWorker' in navigator) {
  navigator.serviceWorker.register('/service-worker.js');
}

var deferredPrompt = null;
window.addEventListener('beforeinstallprompt', function (event) {
  event.preventDefault();
  deferredPrompt = event;
  var button = document.getElementById('install-app');
  if (button) {
    button.style.display = 'block';
    button.addEventListener('click', function () {
      button.style.display = 'none';
      deferredPrompt.prompt();
      deferredPrompt = null;
    });
  }
});
`))

// ServiceWorkerJS renders the service worker with the current version
// and asset list baked in.
func (s *AssetCacheService) ServiceWorkerJS() ([]byte, error) {
	assets, err := s.Assets()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	err = serviceWorkerTemplate.Execute(&b, struct {
		Version string
		Assets  []string
	}{s.version, assets})
	if err != nil {
		return nil, fmt.Errorf("failed to render service worker: %w", err)
	}
	return []byte(b.String()), nil
}

// InstallPromptJS renders the client script that registers the service
// worker and wires the install button.
func (s *AssetCacheService) InstallPromptJS() ([]byte, error) {
	var b strings.Builder
	if err := installPromptTemplate.Execute(&b, nil); err != nil {
		return nil, fmt.Errorf("failed to render install prompt script: %w", err)
	}
	return []byte(b.String()), nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
