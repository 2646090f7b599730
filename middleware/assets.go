package middleware

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// StaticAssets lists the files under the static root whose URLs carry a version.
var StaticAssets = []string{
	"css/app.css",
	"js/app.js",
	"images/favicon.png",
}

var (
	assetVersions   map[string]string
	assetVersionsMu sync.RWMutex
)

// InitAssetVersions hashes each asset under root for cache busting.
// Missing files get version "1".
func InitAssetVersions(root string, files ...string) {
	versions := make(map[string]string, len(files))
	for _, f := range files {
		v := computeFileHash(filepath.Join(root, f))
		if v == "" {
			v = "1"
		}
		versions[f] = v
	}

	assetVersionsMu.Lock()
	assetVersions = versions
	assetVersionsMu.Unlock()
	log.Printf("[INFO] Asset versions initialized: %d files", len(versions))
}

// computeFileHash returns the first 8 characters of the MD5 hash of a file
func computeFileHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("[WARNING] Failed to open file for hashing %s: %v", path, err)
		return ""
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		log.Printf("[WARNING] Failed to hash file %s: %v", path, err)
		return ""
	}

	return hex.EncodeToString(hash.Sum(nil))[:8]
}

// AssetVersion returns the hash recorded for file, or "1" when unknown.
// ctx is accepted so templates can call it like the other request helpers.
func AssetVersion(ctx context.Context, file string) string {
	assetVersionsMu.RLock()
	defer assetVersionsMu.RUnlock()
	if v, ok := assetVersions[file]; ok {
		return v
	}
	return "1"
}

// AssetURL returns the versioned /static URL of file.
func AssetURL(ctx context.Context, file string) string {
	return "/static/" + file + "?v=" + AssetVersion(ctx, file)
}
