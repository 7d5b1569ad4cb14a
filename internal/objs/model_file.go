package objs

import (
	"path/filepath"
	"strings"
)

// LocalModelFile is a resolved on-disk GGUF artifact, located under the
// Hugging Face cache layout:
// $HF_HOME/hub/models--<owner>--<repo>/snapshots/<sha>/<filename>
type LocalModelFile struct {
	HFCacheRoot string
	Repo        string
	Filename    string
	Snapshot    string
	Size        int64
}

// hubDirName converts an "owner/repo" identifier into the hub cache's
// "models--owner--repo" directory naming convention.
func hubDirName(repo string) string {
	owner, name, found := strings.Cut(repo, "/")
	if !found {
		return "models--" + repo
	}
	return "models--" + owner + "--" + name
}

// Path returns the absolute location of the model file.
func (f LocalModelFile) Path() string {
	return filepath.Join(f.HFCacheRoot, "hub", hubDirName(f.Repo), "snapshots", f.Snapshot, f.Filename)
}

// SnapshotDir returns the absolute directory containing the resolved
// snapshot.
func (f LocalModelFile) SnapshotDir() string {
	return filepath.Join(f.HFCacheRoot, "hub", hubDirName(f.Repo), "snapshots", f.Snapshot)
}

// RelSnapshotDir returns the snapshot directory relative to $HF_HOME, for
// the FileMissing diagnostic spec.md §4.3 requires.
func (f LocalModelFile) RelSnapshotDir() string {
	return filepath.Join("hub", hubDirName(f.Repo), "snapshots", f.Snapshot)
}

// ModelFilePath computes the absolute path a (repo, filename, snapshot)
// triple would resolve to, without requiring the file to exist.
// hub.Adapter.ModelFilePath exposes it for diagnostics; the FileMissing
// message itself is built from RelSnapshotDir.
func ModelFilePath(hfCacheRoot, repo, filename, snapshot string) string {
	return filepath.Join(hfCacheRoot, "hub", hubDirName(repo), "snapshots", snapshot, filename)
}
