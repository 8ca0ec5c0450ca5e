// Package repo acquires git repositories for validation and discovers the
// Kubernetes and Terraform files inside them.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"gopkg.in/yaml.v3"
)

// FileType selects which artifact kinds discovery returns.
type FileType string

const (
	FileTypeYAML      FileType = "yaml"
	FileTypeTerraform FileType = "terraform"
)

// Fetcher clones a repository into a temp directory and cleans it up after
// the run.
type Fetcher struct {
	url     string
	tempDir string
	path    string
}

// NewFetcher creates a fetcher for the given repository URL.
func NewFetcher(url string) *Fetcher {
	return &Fetcher{url: url}
}

// Clone performs a shallow, single-branch clone. If the requested branch
// does not exist the clone is retried against the remote default branch.
// The context bounds the whole clone, including the retry.
func (f *Fetcher) Clone(ctx context.Context, branch string) (string, error) {
	tempDir, err := os.MkdirTemp("", "kubevalid-repo-")
	if err != nil {
		return "", fmt.Errorf("creating clone dir: %w", err)
	}
	f.tempDir = tempDir

	opts := &git.CloneOptions{
		URL:          f.url,
		Depth:        1,
		SingleBranch: true,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	_, err = git.PlainCloneContext(ctx, tempDir, false, opts)
	if err != nil && branch != "" {
		// Retry on the remote default branch in case the requested one
		// does not exist.
		opts.ReferenceName = ""
		_, err = git.PlainCloneContext(ctx, tempDir, false, opts)
	}
	if err != nil {
		f.Cleanup()
		return "", fmt.Errorf("cloning %s: %w", f.url, err)
	}

	f.path = tempDir
	return tempDir, nil
}

// Path returns the local checkout path, empty before Clone succeeds.
func (f *Fetcher) Path() string {
	return f.path
}

// Cleanup removes the temporary checkout. Safe to call more than once.
func (f *Fetcher) Cleanup() {
	if f.tempDir == "" {
		return
	}
	if err := os.RemoveAll(f.tempDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not clean up %s: %v\n", f.tempDir, err)
		return
	}
	f.tempDir = ""
	f.path = ""
}

// FindFiles walks the checkout and returns the sorted list of files matching
// the requested types: Kubernetes manifests for yaml, .tf/.tfvars for
// terraform. The sorted order makes batch partitioning deterministic.
func (f *Fetcher) FindFiles(types []FileType) ([]string, error) {
	if f.path == "" {
		return nil, fmt.Errorf("repository has not been cloned")
	}
	return DiscoverFiles(f.path, types)
}

// DiscoverFiles searches a directory tree for validatable files.
func DiscoverFiles(root string, types []FileType) ([]string, error) {
	wantYAML, wantTF := false, false
	for _, t := range types {
		switch t {
		case FileTypeYAML:
			wantYAML = true
		case FileTypeTerraform:
			wantTF = true
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Never descend into git metadata or terraform caches.
			if d.Name() == ".git" || d.Name() == ".terraform" {
				return filepath.SkipDir
			}
			return nil
		}

		switch ext := filepath.Ext(path); {
		case wantYAML && (ext == ".yaml" || ext == ".yml"):
			if isKubernetesManifest(path) {
				files = append(files, path)
			}
		case wantTF && (ext == ".tf" || ext == ".tfvars"):
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// manifestSizeLimit skips very large YAML files, which are almost never
// hand-written Kubernetes manifests.
const manifestSizeLimit = 1 << 20

// kubernetesIndicators are content markers used when YAML decoding cannot
// settle the question (multi-document files, templated manifests).
var kubernetesIndicators = []string{
	"apiversion:", "kind:", "metadata:", "spec:",
	"deployment", "service", "configmap", "statefulset",
	"daemonset", "cronjob", "ingress", "namespace",
}

// isKubernetesManifest reports whether a YAML file looks like a Kubernetes
// manifest. A clean decode exposing both apiVersion and kind is decisive;
// otherwise at least two indicator strings must appear in the content.
func isKubernetesManifest(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() > manifestSizeLimit {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		_, hasAPIVersion := doc["apiVersion"]
		_, hasKind := doc["kind"]
		if hasAPIVersion && hasKind {
			return true
		}
	}

	content := strings.ToLower(string(data))
	hits := 0
	for _, indicator := range kubernetesIndicators {
		if strings.Contains(content, indicator) {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return false
}
