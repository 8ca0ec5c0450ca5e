package repo

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const deploymentYAML = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: app
spec:
  replicas: 2
`

func TestDiscoverFilesFindsManifestsAndTerraform(t *testing.T) {
	root := t.TempDir()
	deploy := writeFile(t, root, "k8s/deploy.yaml", deploymentYAML)
	svc := writeFile(t, root, "k8s/svc.yml", "apiVersion: v1\nkind: Service\nmetadata:\n  name: s\n")
	tf := writeFile(t, root, "infra/main.tf", `resource "null_resource" "x" {}`)
	tfvars := writeFile(t, root, "infra/prod.tfvars", `region = "eu-west-1"`)
	writeFile(t, root, "docs/readme.md", "# docs")
	writeFile(t, root, "ci/pipeline.yaml", "stages:\n  - build\n  - test\n")

	files, err := DiscoverFiles(root, []FileType{FileTypeYAML, FileTypeTerraform})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{deploy, svc, tf, tfvars}, files)
}

func TestDiscoverFilesReturnsSortedOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.yaml", deploymentYAML)
	writeFile(t, root, "a.yaml", deploymentYAML)
	writeFile(t, root, "c.yaml", deploymentYAML)

	files, err := DiscoverFiles(root, []FileType{FileTypeYAML})
	require.NoError(t, err)
	assert.True(t, sort.StringsAreSorted(files))
	assert.Len(t, files, 3)
}

func TestDiscoverFilesFiltersByType(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "deploy.yaml", deploymentYAML)
	tf := writeFile(t, root, "main.tf", `resource "null_resource" "x" {}`)

	files, err := DiscoverFiles(root, []FileType{FileTypeTerraform})
	require.NoError(t, err)
	assert.Equal(t, []string{tf}, files)
}

func TestDiscoverFilesSkipsGitAndTerraformDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/objects/blob.yaml", deploymentYAML)
	writeFile(t, root, ".terraform/modules/mod.tf", `resource "x" "y" {}`)
	keep := writeFile(t, root, "deploy.yaml", deploymentYAML)

	files, err := DiscoverFiles(root, []FileType{FileTypeYAML, FileTypeTerraform})
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, files)
}

func TestIsKubernetesManifestDecisiveDecode(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "deploy.yaml", deploymentYAML)
	assert.True(t, isKubernetesManifest(path))
}

func TestIsKubernetesManifestRejectsPlainYAML(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "pipeline.yaml", "stages:\n  - build\n  - test\n")
	assert.False(t, isKubernetesManifest(path))
}

func TestIsKubernetesManifestIndicatorFallback(t *testing.T) {
	root := t.TempDir()
	// Multi-document files do not decode into a single map, so detection
	// falls back to content indicators.
	multi := "---\napiVersion: v1\nkind: ConfigMap\n---\napiVersion: v1\nkind: Secret\n"
	path := writeFile(t, root, "multi.yaml", multi)
	assert.True(t, isKubernetesManifest(path))
}

func TestIsKubernetesManifestRejectsOversizedFile(t *testing.T) {
	root := t.TempDir()
	big := deploymentYAML + strings.Repeat("# padding\n", manifestSizeLimit/10)
	path := writeFile(t, root, "big.yaml", big)
	assert.False(t, isKubernetesManifest(path))
}

func TestFindFilesRequiresClone(t *testing.T) {
	f := NewFetcher("https://example.com/repo.git")
	_, err := f.FindFiles([]FileType{FileTypeYAML})
	assert.Error(t, err)
}

func TestCleanupIsIdempotent(t *testing.T) {
	f := NewFetcher("https://example.com/repo.git")
	f.Cleanup()
	f.Cleanup()
}
