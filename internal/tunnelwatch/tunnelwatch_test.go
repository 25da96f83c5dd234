package tunnelwatch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractURLs(t *testing.T) {
	line := `tunnel ready: http://abc.cloudpub.ru/ and https://abc.cloudpub.ru/ (other: https://example.com)`
	urls := ExtractURLs(line)
	assert.Equal(t, []string{"http://abc.cloudpub.ru", "https://abc.cloudpub.ru"}, urls)

	url, ok := PickURL(urls)
	require.True(t, ok)
	assert.Equal(t, "https://abc.cloudpub.ru", url)

	url, ok = PickURL([]string{"http://only.cloudpub.ru"})
	require.True(t, ok)
	assert.Equal(t, "http://only.cloudpub.ru", url)

	_, ok = PickURL(ExtractURLs("nothing here"))
	assert.False(t, ok)
}

func TestKeyForContainer(t *testing.T) {
	assert.Equal(t, KeyServerURL, KeyForContainer("pedant-cloudpub-server-1"))
	assert.Equal(t, KeyAdminURL, KeyForContainer("Cloudpub-Admin"))
	assert.Equal(t, KeyClientURL, KeyForContainer("cloudpub-client"))

	assert.True(t, IsTarget("x-cloudpub-admin-1"))
	assert.False(t, IsTarget("postgres"))
}

func TestEnvFile_PreservesCommentsAndOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	original := "# туннели\nPORT=8080\nCLOUDPUB_CLIENT_URL=https://old.cloudpub.ru\n\n# конец\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	env := NewEnvFile(path)
	changed, err := env.Set(map[string]string{
		KeyClientURL: "https://new.cloudpub.ru/",
		KeyServerURL: "https://api.cloudpub.ru",
	})
	require.NoError(t, err)
	assert.True(t, changed)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"# туннели\nPORT=8080\nCLOUDPUB_CLIENT_URL=https://new.cloudpub.ru\n\n# конец\nCLOUDPUB_SERVER_URL=https://api.cloudpub.ru\n",
		string(raw))

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, original, string(backup))

	changed, err = env.Set(map[string]string{KeyClientURL: "https://new.cloudpub.ru"})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestEnvFile_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	changed, err := NewEnvFile(path).Set(map[string]string{KeyAdminURL: "https://adm.cloudpub.ru"})
	require.NoError(t, err)
	assert.True(t, changed)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CLOUDPUB_ADMIN_URL=https://adm.cloudpub.ru\n", string(raw))
	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))
}

type fakeDocker struct {
	mu        sync.Mutex
	labelled  map[string][]container.Summary
	restarted []string
}

func (f *fakeDocker) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	labels := options.Filters.Get("label")
	if len(labels) == 0 {
		return nil, nil
	}
	return f.labelled[labels[0]], nil
}

func (f *fakeDocker) ContainerLogs(ctx context.Context, id string, options container.LogsOptions) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeDocker) ContainerRestart(ctx context.Context, id string, options container.StopOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarted = append(f.restarted, id)
	return nil
}

func TestWatcher_HandleLogRestartsOnChange(t *testing.T) {
	docker := &fakeDocker{labelled: map[string][]container.Summary{
		"cloudpub.service=server":       {{ID: "srv", Names: []string{"/server"}}},
		"cloudpub.service=admin-client": {{ID: "adm", Names: []string{"/admin"}}},
	}}
	path := filepath.Join(t.TempDir(), ".env")
	w := NewWatcher(docker, NewEnvFile(path), 0, zap.NewNop())

	logs := "starting\nhttps://web.cloudpub.ru/ is up\nhttps://web.cloudpub.ru again\n"
	w.HandleLog(context.Background(), strings.NewReader(logs), KeyClientURL)

	assert.Equal(t, []string{"srv", "adm"}, docker.restarted)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CLOUDPUB_CLIENT_URL=https://web.cloudpub.ru\n", string(raw))
}
