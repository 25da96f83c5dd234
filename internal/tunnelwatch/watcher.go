package tunnelwatch

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"
)

const (
	DefaultInterval = 10 * time.Second
	logTail         = "100"
	serviceLabel    = "cloudpub.service"
)

// Сервисы, которые перечитывают .env при перезапуске.
var restartServices = []string{"server", "client", "admin-client"}

// DockerAPI - подмножество клиента Docker, нужное наблюдателю.
type DockerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
}

// Watcher следит за логами контейнеров туннеля и записывает найденные адреса в .env.
type Watcher struct {
	docker   DockerAPI
	env      *EnvFile
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	attached map[string]struct{}
	wg       sync.WaitGroup
}

func NewWatcher(docker DockerAPI, env *EnvFile, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		docker:   docker,
		env:      env,
		interval: interval,
		logger:   logger,
		attached: make(map[string]struct{}),
	}
}

// Run опрашивает список контейнеров до отмены ctx и ждёт завершения подписок на логи.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Scan(ctx)
		select {
		case <-ctx.Done():
			w.wg.Wait()
			return
		case <-ticker.C:
		}
	}
}

// Scan подключает по одному читателю логов к каждому новому контейнеру туннеля.
func (w *Watcher) Scan(ctx context.Context) {
	containers, err := w.docker.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		w.logger.Warn("Не удалось получить список контейнеров", zap.Error(err))
		return
	}
	for _, c := range containers {
		name := containerName(c)
		if !IsTarget(name) || !w.markAttached(c.ID) {
			continue
		}
		key := KeyForContainer(name)
		w.logger.Info("Подписка на логи контейнера", zap.String("container", name), zap.String("key", key))

		w.wg.Add(1)
		go func(id, name, key string) {
			defer w.wg.Done()
			w.follow(ctx, id, name, key)
		}(c.ID, name, key)
	}
}

func (w *Watcher) markAttached(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.attached[id]; ok {
		return false
	}
	w.attached[id] = struct{}{}
	return true
}

func (w *Watcher) detach(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attached, id)
}

func (w *Watcher) follow(ctx context.Context, id, name, key string) {
	// После обрыва потока контейнер снова подхватит следующий Scan.
	defer w.detach(id)

	logs, err := w.docker.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       logTail,
	})
	if err != nil {
		w.logger.Warn("Не удалось открыть логи", zap.String("container", name), zap.Error(err))
		return
	}
	defer logs.Close()

	// Без TTY Docker мультиплексирует stdout и stderr, stdcopy снимает заголовки кадров.
	pr, pw := io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(pw, pw, logs)
		pw.CloseWithError(err)
	}()
	w.HandleLog(ctx, pr, key)
}

// HandleLog читает поток логов построчно и применяет каждый найденный адрес.
func (w *Watcher) HandleLog(ctx context.Context, r io.Reader, key string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		url, ok := PickURL(ExtractURLs(scanner.Text()))
		if !ok {
			continue
		}
		w.apply(ctx, key, url)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		w.logger.Debug("Поток логов прерван", zap.String("key", key), zap.Error(err))
	}
}

func (w *Watcher) apply(ctx context.Context, key, url string) {
	changed, err := w.env.Set(map[string]string{key: url})
	if err != nil {
		w.logger.Error("Не удалось обновить .env", zap.String("path", w.env.Path()), zap.Error(err))
		return
	}
	if !changed {
		return
	}
	w.logger.Info("Адрес туннеля обновлён", zap.String("key", key), zap.String("url", url))
	w.RestartServices(ctx)
}

// RestartServices перезапускает контейнеры с меткой cloudpub.service, чтобы они перечитали .env.
func (w *Watcher) RestartServices(ctx context.Context) {
	for _, svc := range restartServices {
		list, err := w.docker.ContainerList(ctx, container.ListOptions{
			All:     true,
			Filters: filters.NewArgs(filters.Arg("label", serviceLabel+"="+svc)),
		})
		if err != nil {
			w.logger.Warn("Не удалось найти контейнеры сервиса", zap.String("service", svc), zap.Error(err))
			continue
		}
		for _, c := range list {
			if err := w.docker.ContainerRestart(ctx, c.ID, container.StopOptions{}); err != nil {
				w.logger.Warn("Не удалось перезапустить контейнер", zap.String("container", containerName(c)), zap.Error(err))
				continue
			}
			w.logger.Info("Контейнер перезапущен", zap.String("container", containerName(c)))
		}
	}
}

func containerName(c container.Summary) string {
	if len(c.Names) > 0 {
		return strings.TrimPrefix(c.Names[0], "/")
	}
	return c.ID
}
