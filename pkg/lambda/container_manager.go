package lambda

import (
	"context"
	"sync"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/config"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/pkg/server"
)

// ContainerManager keeps the dependency container alive across warm
// invocations of a function instance. It holds configuration, logger and
// metrics only; database connections are still opened per invocation.
type ContainerManager struct {
	container   *server.Container
	mu          sync.RWMutex
	initialized bool
	config      *config.Config
}

var (
	globalContainerManager *ContainerManager
	containerManagerOnce   sync.Once
)

// GetContainerManager returns the global container manager instance
func GetContainerManager() *ContainerManager {
	containerManagerOnce.Do(func() {
		globalContainerManager = &ContainerManager{}
	})
	return globalContainerManager
}

// Initialize builds the container from configuration. Later calls are no-ops
// until Cleanup.
func (cm *ContainerManager) Initialize(cfg *config.Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.initialized {
		return nil
	}

	container, err := server.NewContainer(cfg)
	if err != nil {
		return err
	}

	cm.config = cfg
	cm.container = container
	cm.initialized = true
	return nil
}

// GetContainer returns the container, building it on first use from the
// configuration last passed to Initialize, or from the environment
func (cm *ContainerManager) GetContainer(ctx context.Context) (*server.Container, error) {
	cm.mu.RLock()
	if cm.initialized && cm.container != nil {
		container := cm.container
		cm.mu.RUnlock()
		return container, nil
	}
	cfg := cm.config
	cm.mu.RUnlock()

	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return nil, err
		}
	}
	if err := cm.Initialize(cfg); err != nil {
		return nil, err
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.container, nil
}

// Cleanup releases the container. The next GetContainer rebuilds it.
func (cm *ContainerManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		if err := cm.container.Close(); err != nil {
			return err
		}
		cm.container = nil
	}

	cm.initialized = false
	return nil
}
