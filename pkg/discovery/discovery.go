// Package discovery registers the API instance in etcd under a leased key so
// edge proxies can resolve live backends.
package discovery

import (
	"context"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/example/localhands/pkg/config"
)

type ServiceRegistry struct {
	client *clientv3.Client
	config *config.EtcdConfig
}

type ServiceInstance struct {
	Name string
	Host string
	Port int
}

func NewServiceRegistry(cfg *config.EtcdConfig) (*ServiceRegistry, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &ServiceRegistry{
		client: cli,
		config: cfg,
	}, nil
}

// Register writes the instance under a lease and keeps it alive for the life
// of ctx. The key disappears on its own if the process dies.
func (sr *ServiceRegistry) Register(ctx context.Context, instance *ServiceInstance) error {
	key := sr.instanceKey(instance)
	value := fmt.Sprintf("%s:%d", instance.Host, instance.Port)

	lease, err := sr.client.Grant(ctx, sr.config.LeaseTTL)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	_, err = sr.client.Put(ctx, key, value, clientv3.WithLease(lease.ID))
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	ch, kaerr := sr.client.KeepAlive(ctx, lease.ID)
	if kaerr != nil {
		return fmt.Errorf("failed to keep alive: %w", kaerr)
	}

	go func() {
		for range ch {
		}
	}()

	return nil
}

func (sr *ServiceRegistry) Deregister(ctx context.Context, instance *ServiceInstance) error {
	_, err := sr.client.Delete(ctx, sr.instanceKey(instance))
	if err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	return nil
}

func (sr *ServiceRegistry) instanceKey(instance *ServiceInstance) string {
	return fmt.Sprintf("%s%s/%s:%d", sr.config.Prefix, instance.Name, instance.Host, instance.Port)
}

func (sr *ServiceRegistry) Close() error {
	return sr.client.Close()
}
