package discovery

import (
	"fmt"
	"strconv"

	"gram-vidya/internal/config"

	"github.com/golang/glog"
	"github.com/hashicorp/consul/api"
)

// ServiceRegistry registers this instance with the local Consul agent.
type ServiceRegistry struct {
	client *api.Client
	server config.ServerConfig
}

func NewServiceRegistry(cfg *config.Config) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Consul.Address

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}
	return &ServiceRegistry{client: client, server: cfg.Server}, nil
}

func (sr *ServiceRegistry) serviceID() string {
	return sr.server.ServiceID + "-http"
}

// Registration describes this instance with an HTTP health check on /api/health.
func (sr *ServiceRegistry) Registration() (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(sr.server.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP port %q: %w", sr.server.Port, err)
	}
	return &api.AgentServiceRegistration{
		ID:      sr.serviceID(),
		Name:    sr.server.ServiceName,
		Port:    port,
		Address: sr.server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/api/health", sr.server.ServiceAddress, sr.server.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
		Tags: []string{"learning", "quiz", "progress", "chat", "http"},
		Meta: map[string]string{
			"protocol": "http",
			"version":  "1.0",
		},
	}, nil
}

func (sr *ServiceRegistry) Register() error {
	reg, err := sr.Registration()
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("failed to register HTTP service with Consul: %w", err)
	}
	glog.Infof("Registered %s with Consul at %s:%d", reg.ID, reg.Address, reg.Port)
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	if err := sr.client.Agent().ServiceDeregister(sr.serviceID()); err != nil {
		return fmt.Errorf("failed to deregister %s: %w", sr.serviceID(), err)
	}
	glog.Infof("Deregistered %s from Consul", sr.serviceID())
	return nil
}
