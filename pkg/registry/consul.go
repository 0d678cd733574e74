package registry

import (
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type ConsulRegistry struct {
	client *api.Client
	log    *zap.SugaredLogger
}

type ConsulConfig struct {
	Address    string
	Scheme     string
	Datacenter string
}

type ServiceConfig struct {
	ID          string
	Name        string
	Tags        []string
	Address     string
	Port        int
	HealthCheck *HealthCheck
}

type HealthCheck struct {
	HTTP                           string
	Interval                       time.Duration
	Timeout                        time.Duration
	DeregisterCriticalServiceAfter time.Duration
}

func NewConsulRegistry(config *ConsulConfig, log *zap.SugaredLogger) (*ConsulRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = config.Address
	consulConfig.Scheme = config.Scheme
	consulConfig.Datacenter = config.Datacenter

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	if _, err = client.Status().Leader(); err != nil {
		return nil, fmt.Errorf("connect consul: %w", err)
	}
	log.Infow("consul connected", "address", config.Address)
	return &ConsulRegistry{client: client, log: log}, nil
}

func (r *ConsulRegistry) RegisterService(config *ServiceConfig) error {
	registration := &api.AgentServiceRegistration{
		ID:      config.ID,
		Name:    config.Name,
		Tags:    config.Tags,
		Address: config.Address,
		Port:    config.Port,
	}

	if config.HealthCheck != nil {
		registration.Check = &api.AgentServiceCheck{
			HTTP:                           config.HealthCheck.HTTP,
			Interval:                       config.HealthCheck.Interval.String(),
			Timeout:                        config.HealthCheck.Timeout.String(),
			DeregisterCriticalServiceAfter: config.HealthCheck.DeregisterCriticalServiceAfter.String(),
		}
	}

	if err := r.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("register service: %w", err)
	}

	r.log.Infow("service registered", "name", config.Name, "id", config.ID)
	return nil
}

func (r *ConsulRegistry) DeregisterService(serviceID string) error {
	if err := r.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("deregister service: %w", err)
	}
	r.log.Infow("service deregistered", "id", serviceID)
	return nil
}

// GetLocalIP reports the address the host would use for outbound traffic.
func GetLocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

func GenerateServiceID(serviceName string, port int) string {
	ip, _ := GetLocalIP()
	return fmt.Sprintf("%s-%s-%d", serviceName, ip, port)
}
