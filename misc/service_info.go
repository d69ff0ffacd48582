package misc

import "os"

const serviceName = "payflow"

func GetServiceName() string {
	return serviceName
}

// GetServiceInstance hostname is unique enough for one instance per container
func GetServiceInstance() string {
	hostname, err := os.Hostname()
	if err != nil {
		return serviceName + "-unknown"
	}
	return hostname
}
