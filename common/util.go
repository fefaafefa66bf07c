package common

import (
	"net"
)

const (
	APIPing        = "/ping"
	APIInfo        = "/info"
	APIStats       = "/stats"
	APIMetrics     = "/metrics"
	APISetLogLevel = "/loglevel/set"
	APISetConf     = "/conf/set"
	APIGetConf     = "/conf/get"
	APIPurgeCache  = "/cache/purge"
)

func GetIPv4ForInterfaceName(ifname string) string {
	interfaces, _ := net.Interfaces()
	for _, inter := range interfaces {
		if inter.Name == ifname {
			if addrs, err := inter.Addrs(); err == nil {
				for _, addr := range addrs {
					switch ip := addr.(type) {
					case *net.IPNet:
						if ip.IP.DefaultMask() != nil {
							return ip.IP.String()
						}
					}
				}
			}
		}
	}
	return ""
}
