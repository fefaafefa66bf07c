package common

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIPv4ForInterfaceName(t *testing.T) {
	assert.Equal(t, "", GetIPv4ForInterfaceName("no-such-interface"))
	ifs, err := net.Interfaces()
	if err != nil {
		t.Skip(err)
	}
	for _, inter := range ifs {
		ip := GetIPv4ForInterfaceName(inter.Name)
		if ip == "" {
			continue
		}
		assert.NotNil(t, net.ParseIP(ip).To4(), "interface %v ip %v", inter.Name, ip)
	}
}

func TestVerString(t *testing.T) {
	v := VerString("zangeo")
	assert.Contains(t, v, "zangeo v"+VerBinary)
	assert.Contains(t, v, Commit)
}
