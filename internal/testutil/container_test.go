package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTCPPort(t *testing.T) {
	for _, port := range []string{"5432", "6379"} {
		p := tcpPort(port)
		assert.Equal(t, port, p.Port())
		assert.Equal(t, "tcp", p.Proto())
		assert.Equal(t, port, string(p)[:len(port)])
	}
}
