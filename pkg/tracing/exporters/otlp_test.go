package exporters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	for _, protocol := range []string{"", ProtocolGRPC, ProtocolHTTP} {
		client, err := newClient(OTLPConfig{Endpoint: "localhost:4317", Protocol: protocol, Insecure: true})
		require.NoError(t, err, protocol)
		assert.NotNil(t, client)
	}
}

func TestNewClientRejectsUnknownProtocol(t *testing.T) {
	_, err := newClient(OTLPConfig{Endpoint: "localhost:4317", Protocol: "thrift"})
	assert.ErrorContains(t, err, "thrift")
}
