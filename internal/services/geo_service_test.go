package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopGeoResolver_PrivateAddressesReadAsLocal(t *testing.T) {
	resolver := NewNoopGeoResolver()

	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "192.168.1.50", "::1"} {
		location, err := resolver.Resolve(context.Background(), ip)
		require.NoError(t, err)
		assert.Equal(t, "Local", location.Country, "ip %s", ip)
	}
}

func TestNoopGeoResolver_PublicAddressIsUnknown(t *testing.T) {
	resolver := NewNoopGeoResolver()

	location, err := resolver.Resolve(context.Background(), "203.0.113.7")

	require.NoError(t, err)
	assert.Equal(t, "Unknown", location.Country)
}

func TestNoopGeoResolver_GarbageInput(t *testing.T) {
	resolver := NewNoopGeoResolver()

	location, err := resolver.Resolve(context.Background(), "not-an-ip")

	require.NoError(t, err)
	assert.Equal(t, "Unknown", location.Country)
}
