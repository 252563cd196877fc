package services

import (
	"context"
	"net"

	"github.com/BradenHooton/sentinel/internal/models"
)

// GeoResolver maps an IP address to a coarse location tuple. The tuple is
// opaque to the security core; accuracy is the resolver's problem.
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) (models.GeoLocation, error)
}

// NoopGeoResolver is the bundled resolver used when no external
// geolocation provider is configured. Private and loopback addresses
// resolve to "Local"; everything else is Unknown.
type NoopGeoResolver struct{}

// NewNoopGeoResolver creates a NoopGeoResolver
func NewNoopGeoResolver() *NoopGeoResolver {
	return &NoopGeoResolver{}
}

func (r *NoopGeoResolver) Resolve(_ context.Context, ip string) (models.GeoLocation, error) {
	parsed := net.ParseIP(ip)
	if parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate()) {
		return models.GeoLocation{Country: "Local", Region: "Local", City: "Local", Timezone: "Local"}, nil
	}
	return models.UnknownLocation(), nil
}
