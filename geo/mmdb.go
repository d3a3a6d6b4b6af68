package geo

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MMDBResolver answers lookups from a local MaxMind City database,
// avoiding the outbound call entirely.
type MMDBResolver struct {
	reader *geoip2.Reader
}

func NewMMDBResolver(path string) (*MMDBResolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open city database: %w", err)
	}

	return &MMDBResolver{reader: reader}, nil
}

func (r *MMDBResolver) Resolve(ctx context.Context, ip string) (Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}, fmt.Errorf("invalid ip address: %s", ip)
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		return Location{}, err
	}

	loc := Location{
		City:    record.City.Names["en"],
		Country: record.Country.Names["en"],
	}
	if loc.City == "" && loc.Country == "" {
		return Location{}, fmt.Errorf("no location data for %s", ip)
	}

	return loc, nil
}

func (r *MMDBResolver) Close() error {
	return r.reader.Close()
}
