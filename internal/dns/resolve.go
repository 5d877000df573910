package dns

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
)

// Resolve looks up the zone's domain and the provider ID of every named
// record. It runs once before the reconcile loop starts; any error means the
// loop cannot know what to update and must not start.
func Resolve(ctx context.Context, log logr.Logger, p Provider, zoneID string, names []string, ttl int) (*Zone, error) {
	names = UniqueNames(names)
	if len(names) == 0 {
		return nil, errors.New("resolve: no record names given")
	}

	domain, err := p.ZoneName(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("resolve: zone %s: %w", zoneID, err)
	}
	log.Info("resolved zone", "zoneID", zoneID, "domain", domain)

	zone := &Zone{ID: zoneID, Domain: domain, Records: make([]Record, 0, len(names))}
	for _, name := range names {
		id, err := p.FindRecordID(ctx, zoneID, name)
		if err != nil {
			return nil, fmt.Errorf("resolve: record %s: %w", FQDN(name, domain), err)
		}
		log.Info("resolved record", "name", name, "id", id)
		zone.Records = append(zone.Records, Record{
			ID:   id,
			Name: name,
			Type: RecordTypeA,
			TTL:  ttl,
		})
	}
	return zone, nil
}
