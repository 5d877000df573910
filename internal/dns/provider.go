package dns

import "context"

// RecordTypeA is the only record type this updater manages.
const RecordTypeA = "A"

// Record represents a DNS record to be kept in sync with the public IP.
type Record struct {
	ID    int64  // provider-assigned identifier, resolved once at startup
	Name  string // host label inside the zone, e.g. "home"
	Type  string // always "A"
	Value string // IPv4 address
	TTL   int    // seconds
}

// Zone is the provider-side zone that holds the managed records.
type Zone struct {
	ID      string
	Domain  string
	Records []Record
}

// Provider is the record API the reconciler drives.
type Provider interface {
	ZoneName(ctx context.Context, zoneID string) (string, error)
	FindRecordID(ctx context.Context, zoneID, name string) (int64, error)
	UpdateRecord(ctx context.Context, zoneID string, record Record) error
}
