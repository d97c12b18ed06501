package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered UUID used as the primary key for all
// persisted records.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsUUID reports whether s parses as any RFC 4122 UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
