package domain

import "time"

// Identity opaque authenticated-user identifier handed over by the identity provider.
type Identity string

// System hydroponic growing unit (hydroponic_systems table).
type System struct {
	SystemID  string    `db:"system_id"` // UUID
	Name      string    `db:"name"`      // VARCHAR(100), NOT NULL
	Location  string    `db:"location"`  // VARCHAR(255), nullable
	CreatedAt time.Time `db:"created_at"`
	OwnerID   Identity  `db:"owner_id"` // immutable after creation
}

// OwnedBy reports whether identity owns the system.
func (s *System) OwnedBy(identity Identity) bool {
	return s != nil && identity != "" && s.OwnerID == identity
}

// ToJSON response shape used by the HTTP layer.
func (s *System) ToJSON() map[string]any {
	m := map[string]any{
		"id":         s.SystemID,
		"name":       s.Name,
		"created_at": s.CreatedAt.UTC().Format(time.RFC3339),
		"owner":      string(s.OwnerID),
	}
	if s.Location != "" {
		m["location"] = s.Location
	} else {
		m["location"] = nil
	}
	return m
}
