package domain

// UserID is the numeric account identifier, kept as a string because
// Twitter ids exceed 53 bits and the archive encodes them as strings.
type UserID string

// String returns the string representation of the UserID.
func (id UserID) String() string {
	return string(id)
}

// HandleProvenance records where a resolved handle came from.
type HandleProvenance string

const (
	// ProvenanceArchive marks handles embedded in the archive itself
	// (reply metadata, user mentions, account.js).
	ProvenanceArchive HandleProvenance = "archive"

	// ProvenanceCache marks handles loaded from the persisted cache file.
	ProvenanceCache HandleProvenance = "cache"

	// ProvenanceRemote marks handles fetched from the user-lookup endpoint.
	ProvenanceRemote HandleProvenance = "remote"

	// ProvenanceUnresolved marks ids the remote service reported as not
	// found (suspended or deleted accounts). Not retried within a run.
	ProvenanceUnresolved HandleProvenance = "unresolved"
)

// HandleEntry is one user-id to handle mapping with its provenance.
type HandleEntry struct {
	UserID     UserID           `json:"user_id"`
	Handle     string           `json:"handle,omitempty"`
	Provenance HandleProvenance `json:"provenance"`
}

// Known reports whether the entry carries a usable handle.
func (e HandleEntry) Known() bool {
	return e.Handle != "" && e.Provenance != ProvenanceUnresolved
}

// User is a stub for an account referenced by the archive. Handles are
// resolved lazily and may remain unknown.
type User struct {
	ID     UserID
	Handle string
	Owner  bool
}
