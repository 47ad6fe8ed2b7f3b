package restis

type (
	// FieldValue is a single field of a hash reply.
	FieldValue struct {
		Field string
		Value string
	}

	// ScoredMember is a sorted set member and its score. It is also the
	// input type of ZAdd.
	ScoredMember struct {
		Member string
		Score  float64
	}

	// GeoMember is a member and its coordinates, the input type of GeoAdd.
	GeoMember struct {
		Longitude float64
		Latitude  float64
		Member    string
	}

	// GeoPosition is a longitude/latitude pair.
	GeoPosition struct {
		Longitude float64
		Latitude  float64
	}

	// GeoResult is a member returned by a geo query. The optional fields
	// are set only when the matching WITH option was requested.
	GeoResult struct {
		Member    string
		Distance  *float64
		Hash      *int64
		Longitude *float64
		Latitude  *float64
	}

	// ScanResult is a page of a SCAN or SSCAN iteration.
	ScanResult struct {
		Cursor uint64
		Keys   []string
	}

	// HashScanResult is a page of an HSCAN iteration.
	HashScanResult struct {
		Cursor uint64
		Fields []FieldValue
	}

	// ZSetScanResult is a page of a ZSCAN iteration.
	ZSetScanResult struct {
		Cursor  uint64
		Members []ScoredMember
	}

	// TimeResult is the server clock as reported by TIME.
	TimeResult struct {
		Seconds      int64
		Microseconds int64
	}

	// SubscriberCount is a channel and its subscriber count.
	SubscriberCount struct {
		Channel string
		Count   int64
	}

	// Result is the outcome of one command of an executed batch.
	Result struct {
		Value interface{}
		Err   error
	}
)
