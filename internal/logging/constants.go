package logging

// Standard field names used across the ingest pipeline so log lines can be
// filtered the same way regardless of which component emitted them.
const (
	FieldUser        = "user_id"
	FieldBank        = "bank"
	FieldSource      = "source"
	FieldMatcher     = "matcher"
	FieldSegment     = "segment"
	FieldFingerprint = "fingerprint"
	FieldCategory    = "category"
	FieldStrategy    = "strategy"
	FieldMerchant    = "merchant"
	FieldAccount     = "account"
	FieldSink        = "sink"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldSkipped     = "skipped"
	FieldFile        = "file_path"
	FieldRoute       = "route"
)
