package settings

// Soft settings are some configurations than can be safely changed and
// the app need to be restarted to apply such configuration changes.
var Soft = getSoftSettings()

type soft struct {
	// test
	TestInt  uint64 `json:"test_int,omitempty"`
	TestBool bool   `json:"test_bool"`
	TestStr  string `json:"test_str"`

	// numeric index
	// a range scan reading more index keys than this fails
	MaxRangeScanKeys uint64 `json:"max_range_scan_keys"`

	// query
	// number of geo filters whose geohash ranges are cached
	RangeCacheSize uint64 `json:"range_cache_size"`

	// verify the indexed values against the geo filter while scanning ranges
	VerifyInScan bool `json:"verify_in_scan"`

	// queries costing more are logged, 0 disables the log
	SlowQueryMs uint64 `json:"slow_query_ms"`

	// server
	// max points in one GEOIDX.ADD command
	MaxAddPoints uint64 `json:"max_add_points"`
}

func getSoftSettings() soft {
	d := defaultSoftSettings()
	overwriteSettingsWithFile(&d, "soft-settings.json")
	return d
}

func defaultSoftSettings() soft {
	return soft{
		MaxRangeScanKeys: 1024 * 1024,
		RangeCacheSize:   1024,
		VerifyInScan:     true,
		SlowQueryMs:      100,
		MaxAddPoints:     1024,
	}
}
