package settings

// Static settings should not be changed after deployed, changing them
// makes the stored index unreadable.
var Static = getStaticSettings()

type static struct {
	// test
	TestInt  uint64 `json:"test_int"`
	TestBool bool   `json:"test_bool"`
	TestStr  string `json:"test_str,omitempty"`

	// the field name is stored in every index key
	MaxFieldNameLen uint64 `json:"max_field_name_len"`
}

func getStaticSettings() static {
	s := defaultStaticSettings()
	overwriteSettingsWithFile(&s, "static-settings.json")
	return s
}

func defaultStaticSettings() static {
	return static{
		MaxFieldNameLen: 256,
	}
}
