// Package settings holds the soft and static tunables of zangeo. The
// defaults may be overwritten by soft-settings.json and static-settings.json
// under RootSettingDir, keyed by field name or json tag.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
)

// RootSettingDir is the directory of the setting files. It defaults to
// $ZANGEO_SETTING_DIR.
var RootSettingDir = os.Getenv("ZANGEO_SETTING_DIR")

func loadSettingFile(fn string) map[string]interface{} {
	b, err := os.ReadFile(filepath.Clean(fn))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		panic(err)
	}
	m := make(map[string]interface{})
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	return m
}

func overwriteSettingsWithFile(s interface{}, fn string) {
	cfg := loadSettingFile(filepath.Join(RootSettingDir, fn))
	if len(cfg) == 0 {
		return
	}
	rv := reflect.Indirect(reflect.ValueOf(s))
	overwriteSettings(cfg, rv, jsonTagFields(rv.Type()))
}

// jsonTagFields maps the json name of each field to the field name.
func jsonTagFields(rt reflect.Type) map[string]string {
	names := make(map[string]string, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		jn, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if jn != "" && jn != "-" {
			names[jn] = f.Name
		}
	}
	return names
}

func overwriteSettings(cfg map[string]interface{}, rv reflect.Value, names map[string]string) {
	for key, val := range cfg {
		field := rv.FieldByName(key)
		if !field.IsValid() {
			if fn, ok := names[key]; ok {
				field = rv.FieldByName(fn)
			}
		}
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.Uint64, reflect.Uint32, reflect.Int64, reflect.Int32, reflect.Int:
			n, ok := val.(float64)
			if !ok {
				continue
			}
			if field.Kind() == reflect.Uint64 || field.Kind() == reflect.Uint32 {
				if n < 0 {
					continue
				}
				field.SetUint(uint64(n))
			} else {
				field.SetInt(int64(n))
			}
		case reflect.Float64:
			if n, ok := val.(float64); ok {
				field.SetFloat(n)
			}
		case reflect.Bool:
			if b, ok := val.(bool); ok {
				field.SetBool(b)
			}
		case reflect.String:
			if str, ok := val.(string); ok {
				field.SetString(str)
			}
		}
	}
}
