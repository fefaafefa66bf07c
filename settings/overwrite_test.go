package settings

import (
	"io/ioutil"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverwriteSettings(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "settings")
	assert.Nil(t, err)
	t.Logf("tmp: %v", tmpDir)
	old := RootSettingDir
	RootSettingDir = tmpDir
	defer func() {
		RootSettingDir = old
		os.RemoveAll(tmpDir)
	}()
	testSettings := `{"TestInt":1, "TestStr":"str", "TestBool":true}`
	err = ioutil.WriteFile(path.Join(tmpDir, "soft-settings.json"), []byte(testSettings), 0777)
	assert.Nil(t, err)
	err = ioutil.WriteFile(path.Join(tmpDir, "static-settings.json"), []byte(testSettings), 0777)
	assert.Nil(t, err)

	s1 := getSoftSettings()
	s2 := getStaticSettings()
	assert.Equal(t, uint64(1), s1.TestInt)
	assert.Equal(t, true, s1.TestBool)
	assert.Equal(t, "str", s1.TestStr)
	assert.Equal(t, uint64(1), s2.TestInt)
	assert.Equal(t, true, s2.TestBool)
	assert.Equal(t, "str", s2.TestStr)

	testSettings = `{"test_int":1, "test_str":"str", "test_bool":true}`
	err = ioutil.WriteFile(path.Join(tmpDir, "soft-settings.json"), []byte(testSettings), 0777)
	assert.Nil(t, err)
	err = ioutil.WriteFile(path.Join(tmpDir, "static-settings.json"), []byte(testSettings), 0777)
	assert.Nil(t, err)

	s3 := getSoftSettings()
	s4 := getStaticSettings()
	assert.Equal(t, uint64(1), s3.TestInt)
	assert.Equal(t, true, s3.TestBool)
	assert.Equal(t, "str", s3.TestStr)
	assert.Equal(t, uint64(1), s4.TestInt)
	assert.Equal(t, true, s4.TestBool)
	assert.Equal(t, "str", s4.TestStr)
}

func TestDefaultSettings(t *testing.T) {
	s := defaultSoftSettings()
	assert.True(t, s.MaxRangeScanKeys > 0)
	assert.True(t, s.RangeCacheSize > 0)
	assert.True(t, s.VerifyInScan)
	assert.Equal(t, uint64(256), defaultStaticSettings().MaxFieldNameLen)
}

func TestOverwriteQuerySettings(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "settings")
	assert.Nil(t, err)
	old := RootSettingDir
	RootSettingDir = tmpDir
	defer func() {
		RootSettingDir = old
		os.RemoveAll(tmpDir)
	}()
	testSettings := `{"max_range_scan_keys":10, "verify_in_scan":false, "RangeCacheSize":3}`
	err = ioutil.WriteFile(path.Join(tmpDir, "soft-settings.json"), []byte(testSettings), 0777)
	assert.Nil(t, err)
	s := getSoftSettings()
	assert.Equal(t, uint64(10), s.MaxRangeScanKeys)
	assert.Equal(t, uint64(3), s.RangeCacheSize)
	assert.False(t, s.VerifyInScan)
	assert.Equal(t, uint64(100), s.SlowQueryMs)
}

func TestOverwriteSettingsTypeMismatch(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "settings")
	assert.Nil(t, err)
	old := RootSettingDir
	RootSettingDir = tmpDir
	defer func() {
		RootSettingDir = old
		os.RemoveAll(tmpDir)
	}()
	testSettings := `{"max_range_scan_keys":"many", "verify_in_scan":1, "slow_query_ms":-1, "unknown":3}`
	err = ioutil.WriteFile(path.Join(tmpDir, "soft-settings.json"), []byte(testSettings), 0777)
	assert.Nil(t, err)
	s := getSoftSettings()
	d := defaultSoftSettings()
	assert.Equal(t, d, s)
}
