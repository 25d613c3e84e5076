package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	StringField   string        `env:"TEST_STRING"`
	IntField      int           `env:"TEST_INT"`
	Int64Field    int64         `env:"TEST_INT64"`
	BoolField     bool          `env:"TEST_BOOL"`
	DurationField time.Duration `env:"TEST_DURATION,default:72h"`
	DefaultField  string        `env:"TEST_DEFAULT,default:defaultValue"`
	AltDefault    string        `env:"TEST_ALT" envDefault:"alt"`
	ListField     []string      `env:"TEST_LIST"`
	NoTagField    string
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected testConfig
		wantErr  bool
	}{
		{
			name: "all fields set from environment",
			envVars: map[string]string{
				"TEST_STRING":   "hello",
				"TEST_INT":      "42",
				"TEST_INT64":    "9223372036854775807",
				"TEST_BOOL":     "true",
				"TEST_DURATION": "30s",
				"TEST_LIST":     "a, b,,c",
			},
			expected: testConfig{
				StringField:   "hello",
				IntField:      42,
				Int64Field:    9223372036854775807,
				BoolField:     true,
				DurationField: 30 * time.Second,
				DefaultField:  "defaultValue",
				AltDefault:    "alt",
				ListField:     []string{"a", "b", "c"},
			},
		},
		{
			name: "override default value",
			envVars: map[string]string{
				"TEST_DEFAULT": "overridden",
				"TEST_ALT":     "other",
			},
			expected: testConfig{
				DurationField: 72 * time.Hour,
				DefaultField:  "overridden",
				AltDefault:    "other",
			},
		},
		{
			name:    "invalid int value",
			envVars: map[string]string{"TEST_INT": "not-a-number"},
			wantErr: true,
		},
		{
			name:    "invalid duration value",
			envVars: map[string]string{"TEST_DURATION": "3 days"},
			wantErr: true,
		},
		{
			name:    "empty environment leaves defaults",
			envVars: map[string]string{},
			expected: testConfig{
				DurationField: 72 * time.Hour,
				DefaultField:  "defaultValue",
				AltDefault:    "alt",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"TEST_STRING", "TEST_INT", "TEST_INT64", "TEST_BOOL", "TEST_DURATION", "TEST_DEFAULT", "TEST_ALT", "TEST_LIST"} {
				t.Setenv("UT_"+k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv("UT_"+k, v)
			}

			cfg := &testConfig{}
			err := Load(cfg, LoadOptions{Prefix: "UT_"})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *cfg)
		})
	}
}

func TestLoadDefaultPrefix(t *testing.T) {
	t.Setenv("BEAVER_TEST_STRING", "prefixed")

	cfg := &testConfig{}
	require.NoError(t, Load(cfg))
	assert.Equal(t, "prefixed", cfg.StringField)
}

func TestLoadRejectsNonPointer(t *testing.T) {
	assert.ErrorIs(t, Load(testConfig{}), ErrNotStructPointer)

	var nilCfg *testConfig
	assert.ErrorIs(t, Load(nilCfg), ErrNotStructPointer)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("ENVFILE_TEST_STRING=from-file\nENVFILE_TEST_INT=7\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("ENVFILE_TEST_STRING")
		os.Unsetenv("ENVFILE_TEST_INT")
	})

	// process environment wins over the file
	t.Setenv("ENVFILE_TEST_INT", "9")

	cfg := &testConfig{}
	require.NoError(t, Load(cfg, LoadOptions{Prefix: "ENVFILE_", EnvFiles: []string{file}}))
	assert.Equal(t, "from-file", cfg.StringField)
	assert.Equal(t, 9, cfg.IntField)
}

func TestSetFieldValue(t *testing.T) {
	tests := []struct {
		name    string
		target  interface{}
		value   string
		wantErr bool
	}{
		{"valid string", &struct{ Field string }{}, "test", false},
		{"valid int", &struct{ Field int }{}, "123", false},
		{"valid uint", &struct{ Field uint32 }{}, "123", false},
		{"negative uint", &struct{ Field uint32 }{}, "-1", true},
		{"valid float", &struct{ Field float64 }{}, "3.14", false},
		{"valid bool 1", &struct{ Field bool }{}, "1", false},
		{"invalid int", &struct{ Field int }{}, "abc", true},
		{"invalid bool", &struct{ Field bool }{}, "yes", true},
		{"unsupported kind", &struct{ Field map[string]string }{}, "a=b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := reflect.ValueOf(tt.target).Elem().Field(0)
			err := setFieldValue(field, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestComplexEnvTag(t *testing.T) {
	type complexConfig struct {
		Field1 string `env:"COMPLEX_FIELD1,default:value1"`
		Field2 string `env:"COMPLEX_FIELD2,default:value2,other:ignored"`
		Field3 string `env:"COMPLEX_FIELD3,something,default:value3"`
	}

	cfg := &complexConfig{}
	require.NoError(t, Load(cfg, LoadOptions{Prefix: "UT_"}))
	assert.Equal(t, "value1", cfg.Field1)
	assert.Equal(t, "value2", cfg.Field2)
	assert.Equal(t, "value3", cfg.Field3)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "******", redact("BEAVER_WECOM_ACCESS_TOKEN", "abc"))
	assert.Equal(t, "", redact("BEAVER_WECOM_ACCESS_TOKEN", ""))
	assert.Equal(t, "work", redact("BEAVER_FILEKIT_WXWORK_PREFIX", "work"))
}
