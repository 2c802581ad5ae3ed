package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAgentSchema(t *testing.T) {
	s := Agent()

	assert.Len(t, s.Keys(), 46)
	assert.Len(t, s.Settable(), 39)

	k, ok := s.Lookup("tcpip_timeout")
	require.True(t, ok)
	assert.Equal(t, KindInt, k.Kind)
	assert.Equal(t, `CONFIG\COMTIMOUT`, k.Location.String())

	k, ok = s.Lookup("default_agent_name")
	require.True(t, ok)
	assert.True(t, k.ReadOnly)
	assert.Equal(t, "DefaultAgentName", k.Location.String())

	assert.False(t, s.Has("no_such_key"))
}

func TestNewRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		keys []Key
	}{
		{
			name: "Duplicate",
			keys: []Key{
				{Name: "a", Kind: KindBool, Default: true, Location: Location{Name: "A"}},
				{Name: "a", Kind: KindBool, Default: true, Location: Location{Name: "A"}},
			},
		},
		{
			name: "NoLocation",
			keys: []Key{{Name: "a", Kind: KindBool, Default: true}},
		},
		{
			name: "DefaultOutOfRange",
			keys: []Key{{Name: "a", Kind: KindInt, Default: 9, Min: 0, Max: 4, Location: Location{Name: "A"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.keys)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	s := Agent()

	tests := []struct {
		name     string
		key      string
		raw      interface{}
		expected interface{}
	}{
		{"IntFromInt", "diagnostic_level", 3, 3},
		{"IntFromFloat", "smtp_port", float64(587), 587},
		{"IntFromString", "tcpip_timeout", " 120 ", 120},
		{"IntFromJSONNumber", "limit_log_version", json.Number("0"), 0},
		{"BoolFromBool", "ssl", true, true},
		{"BoolFromYes", "ssl", "Yes", true},
		{"BoolFromN", "daily_log_file_enabled", "N", false},
		{"BoolFromOne", "logon_as_user", 1, true},
		{"BoolFromOff", "autoedit_inline", "off", false},
		{"EnumCanonical", "job_output_name", "JOBNAME", "JOBNAME"},
		{"EnumCaseInsensitive", "foreign_language_support", "cjk", "CJK"},
		{"EnumWithSpaces", "cjk_encoding", "japanese shift-jis", "JAPANESE SHIFT-JIS"},
		{"EnumEmptyChoice", "ctms_address_mode", "", ""},
		{"StringVerbatim", "primary_controlm_server_host", "ctm-srv01", "ctm-srv01"},
		{"StringFromNil", "smtp_reply_to_mail", nil, ""},
		{"StringFromNumber", "logon_domain", 1234, "1234"},
		{"StringList", "authorized_controlm_server_hosts", []interface{}{"srv1", "srv2"}, "srv1|srv2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.Validate(tt.key, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	s := Agent()

	tests := []struct {
		name       string
		key        string
		raw        interface{}
		constraint string
	}{
		{"DiagnosticLevelTooHigh", "diagnostic_level", 5, "integer in range 0-4"},
		{"SMTPPortTooHigh", "smtp_port", 70000, "integer in range 0-65535"},
		{"TCPIPTimeoutTooHigh", "tcpip_timeout", 1000000, "integer in range 0-999999"},
		{"RetainDaysZero", "days_to_retain_log_files", 0, "integer in range 1-99"},
		{"PortBelowRange", "server_to_agent_port", 80, "integer in range 1024-65535"},
		{"IntFromFraction", "smtp_port", 25.5, "integer in range 0-65535"},
		{"IntFromWord", "smtp_port", "twenty", "integer in range 0-65535"},
		{"IntFromBool", "diagnostic_level", true, "integer in range 0-4"},
		{"BoolFromWord", "ssl", "maybe", "boolean (yes/no, true/false)"},
		{"BoolFromTwo", "ssl", 2, "boolean (yes/no, true/false)"},
		{"EnumUnknown", "job_output_name", "ORDERID", `one of "MEMNAME", "JOBNAME"`},
		{"StringFromBool", "logon_domain", false, "string"},
		{"StringTooLong", "smtp_sender_mail", string(make([]byte, 100)), "string of at most 99 characters"},
		{"ListWithoutSeparator", "default_printer", []interface{}{"a"}, "string"},
		{"UnknownKey", "no_such_key", 1, "unknown configuration key"},
		{"ReadOnlyKey", "agent_version", "9.0.21", "read-only key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Validate(tt.key, tt.raw)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.key, verr.Key)
			assert.Equal(t, tt.raw, verr.Value)
			assert.Equal(t, tt.constraint, verr.Constraint)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := Agent().Validate("tcpip_timeout", 1000000)
	require.Error(t, err)
	assert.Equal(t, "invalid value 1000000 for tcpip_timeout: integer in range 0-999999", err.Error())
}

func TestDefaultFor(t *testing.T) {
	s := Agent()

	tests := map[string]interface{}{
		"agent_to_server_port":        7005,
		"server_to_agent_port":        7006,
		"diagnostic_level":            0,
		"communication_trace":         false,
		"daily_log_file_enabled":      true,
		"foreign_language_support":    "LATIN-1",
		"listen_to_network_interface": "*ANY",
		"timeout_for_agent_utilities": 600,
		"job_output_name":             "MEMNAME",
		"cjk_encoding":                "UTF-8",
		"smtp_sender_mail":            "control@m",
		"smtp_port":                   25,
		"agent_directory":             "",
	}
	for key, expected := range tests {
		v, err := s.DefaultFor(key)
		require.NoError(t, err, key)
		assert.Equal(t, expected, v, key)
	}

	_, err := s.DefaultFor("no_such_key")
	assert.Error(t, err)
}

func TestLogicalAgentNameDefaultsToHostname(t *testing.T) {
	saved := hostname
	t.Cleanup(func() { hostname = saved })

	hostname = func() (string, error) { return "WINAGT01", nil }
	v, err := Agent().DefaultFor("logical_agent_name")
	require.NoError(t, err)
	assert.Equal(t, "WINAGT01", v)

	hostname = func() (string, error) { return "", errors.New("no hostname") }
	v, err = Agent().DefaultFor("logical_agent_name")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestEncodeDecode(t *testing.T) {
	s := Agent()

	tests := []struct {
		key     string
		value   interface{}
		encoded string
	}{
		{"diagnostic_level", 2, "2"},
		{"ssl", true, "Y"},
		{"ssl", "no", "N"},
		{"job_output_name", "jobname", "JOBNAME"},
		{"logon_domain", "CORP", "CORP"},
	}
	for _, tt := range tests {
		encoded, err := s.Encode(tt.key, tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.encoded, encoded)

		decoded, err := s.Decode(tt.key, encoded)
		require.NoError(t, err)
		expected, err := s.Validate(tt.key, tt.value)
		require.NoError(t, err)
		assert.Equal(t, expected, decoded)
	}

	v, err := s.Decode("agent_version", "9.0.20.200")
	require.NoError(t, err)
	assert.Equal(t, "9.0.20.200", v)

	_, err = s.Decode("diagnostic_level", "9")
	assert.Error(t, err)
	_, err = s.Encode("diagnostic_level", 9)
	assert.Error(t, err)
}

func TestJSONSchema(t *testing.T) {
	js := Agent().JSONSchema()
	data, err := json.Marshal(js)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "object", doc["type"])

	props := doc["properties"].(map[string]interface{})
	assert.Len(t, props, 46)

	tcpip := props["tcpip_timeout"].(map[string]interface{})
	assert.Equal(t, "integer", tcpip["type"])
	assert.Equal(t, float64(0), tcpip["minimum"])
	assert.Equal(t, float64(999999), tcpip["maximum"])
	assert.Equal(t, float64(60), tcpip["default"])

	outputName := props["job_output_name"].(map[string]interface{})
	assert.Equal(t, []interface{}{"MEMNAME", "JOBNAME"}, outputName["enum"])

	sender := props["smtp_sender_mail"].(map[string]interface{})
	assert.Equal(t, float64(99), sender["maxLength"])

	version := props["agent_version"].(map[string]interface{})
	assert.Equal(t, true, version["readOnly"])
}

func TestValidateIntRangeProperty(t *testing.T) {
	s := Agent()
	var intKeys []Key
	for _, k := range s.Settable() {
		if k.Kind == KindInt {
			intKeys = append(intKeys, k)
		}
	}

	rapid.Check(t, func(t *rapid.T) {
		k := rapid.SampledFrom(intKeys).Draw(t, "key")
		n := rapid.IntRange(k.Min, k.Max).Draw(t, "n")

		v, err := s.Validate(k.Name, n)
		if err != nil {
			t.Fatalf("%s=%d rejected: %v", k.Name, n, err)
		}
		if v != n {
			t.Fatalf("%s=%d came back as %v", k.Name, n, v)
		}
	})

	rapid.Check(t, func(t *rapid.T) {
		k := rapid.SampledFrom(intKeys).Draw(t, "key")
		var n int
		if rapid.Bool().Draw(t, "above") {
			n = rapid.IntRange(k.Max+1, k.Max+1000000).Draw(t, "n")
		} else {
			n = rapid.IntRange(k.Min-1000000, k.Min-1).Draw(t, "n")
		}

		_, err := s.Validate(k.Name, n)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s=%d accepted", k.Name, n)
		}
	})
}

func TestValidateBoolNormalizationProperty(t *testing.T) {
	s := Agent()
	truthy := []string{"y", "Y", "yes", "Yes", "YES", "true", "True", "on", "1"}
	falsy := []string{"n", "N", "no", "No", "NO", "false", "False", "off", "0"}

	rapid.Check(t, func(t *rapid.T) {
		want := rapid.Bool().Draw(t, "want")
		var raw string
		if want {
			raw = rapid.SampledFrom(truthy).Draw(t, "raw")
		} else {
			raw = rapid.SampledFrom(falsy).Draw(t, "raw")
		}

		v, err := s.Validate("persistent_connection", raw)
		if err != nil {
			t.Fatalf("%q rejected: %v", raw, err)
		}
		if v != want {
			t.Fatalf("%q normalized to %v", raw, v)
		}
	})
}
