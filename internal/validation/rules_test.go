package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "jane_doe42", "jane_doe42", false},
		{"trims whitespace", "  jane  ", "jane", false},
		{"too short", "ab", "", true},
		{"too long", strings.Repeat("a", 51), "", true},
		{"illegal characters", "jane doe", "", true},
		{"dash rejected", "jane-doe", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Username(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	got, err := Email("  Jane.Doe@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", got, "email is lowercased")

	for _, bad := range []string{"", "plain", "a@b", "a b@c.com", "@c.com"} {
		_, err := Email(bad)
		assert.Error(t, err, "email %q should be rejected", bad)
	}
}

func TestFullName(t *testing.T) {
	t.Parallel()

	_, err := FullName("J")
	assert.Error(t, err)

	_, err = FullName(strings.Repeat("n", 101))
	assert.Error(t, err)

	got, err := FullName("  Jane Doe ")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got)
}

func TestPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain digits", "15551234567", "15551234567", false},
		{"with plus", "+15551234567", "+15551234567", false},
		{"formatting stripped", "+1 (555) 123-4567", "+15551234567", false},
		{"too short", "+1234567", "", true},
		{"too long", "+1234567890123456", "", true},
		{"leading zero", "+05551234567", "", true},
		{"letters", "call-me", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Phone(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPassword(t *testing.T) {
	t.Parallel()

	assert.Error(t, Password("abc12"))
	assert.Error(t, Password(strings.Repeat("x", 101)))
	assert.NoError(t, Password("abc123"))
}

func TestPostHeaderAndDescription(t *testing.T) {
	t.Parallel()

	_, err := PostHeader("ab")
	assert.Error(t, err)
	_, err = PostHeader(strings.Repeat("h", 201))
	assert.Error(t, err)

	got, err := PostHeader(" Weekly update ")
	require.NoError(t, err)
	assert.Equal(t, "Weekly update", got)

	_, err = PostDescription("too short")
	assert.Error(t, err)
	_, err = PostDescription(strings.Repeat("d", 5001))
	assert.Error(t, err)

	_, err = PostDescription("this is long enough to pass")
	assert.NoError(t, err)
}

func TestDeviceName(t *testing.T) {
	t.Parallel()

	got, err := DeviceName(" Soil Sensor-01 ")
	require.NoError(t, err)
	assert.Equal(t, "Soil Sensor-01", got)

	_, err = DeviceName("")
	assert.Error(t, err)
	_, err = DeviceName(strings.Repeat("x", 201))
	assert.Error(t, err)
	_, err = DeviceName("pump#3")
	assert.Error(t, err)
}

func TestDeviceVersion(t *testing.T) {
	t.Parallel()

	for _, good := range []string{"1.0", "v1.2.3", "V2.0", "2.0.1-beta"} {
		_, err := DeviceVersion(good)
		assert.NoError(t, err, "version %q should be accepted", good)
	}
	for _, bad := range []string{"", "latest", "v1", "one.two"} {
		_, err := DeviceVersion(bad)
		assert.Error(t, err, "version %q should be rejected", bad)
	}
}

func TestDeviceDescription(t *testing.T) {
	t.Parallel()

	got, err := DeviceDescription("  outdoor unit  ")
	require.NoError(t, err)
	assert.Equal(t, "outdoor unit", got)

	_, err = DeviceDescription(strings.Repeat("d", 1001))
	assert.Error(t, err)
}
