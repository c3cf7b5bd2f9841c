package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "v1.2.3", Normalize("1.2.3"))
	assert.Equal(t, "v1.2.3", Normalize(" v1.2.3 "))
	assert.Equal(t, "", Normalize(""))
}

func TestHasNewerVersion(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"1.0.0", "1.0.1", true},
		{"v1.2.0", "1.1.9", false},
		{"1.0.0", "1.0.0", false},
		{"dev", "1.0.0", true},
		{"1.0.0", "", false},
		{"garbage", "1.0.0", true},
		{"1.0.0", "garbage", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasNewerVersion(tt.current, tt.latest), "%s -> %s", tt.current, tt.latest)
	}
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible("1.4.0", "v1.9.2"))
	assert.False(t, Compatible("1.4.0", "2.0.0"))
	assert.True(t, Compatible("dev", "2.0.0"))
	assert.True(t, Compatible("1.0.0", ""))
	assert.False(t, Compatible("1.0.0", "not-a-version"))
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
