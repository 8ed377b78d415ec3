package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityWarning))
	assert.True(t, SeverityCritical.AtLeast(SeverityCritical))
	assert.True(t, SeverityWarning.AtLeast(SeverityInfo))
	assert.False(t, SeverityInfo.AtLeast(SeverityWarning))
	assert.False(t, SeverityWarning.AtLeast(SeverityCritical))
}

func TestParseSeverity(t *testing.T) {
	for _, s := range []Severity{SeverityInfo, SeverityWarning, SeverityCritical} {
		parsed, err := ParseSeverity(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseSeverity("SHOUTING")
	assert.Error(t, err)
	_, err = ParseSeverity("critical")
	assert.Error(t, err, "parsing is case sensitive")
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(SeverityCritical)
	require.NoError(t, err)
	assert.Equal(t, `"CRITICAL"`, string(data))

	var s Severity
	require.NoError(t, json.Unmarshal([]byte(`"WARNING"`), &s))
	assert.Equal(t, SeverityWarning, s)

	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &s))
}
