package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponsePlainJSON(t *testing.T) {
	data, err := parseResponse(`{"event_type": "bombing", "confidence": 0.85}`)
	require.NoError(t, err)
	assert.Equal(t, "bombing", data["event_type"])
	assert.Equal(t, 0.85, data["confidence"])
}

func TestParseResponseMarkdownFence(t *testing.T) {
	response := "```json\n{\"event_type\": \"meeting\"}\n```"
	data, err := parseResponse(response)
	require.NoError(t, err)
	assert.Equal(t, "meeting", data["event_type"])
}

func TestParseResponseBareFence(t *testing.T) {
	response := "```\n{\"event_type\": \"protest\"}\n```"
	data, err := parseResponse(response)
	require.NoError(t, err)
	assert.Equal(t, "protest", data["event_type"])
}

func TestParseResponseEmbeddedInProse(t *testing.T) {
	response := `Here is the extracted event data:
{"event_type": "explosion", "confidence": 0.9}
Let me know if you need anything else.`
	data, err := parseResponse(response)
	require.NoError(t, err)
	assert.Equal(t, "explosion", data["event_type"])
}

func TestParseResponseTrailingCommas(t *testing.T) {
	response := `{"event_type": "attack", "organizations": ["Islamic State",],}`
	data, err := parseResponse(response)
	require.NoError(t, err)
	assert.Equal(t, "attack", data["event_type"])
	assert.Equal(t, []any{"Islamic State"}, data["organizations"])
}

func TestParseResponseOrNullHedging(t *testing.T) {
	response := `{"perpetrator": "Islamic State" or null, "city": null or "Kabul", "event_type": "bombing"}`
	data, err := parseResponse(response)
	require.NoError(t, err)
	assert.Nil(t, data["perpetrator"])
	assert.Nil(t, data["city"])
	assert.Equal(t, "bombing", data["event_type"])
}

func TestParseResponseLineComments(t *testing.T) {
	response := `{
	"event_type": "shooting", // main event
	"confidence": 0.8
}`
	data, err := parseResponse(response)
	require.NoError(t, err)
	assert.Equal(t, "shooting", data["event_type"])
}

func TestParseResponseNoJSON(t *testing.T) {
	_, err := parseResponse("I could not find any event in this article.")
	assert.Error(t, err)
}

func TestAsStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, asStringSlice([]any{"a", "b"}))
	assert.Equal(t, []string{"solo"}, asStringSlice("solo"))
	assert.Nil(t, asStringSlice(nil))
	assert.Nil(t, asStringSlice(42.0))
	assert.Equal(t, []string{"a"}, asStringSlice([]any{"a", 3.0, ""}))
}

func TestAsIntPtr(t *testing.T) {
	if p := asIntPtr(20.0); assert.NotNil(t, p) {
		assert.Equal(t, 20, *p)
	}
	if p := asIntPtr("30"); assert.NotNil(t, p) {
		assert.Equal(t, 30, *p)
	}
	if p := asIntPtr(0.0); assert.NotNil(t, p) {
		assert.Equal(t, 0, *p)
	}
	assert.Nil(t, asIntPtr("unknown"))
	assert.Nil(t, asIntPtr(nil))
	assert.Nil(t, asIntPtr(-3.0))
	assert.Nil(t, asIntPtr(2.5), "fractional counts are dropped, not truncated")
	assert.Nil(t, asIntPtr(math.NaN()))
	assert.Nil(t, asIntPtr(math.Inf(1)))
}

func TestJoinedString(t *testing.T) {
	assert.Equal(t, "Kabul", joinedString("Kabul"))
	assert.Equal(t, "India/Pakistan", joinedString([]any{"India", "Pakistan"}))
	assert.Equal(t, "", joinedString(nil))
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy(false))
	assert.False(t, truthy(""))
	assert.False(t, truthy(0.0))
	assert.True(t, truthy(true))
	assert.True(t, truthy("no event found"))
}
