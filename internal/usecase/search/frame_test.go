package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The frame JSON is the wire contract with stream consumers: every frame
// carries an event_type discriminator and the documented field names.
func TestFrameWireFormat(t *testing.T) {
	session, err := json.Marshal(NewSessionFrame("abc"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event_type":"session","session_id":"abc"}`, string(session))

	progress, err := json.Marshal(ProgressFrame{
		EventType:       FrameProgress,
		Message:         "Scraped 3 article(s) from alpha",
		ArticlesScraped: 3,
		SourcesDone:     1,
		SourcesTotal:    2,
	})
	require.NoError(t, err)
	for _, key := range []string{"message", "articles_scraped", "articles_extracted", "events_matched", "sources_done", "sources_total"} {
		assert.Contains(t, string(progress), `"`+key+`"`)
	}

	complete, err := json.Marshal(CompleteFrame{
		EventType:         FrameComplete,
		TotalEvents:       2,
		ArticlesProcessed: 5,
		ProcessingTime:    1.25,
	})
	require.NoError(t, err)
	for _, key := range []string{"total_events", "articles_processed", "processing_time"} {
		assert.Contains(t, string(complete), `"`+key+`"`)
	}

	cancelled, err := json.Marshal(CancelledFrame{EventType: FrameCancelled, TotalEvents: 1, Message: "m"})
	require.NoError(t, err)
	assert.Contains(t, string(cancelled), `"event_type":"cancelled"`)

	errFrame, err := json.Marshal(NewErrorFrame("boom", false))
	require.NoError(t, err)
	assert.Contains(t, string(errFrame), `"recoverable":false`)
}
