package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscord_SendSuccess(t *testing.T) {
	var got DiscordMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord("", srv.URL)
	require.NoError(t, d.SendSuccess("NRI batch finished"))
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, 65280, got.Embeds[0].Color)
	assert.Contains(t, got.Embeds[0].Description, "NRI batch finished")
}

func TestDiscord_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, "")
	err := d.SendError("boom")
	assert.ErrorContains(t, err, "429")
}

func TestDiscord_Disabled(t *testing.T) {
	d := NewDiscord("", "")
	assert.NoError(t, d.SendError("ignored"))
	assert.NoError(t, d.SendSuccess("ignored"))

	var nilDiscord *Discord
	assert.NoError(t, nilDiscord.SendSuccess("ignored"))
}
