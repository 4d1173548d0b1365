package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zakki2007-hub/PostureAnalyze/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCloudNotifier_Notify_Success(t *testing.T) {
	var received models.AlarmEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/alarm/posture", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewCloudNotifier(server.URL, zap.NewNop())

	event := &models.AlarmEvent{
		EventID:     "evt-1",
		DeviceID:    "chair-01",
		EventType:   "Sedentary",
		Pattern:     "[0,800,400,800]",
		PostureText: "Time to Stand up!",
		SitTime:     2750,
		TriggeredAt: time.Now(),
		CreatedAt:   time.Now(),
	}
	err := notifier.Notify(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, "evt-1", received.EventID)
	assert.Equal(t, "Sedentary", received.EventType)
}

func TestCloudNotifier_Notify_EndpointRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	notifier := NewCloudNotifier(server.URL, zap.NewNop())

	err := notifier.Notify(context.Background(), &models.AlarmEvent{
		EventID:   "evt-1",
		DeviceID:  "chair-01",
		EventType: "BadPosture",
	})

	assert.Error(t, err)
}
