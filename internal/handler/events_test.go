package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/sneakerbase/internal/events"
)

// readEvent returns the next event block, skipping comment lines.
func readEvent(t *testing.T, reader *bufio.Reader) (string, events.Event) {
	t.Helper()

	var name string
	var event events.Event
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		case line == "" && name != "":
			return name, event
		}
	}
}

func TestEventStream(t *testing.T) {
	broker := events.NewBroker(8)
	server := httptest.NewServer(http.HandlerFunc(NewEventHandler(broker, time.Hour).Stream))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	broker.Publish(events.Event{Type: events.RatingAdded, ID: "r1", SneakerID: "s1"})

	reader := bufio.NewReader(resp.Body)
	name, event := readEvent(t, reader)
	assert.Equal(t, "rating.added", name)
	assert.Equal(t, "r1", event.ID)
	assert.Equal(t, "s1", event.SneakerID)

	cancel()
	require.Eventually(t, func() bool { return broker.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestEventStreamHeartbeat(t *testing.T) {
	broker := events.NewBroker(1)
	server := httptest.NewServer(http.HandlerFunc(NewEventHandler(broker, 20*time.Millisecond).Stream))
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	reader := bufio.NewReader(resp.Body)
	first, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", first)

	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line == ": ping\n" {
			break
		}
	}
}

func TestEventStreamEndsOnBrokerClose(t *testing.T) {
	broker := events.NewBroker(1)
	rec := httptest.NewRecorder()
	done := make(chan struct{})

	go func() {
		defer close(done)
		NewEventHandler(broker, time.Hour).Stream(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	}()

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	broker.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end")
	}
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}
