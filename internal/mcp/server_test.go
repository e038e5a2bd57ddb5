package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"ganbarometer/internal/meter"
	"ganbarometer/internal/review"
	"ganbarometer/internal/settings"
	"ganbarometer/internal/stats"

	"github.com/goccy/go-json"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMeter struct {
	renders     int
	invalidated int
}

func (m *stubMeter) Render(context.Context) (meter.Report, error) {
	m.renders++
	return meter.Report{
		Snapshot: stats.Snapshot{ReviewedCount: 42, Histogram: stats.NewHistogram(), Pace: 0.5},
		Interval: 72,
	}, nil
}

func (m *stubMeter) Last() (meter.Report, bool) { return meter.Report{}, false }

func (m *stubMeter) Invalidate() { m.invalidated++ }

func connect(t *testing.T, srv *Server) *sdk.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := sdk.NewInMemoryTransports()
	ss, err := srv.sdk.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callText(t *testing.T, cs *sdk.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &sdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdk.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text, res.IsError
}

func TestTools_Listed(t *testing.T) {
	cs := connect(t, NewServer(&stubMeter{}, settings.TOMLStore{Dir: t.TempDir()}, "gb", "test"))

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"get_ganbarometer", "get_settings", "update_setting"}, names)
}

func TestGetGanbarometer(t *testing.T) {
	m := &stubMeter{}
	cs := connect(t, NewServer(m, settings.TOMLStore{Dir: t.TempDir()}, "gb", "test"))

	text, isErr := callText(t, cs, "get_ganbarometer", map[string]any{})
	require.False(t, isErr, text)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Equal(t, float64(42), decoded["reviewedCount"])
	assert.Equal(t, 1, m.renders)

	text, isErr = callText(t, cs, "get_ganbarometer", map[string]any{"format": "markdown"})
	require.False(t, isErr, text)
	assert.True(t, strings.HasPrefix(text, "# GanbarOmeter"))

	_, isErr = callText(t, cs, "get_ganbarometer", map[string]any{"format": "xml"})
	assert.True(t, isErr)
}

func TestSettingsTools(t *testing.T) {
	m := &stubMeter{}
	store := settings.TOMLStore{Dir: t.TempDir()}
	cs := connect(t, NewServer(m, store, "gb", "test"))

	text, isErr := callText(t, cs, "get_settings", map[string]any{})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"interval": 72`)

	text, isErr = callText(t, cs, "update_setting", map[string]any{"key": "interval", "value": "24"})
	require.False(t, isErr, text)
	assert.Equal(t, 1, m.invalidated)

	stored, err := store.Load(context.Background(), "gb", settings.Defaults())
	require.NoError(t, err)
	assert.Equal(t, 24, stored.Interval)

	text, isErr = callText(t, cs, "update_setting", map[string]any{"key": "maxPace", "value": "5"})
	assert.True(t, isErr)
	assert.Contains(t, text, "maxPace")
	assert.Equal(t, 1, m.invalidated)
}

type emptySource struct{}

func (emptySource) ReviewsSince(context.Context, time.Time) ([]review.Event, error) {
	return nil, nil
}

func TestGetGanbarometer_ReflectsUpdatedSetting(t *testing.T) {
	store := settings.TOMLStore{Dir: t.TempDir()}
	m := meter.New(emptySource{}, meter.StaticCounts{}, store, "gb")
	cs := connect(t, NewServer(m, store, "gb", "test"))

	interval := func() float64 {
		text, isErr := callText(t, cs, "get_ganbarometer", map[string]any{})
		require.False(t, isErr, text)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(text), &decoded))
		return decoded["interval"].(float64)
	}

	assert.Equal(t, float64(72), interval())
	_, ok := m.Last()
	require.True(t, ok)

	text, isErr := callText(t, cs, "update_setting", map[string]any{"key": "interval", "value": "24"})
	require.False(t, isErr, text)

	assert.Equal(t, float64(24), interval())
}
