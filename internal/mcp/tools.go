package mcp

import (
	"context"
	"fmt"

	"ganbarometer/internal/meter"
	"ganbarometer/internal/settings"
	"ganbarometer/internal/visuals"

	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// GanbarometerArgs are the inputs of get_ganbarometer.
type GanbarometerArgs struct {
	Refresh bool   `json:"refresh,omitempty" jsonschema:"render a fresh report instead of returning the last one"`
	Format  string `json:"format,omitempty" jsonschema:"json (default) or markdown with Mermaid charts"`
}

// SettingsArgs are the inputs of get_settings.
type SettingsArgs struct{}

// UpdateSettingArgs are the inputs of update_setting.
type UpdateSettingArgs struct {
	Key   string `json:"key" jsonschema:"setting name, e.g. interval or maxPace"`
	Value string `json:"value" jsonschema:"new value; rejected when out of range"`
}

func (s *Server) registerTools() {
	addTool(s.sdk, "get_ganbarometer",
		"Get the GanbarOmeter report for the lookback window: difficulty and pace gauges (0-1), reviews and misses per day, seconds per review, review sessions and the review-interval histogram.",
		s.handleGetGanbarometer)
	addTool(s.sdk, "get_settings",
		"Get the current GanbarOmeter settings (lookback interval, session gap, weighting heuristics).",
		s.handleGetSettings)
	addTool(s.sdk, "update_setting",
		fmt.Sprintf("Change one GanbarOmeter setting. Known keys: %v. Out-of-range values are rejected.", settings.Keys),
		s.handleUpdateSetting)
}

// addTool registers a handler with an input schema derived from In.
func addTool[In any](srv *sdk.Server, name, description string, h sdk.ToolHandlerFor[In, any]) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		log.Fatal().Err(err).Str("tool", name).Msg("Failed to derive tool schema")
	}
	sdk.AddTool(srv, &sdk.Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}, h)
}

func (s *Server) handleGetGanbarometer(ctx context.Context, _ *sdk.CallToolRequest, args GanbarometerArgs) (*sdk.CallToolResult, any, error) {
	report, ok := s.meter.Last()
	if args.Refresh || !ok {
		var err error
		report, err = s.meter.Render(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	switch args.Format {
	case "", "json":
		return jsonResult(report)
	case "markdown":
		return textResult(visuals.Markdown(report)), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown format %q: use json or markdown", args.Format)
	}
}

func (s *Server) handleGetSettings(ctx context.Context, _ *sdk.CallToolRequest, _ SettingsArgs) (*sdk.CallToolResult, any, error) {
	loaded, err := settings.Resolve(ctx, s.store, s.settingsID)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(loaded.Settings)
}

func (s *Server) handleUpdateSetting(ctx context.Context, _ *sdk.CallToolRequest, args UpdateSettingArgs) (*sdk.CallToolResult, any, error) {
	loaded, err := settings.Resolve(ctx, s.store, s.settingsID)
	if err != nil {
		return nil, nil, err
	}
	updated, err := loaded.Settings.With(args.Key, args.Value)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.Save(ctx, s.settingsID, updated); err != nil {
		return nil, nil, fmt.Errorf("saving settings: %w", err)
	}
	s.meter.Invalidate()

	log.Info().Str("key", args.Key).Str("value", args.Value).Msg("Setting updated")
	return jsonResult(updated)
}

func jsonResult(v any) (*sdk.CallToolResult, any, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(out)), nil, nil
}

func textResult(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}
}

var _ Renderer = (*meter.Meter)(nil)
