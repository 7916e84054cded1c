package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wkhart/workspace-mcp/internal/calendar"
	"github.com/wkhart/workspace-mcp/internal/server"
	"github.com/wkhart/workspace-mcp/internal/tools/common"
)

// RegisterCalendarTools registers all Calendar tools with the MCP server.
// Write operations (creating, deleting events) are skipped in read-only mode.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List calendar events in a time range"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the calendar belongs to"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start of the range, RFC3339 (default: now)"),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of the range, RFC3339 (default: 7 days from timeMin)"),
		),
		mcp.WithString("query",
			mcp.Description("Free-text search over event fields"),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithService("calendar_list_events", "calendar", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a calendar event"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the calendar belongs to"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Event start time, RFC3339"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Event end time, RFC3339"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("attendees",
			mcp.Description("Attendee email addresses, comma-separated"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithService("calendar_create_event", "calendar", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description("Account email the calendar belongs to"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The event ID to delete"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
	)

	s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithService("calendar_delete_event", "calendar", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	calendarID := ""
	if calVal, ok := args["calendarId"].(string); ok {
		calendarID = calVal
	}

	timeMin := time.Now()
	if minVal, ok := args["timeMin"].(string); ok && minVal != "" {
		parsed, err := time.Parse(time.RFC3339, minVal)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMin: %v", err)), nil
		}
		timeMin = parsed
	}

	timeMax := timeMin.Add(7 * 24 * time.Hour)
	if maxVal, ok := args["timeMax"].(string); ok && maxVal != "" {
		parsed, err := time.Parse(time.RFC3339, maxVal)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMax: %v", err)), nil
		}
		timeMax = parsed
	}

	query := ""
	if queryVal, ok := args["query"].(string); ok {
		query = queryVal
	}

	events, err := withCalendarClient(ctx, sc, account, func(client *calendar.Client) ([]calendar.EventSummary, error) {
		return client.ListEvents(ctx, calendarID, timeMin, timeMax, query)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}
	if len(events) == 0 {
		return mcp.NewToolResultText("No events found in the given range."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d event(s):\n\n", len(events)))
	for _, event := range events {
		sb.WriteString(formatEventSummary(event))
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatEventSummary(event calendar.EventSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID: %s\nSummary: %s\nStart: %s\nEnd: %s\n",
		event.ID, event.Summary,
		event.Start.Format(time.RFC3339), event.End.Format(time.RFC3339)))
	if event.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", event.Location))
	}
	if len(event.Attendees) > 0 {
		sb.WriteString(fmt.Sprintf("Attendees: %s\n", strings.Join(event.Attendees, ", ")))
	}
	return sb.String()
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	summary, ok := args["summary"].(string)
	if !ok || summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}
	startStr, ok := args["start"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("start is required"), nil
	}
	endStr, ok := args["end"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("end is required"), nil
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start time: %v", err)), nil
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end time: %v", err)), nil
	}

	calendarID := ""
	if calVal, ok := args["calendarId"].(string); ok {
		calendarID = calVal
	}

	input := calendar.EventInput{
		Summary: summary,
		Start:   start,
		End:     end,
	}
	if descVal, ok := args["description"].(string); ok {
		input.Description = descVal
	}
	if locVal, ok := args["location"].(string); ok {
		input.Location = locVal
	}
	if attVal, ok := args["attendees"].(string); ok && attVal != "" {
		for _, attendee := range strings.Split(attVal, ",") {
			if attendee = strings.TrimSpace(attendee); attendee != "" {
				input.Attendees = append(input.Attendees, attendee)
			}
		}
	}

	created, err := withCalendarClient(ctx, sc, account, func(client *calendar.Client) (*calendar.EventSummary, error) {
		return client.CreateEvent(ctx, calendarID, input)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event created (ID: %s)\n%s", created.ID, created.HTMLLink)), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	calendarID := ""
	if calVal, ok := args["calendarId"].(string); ok {
		calendarID = calVal
	}

	_, err := withCalendarClient(ctx, sc, account, func(client *calendar.Client) (struct{}, error) {
		return struct{}{}, client.DeleteEvent(ctx, calendarID, eventID)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event %s: %v", eventID, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted.", eventID)), nil
}
