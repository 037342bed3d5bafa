package main

import (
	"fmt"

	"geotrail/pkg/geofence"
	"geotrail/pkg/logging"
	"geotrail/pkg/playback"
)

// completionJournal writes finished playbacks to the events log.
type completionJournal struct{}

func (completionJournal) OnPositionUpdate(playback.Frame) {}

func (completionJournal) OnPlaybackComplete(sessionID string) {
	logging.LogEvent(&logging.Event{
		Type:   "playback",
		Title:  "Playback complete",
		Fields: map[string]any{"session_id": sessionID},
	})
}

func geofenceLogEvent(ev geofence.Event) *logging.Event {
	return &logging.Event{
		Timestamp: ev.Timestamp,
		Type:      "geofence",
		Title:     fmt.Sprintf("%s %s %s", ev.EntityID, ev.Transition, ev.FenceName),
		Summary:   ev.Point.String(),
		Fields: map[string]any{
			"entity_id":  ev.EntityID,
			"fence_id":   ev.FenceID,
			"transition": string(ev.Transition),
		},
	}
}
