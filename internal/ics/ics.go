// Package ics renders a confirmed meeting as an iCalendar document for
// download and calendar import.
package ics

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// Event is the slice of a confirmed meeting a calendar entry needs.
type Event struct {
	Title          string
	Description    string
	Location       string
	StartUTC       time.Time
	Duration       time.Duration
	OrganizerName  string
	OrganizerEmail string
}

// Render produces a single-event VCALENDAR document.
func Render(event Event) ([]byte, error) {
	ev := ical.NewComponent(ical.CompEvent)
	ev.Props.SetText(ical.PropUID, fmt.Sprintf("%s@candidly.app", uuid.New().String()))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ev.Props.SetDateTime(ical.PropDateTimeStart, event.StartUTC)
	ev.Props.SetDateTime(ical.PropDateTimeEnd, event.StartUTC.Add(event.Duration))
	ev.Props.SetText(ical.PropSummary, event.Title)
	if event.Description != "" {
		ev.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Location != "" {
		ev.Props.SetText(ical.PropLocation, event.Location)
	}
	if event.OrganizerEmail != "" {
		organizer := ical.NewProp(ical.PropOrganizer)
		if event.OrganizerName != "" {
			organizer.Params.Set(ical.ParamCommonName, event.OrganizerName)
		}
		organizer.SetText("mailto:" + event.OrganizerEmail)
		ev.Props.Add(organizer)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Candidly Calendar//EN")
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")
	cal.Children = append(cal.Children, ev)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Filename derives a safe attachment name from the meeting title.
func Filename(title string) string {
	name := unsafeFilename.ReplaceAllString(title, "-")
	if name == "" || name == "-" {
		name = "meeting"
	}
	return name + ".ics"
}
