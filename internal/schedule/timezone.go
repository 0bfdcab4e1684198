// Package schedule holds the availability scheduling engine: timezone
// conversion, candidate slot generation and heatmap aggregation. Everything
// in this package is pure computation; persistence lives in the repository
// layer.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

// ValidZone reports whether zone is a resolvable IANA timezone identifier.
func ValidZone(zone string) bool {
	if zone == "" {
		return false
	}
	_, err := time.LoadLocation(zone)
	return err == nil
}

// ToUTC reinterprets the wall-clock fields of local in the given zone and
// returns the UTC instant. The offset used is the one in effect at that
// wall-clock time, so conversions near DST transitions stay correct.
func ToUTC(local time.Time, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}
	t := time.Date(
		local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(),
		loc,
	)
	return t.UTC(), nil
}

// ToLocal converts a UTC instant to the zone's wall clock.
func ToLocal(utc time.Time, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}
	return utc.In(loc), nil
}

// OffsetLabel returns the zone's current UTC offset as a label like "UTC+7",
// "UTC-5" or "UTC+5:30".
func OffsetLabel(zone string) (string, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}
	_, offset := time.Now().In(loc).Zone()
	if offset == 0 {
		return "UTC", nil
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	if minutes == 0 {
		return fmt.Sprintf("UTC%s%d", sign, hours), nil
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, hours, minutes), nil
}

// Abbreviation returns the zone's short name at the current instant, e.g.
// "PST" or "ICT". Zones without a letter abbreviation report a numeric one
// like "+07", matching the timezone database.
func Abbreviation(zone string) (string, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}
	name, _ := time.Now().In(loc).Zone()
	return name, nil
}

// CityName derives a human-friendly city label from an IANA identifier:
// "America/New_York" -> "New York", "Asia/Ho_Chi_Minh" -> "Ho Chi Minh".
func CityName(zone string) string {
	parts := strings.Split(zone, "/")
	city := parts[len(parts)-1]
	return strings.ReplaceAll(city, "_", " ")
}

// ZoneOption describes one entry of the timezone selector.
type ZoneOption struct {
	Value        string `json:"value"`
	Label        string `json:"label"`
	City         string `json:"city"`
	Offset       string `json:"offset"`
	Abbreviation string `json:"abbreviation"`
	Region       string `json:"region"`
}

// ZoneGroup is a region with its curated zone identifiers, in display order.
type ZoneGroup struct {
	Region string
	Zones  []string
}

// ZoneGroups is the curated set of common zones offered by the selector,
// grouped by region.
var ZoneGroups = []ZoneGroup{
	{Region: "Americas", Zones: []string{
		"America/New_York", "America/Chicago", "America/Denver",
		"America/Los_Angeles", "America/Anchorage", "Pacific/Honolulu",
		"America/Toronto", "America/Vancouver", "America/Mexico_City",
		"America/Sao_Paulo", "America/Argentina/Buenos_Aires",
		"America/Bogota", "America/Lima",
	}},
	{Region: "Europe & Africa", Zones: []string{
		"Europe/London", "Europe/Paris", "Europe/Berlin", "Europe/Amsterdam",
		"Europe/Madrid", "Europe/Rome", "Europe/Stockholm", "Europe/Zurich",
		"Europe/Moscow", "Europe/Istanbul", "Africa/Cairo", "Africa/Lagos",
		"Africa/Johannesburg",
	}},
	{Region: "Asia & Pacific", Zones: []string{
		"Asia/Dubai", "Asia/Kolkata", "Asia/Dhaka", "Asia/Bangkok",
		"Asia/Ho_Chi_Minh", "Asia/Jakarta", "Asia/Singapore", "Asia/Shanghai",
		"Asia/Hong_Kong", "Asia/Seoul", "Asia/Tokyo", "Australia/Sydney",
		"Australia/Melbourne", "Pacific/Auckland",
	}},
}

// Options returns the flat selector list with display metadata per zone.
func Options() []ZoneOption {
	var options []ZoneOption
	for _, group := range ZoneGroups {
		for _, zone := range group.Zones {
			offset, err := OffsetLabel(zone)
			if err != nil {
				continue
			}
			abbr, _ := Abbreviation(zone)
			city := CityName(zone)
			options = append(options, ZoneOption{
				Value:        zone,
				Label:        fmt.Sprintf("%s (%s)", city, offset),
				City:         city,
				Offset:       offset,
				Abbreviation: abbr,
				Region:       group.Region,
			})
		}
	}
	return options
}
