package models

import "time"

// DeviceType is the caller-reported device class.
type DeviceType string

// Device types.
const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
	DeviceUnknown DeviceType = "unknown"
)

// IsValid reports whether d is a known device type.
func (d DeviceType) IsValid() bool {
	switch d {
	case DeviceMobile, DeviceTablet, DeviceDesktop, DeviceUnknown:
		return true
	}

	return false
}

// TimeOfDay is a coarse time bucket used for contextual scoring.
type TimeOfDay string

// Time-of-day buckets.
const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// TimeOfDayBucket maps an hour-of-day to its bucket.
func TimeOfDayBucket(t time.Time) TimeOfDay {
	switch hour := t.Hour(); {
	case hour >= 5 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 17:
		return TimeAfternoon
	case hour >= 17 && hour < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}

// SessionContext carries short-term browsing context supplied by the caller.
// Ephemeral: the core never persists it beyond the behavior store's
// aggregate signals. RecentQueries and ViewedProducts are most-recent-first.
type SessionContext struct {
	SessionID      string     `json:"session_id"`
	DeviceType     DeviceType `json:"device_type"`
	RecentQueries  []string   `json:"recent_queries,omitempty"`
	ViewedProducts []string   `json:"viewed_products,omitempty"`
	TimeOfDay      TimeOfDay  `json:"time_of_day"`
}
