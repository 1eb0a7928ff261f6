package commit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizeTimeOfDay turns "7:30 PM", "7:30pm", "7 p.m." or "19:30" into "19:30".
func NormalizeTimeOfDay(in string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(in))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return "", fmt.Errorf("time of day is required")
	}

	meridiem := ""
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem = s[len(s)-2:]
		s = s[:len(s)-2]
	}

	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return "", fmt.Errorf("invalid hour in %q", in)
	}
	minute := 0
	if hasMinutes {
		if len(minutePart) != 2 {
			return "", fmt.Errorf("invalid minutes in %q", in)
		}
		if minute, err = strconv.Atoi(minutePart); err != nil || minute < 0 || minute > 59 {
			return "", fmt.Errorf("invalid minutes in %q", in)
		}
	}

	switch meridiem {
	case "":
		if hour < 0 || hour > 23 {
			return "", fmt.Errorf("invalid hour in %q", in)
		}
	default:
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("invalid hour in %q", in)
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "pm" {
			hour += 12
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// WindowStart combines a YYYY-MM-DD date with a user-typed time of day.
func WindowStart(date, timeOfDay string, loc *time.Location) (time.Time, error) {
	hhmm, err := NormalizeTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(date)+" "+hhmm, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}
