package utils

import "time"

const ReportDateLayout = "2006-01-02"

func FromUTCToTimezone(utcTime time.Time, timezone string) time.Time {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return utcTime
	}
	return utcTime.In(loc)
}

// ReportDate formats t the way the daily report endpoint expects it.
func ReportDate(t time.Time) string {
	return t.Format(ReportDateLayout)
}

func ParseReportDate(value string) (time.Time, error) {
	return time.Parse(ReportDateLayout, value)
}

func MonthYear(t time.Time) (int, int) {
	return int(t.Month()), t.Year()
}
