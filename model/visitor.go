package model

// Unknown is the sentinel stored when a field cannot be determined.
const Unknown = "Unknown"

// TimeLayout is the stored timestamp format, second precision, UTC.
const TimeLayout = "2006-01-02 15:04:05"

type VisitorEvent struct {
	IP       string `json:"ip"`
	Browser  string `json:"browser"`
	Time     string `json:"time"`
	Location string `json:"location"`
}
