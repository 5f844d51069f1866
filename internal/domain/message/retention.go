package message

import "time"

// Cutoff returns the retention cutoff for the given window.
func Cutoff(now time.Time, retentionDays int) time.Time {
	return now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
}

// Partition splits a message sequence into the messages to keep and
// the messages that have aged out. Only processed messages strictly
// older than the cutoff qualify for archival; pending and failed
// messages are kept regardless of age so unfinished work is never
// lost to a retention sweep. A message exactly at the cutoff is kept.
// Relative order is preserved in both halves.
func Partition(msgs []*Message, cutoff time.Time) (current, archived []*Message) {
	current = make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Status == StatusProcessed && m.Timestamp.Before(cutoff) {
			archived = append(archived, m)
		} else {
			current = append(current, m)
		}
	}
	return current, archived
}
