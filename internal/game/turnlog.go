package game

import "fmt"

// TurnLogEntry is one recorded event during turn generation.
type TurnLogEntry struct {
	Turn    int
	Step    string  // turn step name, e.g. "bombing", "movement"
	Subject string  // "star:4", "fleet:12", "empire:1", or "--"
	Key     string  // event name within the step
	Value   string  // human-readable detail
	NumVal  float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[Y=2401] movement   fleet:12    partial_travel  31.6ly of 49.0ly
func (e TurnLogEntry) String() string {
	return fmt.Sprintf("[Y=%04d] %-12s %-11s %-18s %s",
		e.Turn, e.Step, e.Subject, e.Key, e.Value)
}

// TurnLog collects structured events during turn generation. Unlike the
// zerolog output (operator-facing), TurnLog is unbounded, machine-readable
// and meant for tests and the headless runner.
type TurnLog struct {
	entries []TurnLogEntry
	verbose bool
}

// NewTurnLog creates a TurnLog. If verbose is true, per-entity routine
// entries (positions, stock levels) are also recorded.
func NewTurnLog(verbose bool) *TurnLog {
	return &TurnLog{verbose: verbose}
}

// Add records a new entry.
func (tl *TurnLog) Add(turn int, step, subject, key, value string, numVal float64) {
	tl.entries = append(tl.entries, TurnLogEntry{
		Turn:    turn,
		Step:    step,
		Subject: subject,
		Key:     key,
		Value:   value,
		NumVal:  numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (tl *TurnLog) AddVerbose(turn int, step, subject, key, value string, numVal float64) {
	if !tl.verbose {
		return
	}
	tl.Add(turn, step, subject, key, value, numVal)
}

// Entries returns all recorded entries.
func (tl *TurnLog) Entries() []TurnLogEntry { return tl.entries }

// Filter returns entries matching the given step and/or key.
// Pass empty string to match any value for that field.
func (tl *TurnLog) Filter(step, key string) []TurnLogEntry {
	var out []TurnLogEntry
	for _, e := range tl.entries {
		if step != "" && e.Step != step {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterSubject returns entries for one subject, e.g. "fleet:12".
func (tl *TurnLog) FilterSubject(subject string) []TurnLogEntry {
	var out []TurnLogEntry
	for _, e := range tl.entries {
		if e.Subject == subject {
			out = append(out, e)
		}
	}
	return out
}
