// Package header reads labelled fields from EDGAR filing headers.
//
// Every field is located by a small state machine that walks the line
// stream once: it optionally seeks a section marker, then seeks each label
// in order, optionally collecting a contiguous block of repeated labels.
// Missing or malformed fields yield empty values, never errors.
package header

import (
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/edgarscan"
)

// Header labels.
const (
	LabelPeriodOfReport  = "CONFORMED PERIOD OF REPORT"
	LabelItemInformation = "ITEM INFORMATION"
	LabelBusinessAddress = "BUSINESS ADDRESS"
	LabelState           = "STATE"
	LabelZip             = "ZIP"
	LabelDocumentCount   = "PUBLIC DOCUMENT COUNT"
)

// State is the state of a Machine.
type State int

// Machine states.
const (
	SeekingSection State = iota
	SeekingLabel
	Collecting
	Done
)

func (s State) String() string {
	switch s {
	case SeekingSection:
		return "seeking-section"
	case SeekingLabel:
		return "seeking-label"
	case Collecting:
		return "collecting"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Machine locates labelled values in a filing header.
type Machine struct {
	section string
	labels  []string
	repeat  bool

	state  State
	next   int
	values [][]string
}

// NewMachine returns a machine that finds labels in order. When section is
// non-empty, labels are only searched after the section marker line.
func NewMachine(section string, labels ...string) *Machine {
	m := &Machine{
		section: section,
		labels:  labels,
		values:  make([][]string, len(labels)),
	}
	m.state = SeekingLabel
	if section != "" {
		m.state = SeekingSection
	}
	if len(labels) == 0 {
		m.state = Done
	}
	return m
}

// NewRepeatMachine returns a machine that collects every value of a label
// from the first contiguous block of lines carrying it.
func NewRepeatMachine(label string) *Machine {
	m := NewMachine("", label)
	m.repeat = true
	return m
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Step feeds one line to the machine and returns the new state.
func (m *Machine) Step(line string) State {
	switch m.state {
	case SeekingSection:
		if _, ok := MatchLabel(line, m.section); ok {
			m.state = SeekingLabel
		}
	case SeekingLabel:
		v, ok := MatchLabel(line, m.labels[m.next])
		if !ok {
			break
		}
		m.values[m.next] = append(m.values[m.next], v)
		if m.repeat {
			m.state = Collecting
			break
		}
		m.next++
		if m.next == len(m.labels) {
			m.state = Done
		}
	case Collecting:
		v, ok := MatchLabel(line, m.labels[m.next])
		if !ok {
			m.state = Done
			break
		}
		m.values[m.next] = append(m.values[m.next], v)
	}
	return m.state
}

// Run feeds lines from r until the machine is done or the stream ends.
func (m *Machine) Run(r edgarscan.LineReader) *Machine {
	for m.state != Done && r.Next() {
		m.Step(r.Text())
	}
	return m
}

// Values returns every value found for the i-th label.
func (m *Machine) Values(i int) []string {
	return m.values[i]
}

// Value returns the first value found for the i-th label, or "".
func (m *Machine) Value(i int) string {
	if len(m.values[i]) == 0 {
		return ""
	}
	return m.values[i][0]
}

// MatchLabel reports whether line carries label and returns its value.
// The trimmed text before the first colon must equal label exactly; the
// value is the trimmed text after that colon.
func MatchLabel(line, label string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, label) {
		return "", false
	}
	name, value, found := strings.Cut(trimmed, ":")
	if strings.TrimSpace(name) != label {
		return "", false
	}
	if !found {
		return "", true
	}
	return strings.TrimSpace(value), true
}

// PeriodOfReport returns the conformed period of report as YYYY-MM-DD, or
// "" when the label is absent or its value is not an 8-digit date.
func PeriodOfReport(r edgarscan.LineReader) string {
	m := NewMachine("", LabelPeriodOfReport).Run(r)
	return FormatDate(m.Value(0))
}

// FormatDate reformats an 8-digit YYYYMMDD token as YYYY-MM-DD.
// Returns "" if the token is malformed.
func FormatDate(token string) string {
	if len(token) != 8 {
		return ""
	}
	t, err := time.Parse("20060102", token)
	if err != nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

// Items returns the uppercased item information codes of the first
// contiguous block of ITEM INFORMATION lines. Empty values are skipped.
func Items(r edgarscan.LineReader) []string {
	m := NewRepeatMachine(LabelItemInformation).Run(r)
	var items []string
	for _, v := range m.Values(0) {
		if v == "" {
			continue
		}
		items = append(items, strings.ToUpper(v))
	}
	return items
}

// BusinessAddress returns the uppercased state and zip code of the business
// address section. A value whose label is never reached is "".
func BusinessAddress(r edgarscan.LineReader) (state, zip string) {
	m := NewMachine(LabelBusinessAddress, LabelState, LabelZip).Run(r)
	return strings.ToUpper(m.Value(0)), strings.ToUpper(m.Value(1))
}

// ParseDocumentCount parses a PUBLIC DOCUMENT COUNT line. The integer is
// read after the last colon with embedded whitespace removed.
func ParseDocumentCount(line string) (int, bool) {
	if _, ok := MatchLabel(line, LabelDocumentCount); !ok {
		return 0, false
	}
	i := strings.LastIndex(line, ":")
	if i < 0 {
		return 0, false
	}
	digits := strings.Join(strings.Fields(line[i+1:]), "")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
