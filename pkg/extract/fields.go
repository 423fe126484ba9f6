package extract

import (
	"regexp"
	"strings"
	"time"
)

// Defaults used when a field pattern finds nothing in the note.
const (
	UnknownValue    = "Unknown"
	UnknownProvider = "Dr. Unknown"
)

var (
	patientNameRe = regexp.MustCompile(`(?i:\bpatient(?:\s+name)?\s*:\s*)([^\n,;.]+)`)
	dobRe         = regexp.MustCompile(`(?i:\bDOB\s*:\s*)([^\n,;.]+)`)
	diagnosisRe   = regexp.MustCompile(`(?i:\bdiagnosis\s*:\s*)([^\n.;]+)`)
	mrnRe         = regexp.MustCompile(`(?i:\bMRN\s*[:#]?\s*)([A-Za-z0-9][A-Za-z0-9\-]*)`)
	drPrefixRe    = regexp.MustCompile(`^[Dd]r\.?\s*`)
	usageRe       = regexp.MustCompile(`(?i)\b(?:use(?:s|d)?\s+[^.;\n]+|as needed[^.;\n]*|nightly[^.;\n]*|at night[^.;\n]*|during sleep[^.;\n]*)`)

	// Provider patterns in priority order; the first match wins. Labels
	// are case-insensitive, the captured name is not, so the capture
	// stops at the end of the capitalized name.
	providerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i:\bordered\s+by\s+)(?:[Dd]r\.?\s*)?([A-Z][a-zA-Z'\-]*(?:\s+[A-Z][a-zA-Z'\-]*)*)`),
		regexp.MustCompile(`(?i:\bordering\s+physician\s*:\s*)(?:[Dd]r\.?\s*)?([A-Z][a-zA-Z'\-]*(?:\s+[A-Z][a-zA-Z'\-]*)*)`),
		regexp.MustCompile(`\b[Dd]r\.?\s+([A-Z][a-zA-Z'\-]*(?:\s+[A-Z][a-zA-Z'\-]*)*)`),
		regexp.MustCompile(`(?i:\bprovider\s*:\s*)(?:[Dd]r\.?\s*)?([A-Z][a-zA-Z'\-]*(?:\s+[A-Z][a-zA-Z'\-]*)*)`),
	}

	dateToken     = `\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}-\d{1,2}-\d{2,4}|[A-Z][a-z]+ \d{1,2},? \d{4}`
	labeledDateRe = regexp.MustCompile(`(?i:\bdate\s*:\s*)(` + dateToken + `)`)
	bareDateRe    = regexp.MustCompile(`(` + dateToken + `)`)

	dateLayouts = []string{
		"2006-01-02",
		"1/2/2006",
		"1/2/06",
		"1-2-2006",
		"January 2, 2006",
		"January 2 2006",
		"Jan 2, 2006",
		"Jan 2 2006",
	}
)

// ExtractPatientName pulls the value of a "Patient Name:" or "Patient:"
// label.
func ExtractPatientName(text string) string {
	return firstGroup(patientNameRe, text, UnknownValue)
}

// ExtractDOB pulls the value of a "DOB:" label, kept free-form as found.
func ExtractDOB(text string) string {
	return firstGroup(dobRe, text, UnknownValue)
}

// ExtractDiagnosis pulls the value of a "Diagnosis:" label.
func ExtractDiagnosis(text string) string {
	return firstGroup(diagnosisRe, text, UnknownValue)
}

// ExtractPatientID pulls an MRN-style token when present.
func ExtractPatientID(text string) (string, bool) {
	match := mrnRe.FindStringSubmatch(text)
	if len(match) < 2 {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

// ExtractUsageNote pulls a free-text usage sentence when present; empty
// otherwise.
func ExtractUsageNote(text string) string {
	return strings.TrimSpace(usageRe.FindString(text))
}

// ExtractProvider tries the provider patterns in priority order and
// normalizes the first match. Falls back to "Dr. Unknown".
func ExtractProvider(text string) string {
	for _, re := range providerRes {
		match := re.FindStringSubmatch(text)
		if len(match) >= 2 && strings.TrimSpace(match[1]) != "" {
			return NormalizeProvider(match[1])
		}
	}
	return UnknownProvider
}

// NormalizeProvider guarantees exactly one "Dr. " prefix and no trailing
// period, regardless of which pattern produced the name.
func NormalizeProvider(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, ".")
	name = strings.TrimSpace(drPrefixRe.ReplaceAllString(name, ""))
	if name == "" {
		return UnknownProvider
	}
	return "Dr. " + name
}

// ExtractNoteDate finds a "Date:"-labeled date token, then any bare
// date-like token, and parses the first hit. Returns fallback when no
// token parses.
func ExtractNoteDate(text string, fallback time.Time) time.Time {
	for _, re := range []*regexp.Regexp{labeledDateRe, bareDateRe} {
		match := re.FindStringSubmatch(text)
		if len(match) < 2 {
			continue
		}
		if parsed, ok := parseDate(match[1]); ok {
			return parsed
		}
	}
	return fallback
}

func parseDate(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, token); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func firstGroup(re *regexp.Regexp, text, fallback string) string {
	match := re.FindStringSubmatch(text)
	if len(match) < 2 {
		return fallback
	}
	value := strings.TrimSpace(match[1])
	if value == "" {
		return fallback
	}
	return value
}
