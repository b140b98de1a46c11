package lyrics

import (
	"bufio"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SyncedLine is one timestamped line of an LRC lyrics body.
type SyncedLine struct {
	At   time.Duration
	Text string
}

var (
	// [00:12.34], [00:12:34], or [00:12]; a line may carry several.
	lrcTimestampRe = regexp.MustCompile(`\[(\d+):(\d+)(?:[.:](\d+))?\]`)
	// Metadata tags like [ar:Artist Name].
	lrcMetaRe = regexp.MustCompile(`^\[([a-z]+):(.+)\]$`)
)

// IsSynced reports whether text carries at least one LRC timestamp.
func IsSynced(text string) bool {
	return lrcTimestampRe.MatchString(text)
}

// ParseSynced extracts the timestamped lines of an LRC body, sorted by
// timestamp. Metadata tags and untimestamped lines are skipped. A line
// with several timestamps yields one SyncedLine per timestamp.
func ParseSynced(text string) []SyncedLine {
	var lines []SyncedLine

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || lrcMetaRe.MatchString(line) {
			continue
		}

		stamps := lrcTimestampRe.FindAllStringSubmatchIndex(line, -1)
		if len(stamps) == 0 {
			continue
		}

		body := strings.TrimSpace(line[stamps[len(stamps)-1][1]:])
		for _, stamp := range stamps {
			at, ok := parseLRCTimestamp(line[stamp[0]:stamp[1]])
			if !ok {
				continue
			}
			lines = append(lines, SyncedLine{At: at, Text: body})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].At < lines[j].At })
	return lines
}

// Plain strips LRC timestamps and metadata tags from text. Unsynced
// input comes back unchanged apart from trimmed edges.
func Plain(text string) string {
	if !IsSynced(text) {
		return strings.TrimSpace(text)
	}

	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if lrcMetaRe.MatchString(line) {
			continue
		}
		out = append(out, strings.TrimSpace(lrcTimestampRe.ReplaceAllString(line, "")))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func parseLRCTimestamp(s string) (time.Duration, bool) {
	m := lrcTimestampRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}

	var millis int
	if m[3] != "" {
		millis, err = strconv.Atoi(m[3])
		if err != nil {
			return 0, false
		}
		// two digits means centiseconds
		if len(m[3]) == 2 {
			millis *= 10
		}
	}

	return time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, true
}
