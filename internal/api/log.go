package api

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"geotrail/pkg/logging"
)

// maxParamLen drops attribute values too long for a one-line display.
const maxParamLen = 20

// Regex to capture key=value or key="value with spaces"
var logRegex = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// LatestLogResponse carries the newest server log line and journal event.
type LatestLogResponse struct {
	Log    string   `json:"log"`
	Event  string   `json:"event"`
	Recent []string `json:"recent,omitempty"`
}

// handleLatestLog returns the last captured log line and journal event.
// ?lines=N adds up to N recent formatted log lines.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	resp := LatestLogResponse{
		Log:   formatLogLine(logging.GlobalLogCapture.GetLastLine()),
		Event: logging.GlobalEventCapture.GetLastLine(),
	}

	if s := r.URL.Query().Get("lines"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, r, fmt.Errorf("%w: lines %q", errBadRequest, s))
			return
		}
		for _, line := range logging.GlobalLogCapture.Lines(n) {
			resp.Recent = append(resp.Recent, formatLogLine(line))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// formatLogLine renders a slog text record as "HH:MM:SS [LEVEL] msg (k=v, ...)".
// INFO is left implicit, attributes are sorted and long values dropped.
// Lines that do not parse are returned unchanged.
func formatLogLine(raw string) string {
	var (
		ts, level, msg string
		params         []string
	)
	for _, m := range logRegex.FindAllStringSubmatch(raw, -1) {
		key, val := m[1], m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				ts = t.Format("15:04:05")
			}
		case "level":
			level = val
		case "msg":
			msg = val
		case "source":
		default:
			if len(val) <= maxParamLen {
				params = append(params, key+"="+val)
			}
		}
	}
	if msg == "" {
		return raw
	}
	sort.Strings(params)

	var b strings.Builder
	if ts != "" {
		b.WriteString(ts)
		b.WriteByte(' ')
	}
	if level != "" && level != "INFO" {
		fmt.Fprintf(&b, "[%s] ", level)
	}
	b.WriteString(msg)
	if len(params) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(params, ", "))
	}
	return b.String()
}
