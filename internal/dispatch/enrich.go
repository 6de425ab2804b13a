package dispatch

import (
	"strings"
	"time"

	"github.com/Pbash-js/Pai/internal/timeparse"
)

// enrich overlays extracted temporal values onto the call args for
// time-sensitive operations. It fills gaps only: a value the model already
// supplied is never overwritten.
func enrich(now time.Time, args map[string]any) {
	text := strings.TrimSpace(strArg(args, "message") + " " + strArg(args, "title"))
	if text == "" {
		return
	}

	ext := timeparse.Extract(now, text)
	fillGap(args, "date", ext.Date)
	fillGap(args, "time", ext.Time)
	fillGap(args, "repeat", ext.Recurrence)
}

func fillGap(args map[string]any, key, value string) {
	if value == "" {
		return
	}
	if existing := strArg(args, key); existing != "" {
		return
	}
	args[key] = value
}

func strArg(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func strsArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func mapArg(args map[string]any, key string) map[string]any {
	if m, ok := args[key].(map[string]any); ok {
		return m
	}
	return nil
}
