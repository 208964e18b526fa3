package codeviz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultChunkRunes = 12
	defaultChunkDelay = 40 * time.Millisecond
)

// scriptStep is a single action in a replay script.
type scriptStep struct {
	Action string `json:"action"`
	Text   string `json:"text,omitempty"`
	Ms     int    `json:"ms,omitempty"`
}

// script is the top-level JSON structure of a replay script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptSource is an offline TextSource that replays canned snippets. Emit
// steps are split into small chunks delivered ChunkDelay apart so the output
// looks like a live stream.
type ScriptSource struct {
	ChunkRunes int
	ChunkDelay time.Duration
	Loop       bool

	steps []scriptStep
}

// LoadScript parses a JSON replay script:
//
//	{"steps": [
//		{"action": "emit", "text": "fn main() {}\n"},
//		{"action": "wait", "ms": 500}
//	]}
func LoadScript(jsonData []byte) (*ScriptSource, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("codeviz: parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("codeviz: parse script: no steps")
	}
	emits := 0
	for i, st := range sc.Steps {
		switch st.Action {
		case "emit":
			if st.Text == "" {
				return nil, fmt.Errorf("codeviz: parse script: step %d: emit without text", i)
			}
			emits++
		case "wait":
			if st.Ms < 0 {
				return nil, fmt.Errorf("codeviz: parse script: step %d: negative wait", i)
			}
		default:
			return nil, fmt.Errorf("codeviz: parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	if emits == 0 {
		return nil, fmt.Errorf("codeviz: parse script: no emit steps")
	}
	return &ScriptSource{
		ChunkRunes: defaultChunkRunes,
		ChunkDelay: defaultChunkDelay,
		Loop:       true,
		steps:      sc.Steps,
	}, nil
}

// NewScriptSource builds a looping source that emits each snippet followed
// by a blank line and a short pause.
func NewScriptSource(snippets ...string) *ScriptSource {
	s := &ScriptSource{
		ChunkRunes: defaultChunkRunes,
		ChunkDelay: defaultChunkDelay,
		Loop:       true,
	}
	for _, sn := range snippets {
		s.steps = append(s.steps,
			scriptStep{Action: "emit", Text: strings.TrimRight(sn, "\n") + "\n\n"},
			scriptStep{Action: "wait", Ms: 400},
		)
	}
	return s
}

// Stream replays the script until ctx is cancelled (or once, if Loop is
// false).
func (s *ScriptSource) Stream(ctx context.Context, emit func(fragment string)) error {
	if len(s.steps) == 0 {
		return fmt.Errorf("codeviz: script has no steps")
	}
	for {
		for _, st := range s.steps {
			switch st.Action {
			case "emit":
				for _, chunk := range chunkRunes(st.Text, s.ChunkRunes) {
					if ctx.Err() != nil {
						return nil
					}
					emit(chunk)
					if !sleepCtx(ctx, s.ChunkDelay) {
						return nil
					}
				}
			case "wait":
				if !sleepCtx(ctx, time.Duration(st.Ms)*time.Millisecond) {
					return nil
				}
			}
		}
		if !s.Loop {
			return nil
		}
	}
}

// Complete returns one of the scripted snippets, chosen by the prompt, under
// a comment naming the prompt.
func (s *ScriptSource) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var emits []string
	for _, st := range s.steps {
		if st.Action == "emit" {
			emits = append(emits, st.Text)
		}
	}
	if len(emits) == 0 {
		return "", fmt.Errorf("codeviz: script has no snippets")
	}
	pick := emits[utf8.RuneCountInString(prompt)%len(emits)]
	return "// " + strings.TrimSpace(prompt) + "\n" + strings.TrimRight(pick, "\n"), nil
}

// chunkRunes splits s into pieces of at most n runes.
func chunkRunes(s string, n int) []string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return []string{s}
	}
	var out []string
	start, count := 0, 0
	for i := range s {
		if count == n {
			out = append(out, s[start:i])
			start, count = i, 0
		}
		count++
	}
	return append(out, s[start:])
}

// sleepCtx waits for d or until ctx is done. Reports whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// DefaultSnippets are replayed when no remote source is configured.
var DefaultSnippets = []string{
	`def fibonacci(n):
    a, b = 0, 1
    for _ in range(n):
        yield a
        a, b = b, a + b

print(list(fibonacci(10)))`,
	`function debounce(fn, wait) {
  let timer;
  return (...args) => {
    clearTimeout(timer);
    timer = setTimeout(() => fn(...args), wait);
  };
}`,
	`fn gcd(a: u64, b: u64) -> u64 {
    if b == 0 {
        a
    } else {
        gcd(b, a % b)
    }
}`,
	`func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}`,
	`SELECT customer_id, COUNT(*) AS orders
FROM orders
WHERE created_at >= NOW() - INTERVAL '30 days'
GROUP BY customer_id
HAVING COUNT(*) > 3
ORDER BY orders DESC;`,
	`.card {
  display: grid;
  grid-template-columns: 1fr 2fr;
  gap: 1rem;
  border-radius: 12px;
  box-shadow: 0 4px 24px rgba(0, 240, 192, 0.2);
}`,
}
