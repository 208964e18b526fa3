// Package gemini streams generated code from the Gemini API. A [Client]
// satisfies codeviz.TextSource.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "gemini-2.5-flash"

const (
	// StreamPrompt opens the endless snippet stream.
	StreamPrompt = `
Generate an endless stream of diverse code snippets.
Alternate between Python, JavaScript, Rust, Go, SQL, and CSS.
Keep each snippet concise, between 5 and 15 lines.
Do not include markdown backticks like ` + "```python" + `.
Just provide the raw code.
Here is an example of a JavaScript snippet:

function factorial(n) {
  if (n === 0) {
    return 1;
  }
  return n * factorial(n - 1);
}

Now, begin generating.
`

	// continueMessage is sent whenever a streamed reply ends.
	continueMessage = "continue generating more code snippets"

	defaultMaxHistory = 8
	maxEmptyReplies   = 3
)

var (
	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("gemini: missing API key")

	errEmptyReply = errors.New("gemini: model returned no text")
)

// promptFor wraps a user request in the raw-code instruction.
func promptFor(request string) string {
	return fmt.Sprintf(`
Generate a code snippet based on the following request: "%s".
The code should be concise and directly address the request.
Do not include any explanations or markdown formatting like `+"```language"+`.
Only output the raw code.
`, request)
}

// generator is the subset of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Options configures New.
type Options struct {
	APIKey string
	Model  string // DefaultModel when empty
	// MaxHistory bounds how many earlier replies are resent with each
	// continuation request. Defaults to 8.
	MaxHistory int
}

// Client generates code with a Gemini model.
type Client struct {
	gen        generator
	model      string
	maxHistory int
}

// New creates a client for the Gemini API backend.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newClient(gc.Models, opts), nil
}

func newClient(gen generator, opts Options) *Client {
	c := &Client{gen: gen, model: opts.Model, maxHistory: opts.MaxHistory}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxHistory <= 0 {
		c.maxHistory = defaultMaxHistory
	}
	return c
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Stream asks for an endless stream of snippets and forwards every text
// chunk to emit. When a reply ends it asks the model to continue, so Stream
// only returns when ctx is cancelled (nil) or a request fails.
func (c *Client) Stream(ctx context.Context, emit func(fragment string)) error {
	history := []*genai.Content{genai.NewContentFromText(StreamPrompt, genai.RoleUser)}
	empty := 0
	for ctx.Err() == nil {
		reply, err := c.streamReply(ctx, history, emit)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini: stream: %w", err)
		}
		if strings.TrimSpace(reply) == "" {
			empty++
			if empty >= maxEmptyReplies {
				return fmt.Errorf("gemini: stream: %w", errEmptyReply)
			}
			continue
		}
		empty = 0
		history = append(history,
			genai.NewContentFromText(reply, genai.RoleModel),
			genai.NewContentFromText(continueMessage, genai.RoleUser),
		)
		history = trimHistory(history, c.maxHistory)
	}
	return nil
}

// streamReply runs one streaming request and returns the full reply text.
func (c *Client) streamReply(ctx context.Context, history []*genai.Content, emit func(string)) (string, error) {
	var reply strings.Builder
	filter := fenceFilter{lineStart: true}
	for resp, err := range c.gen.GenerateContentStream(ctx, c.model, history, nil) {
		if err != nil {
			return reply.String(), err
		}
		if ctx.Err() != nil {
			break
		}
		chunk := resp.Text()
		reply.WriteString(chunk)
		if out := filter.write(chunk); out != "" {
			emit(out)
		}
	}
	if ctx.Err() != nil {
		return reply.String(), nil
	}
	if out := filter.flush(); out != "" {
		emit(out)
	}
	// Keep consecutive replies on separate lines.
	if reply.Len() > 0 && !strings.HasSuffix(reply.String(), "\n") {
		emit("\n")
	}
	return reply.String(), nil
}

// trimHistory keeps the opening prompt plus the last pairs model/user pairs.
func trimHistory(history []*genai.Content, pairs int) []*genai.Content {
	keep := 2 * pairs
	if len(history) <= 1+keep {
		return history
	}
	out := make([]*genai.Content, 0, 1+keep)
	out = append(out, history[0])
	return append(out, history[len(history)-keep:]...)
}

// Complete returns raw code for a single request.
func (c *Client) Complete(ctx context.Context, request string) (string, error) {
	resp, err := c.gen.GenerateContent(ctx, c.model, genai.Text(promptFor(request)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	code := stripFences(resp.Text())
	if strings.TrimSpace(code) == "" {
		return "", errEmptyReply
	}
	return code, nil
}

// stripFences removes markdown code fence lines the model sometimes adds
// despite being asked not to.
func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if isFence(l) {
			continue
		}
		out = append(out, l)
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}

func isFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// fenceFilter drops fence lines from a chunked stream. A line starting with
// a backtick is held until it is complete; everything else passes through.
type fenceFilter struct {
	lineStart bool
	holding   bool
	held      strings.Builder
}

func (f *fenceFilter) write(s string) string {
	var out strings.Builder
	for _, r := range s {
		if f.holding {
			f.held.WriteRune(r)
			if r == '\n' {
				if !isFence(f.held.String()) {
					out.WriteString(f.held.String())
				}
				f.held.Reset()
				f.holding = false
				f.lineStart = true
			}
			continue
		}
		if f.lineStart && r == '`' {
			f.holding = true
			f.held.WriteRune(r)
			f.lineStart = false
			continue
		}
		out.WriteRune(r)
		f.lineStart = r == '\n'
	}
	return out.String()
}

// flush returns a held partial line unless it is a fence.
func (f *fenceFilter) flush() string {
	s := f.held.String()
	f.held.Reset()
	f.holding = false
	f.lineStart = true
	if isFence(s) {
		return ""
	}
	return s
}
