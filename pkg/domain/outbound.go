package domain

// MaxMessageLength is the largest text, in characters, sent in one outbound message.
const MaxMessageLength = 4000

// Outbound is a message produced for the transport.
type Outbound struct {
	Text string `json:"text"`

	// Options are selectable labels, grouped in rows.
	Options [][]string `json:"options,omitempty"`
}

// Chunk splits text into consecutive pieces of at most limit characters.
// Splitting is by character position only; joining the pieces yields text.
func Chunk(text string, limit int) []string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return []string{text}
	}
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Split breaks a long message into several, keeping the options on the last one.
func (o Outbound) Split(limit int) []Outbound {
	parts := Chunk(o.Text, limit)
	out := make([]Outbound, len(parts))
	for i, p := range parts {
		out[i] = Outbound{Text: p}
	}
	out[len(out)-1].Options = o.Options
	return out
}
