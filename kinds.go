package chatflow

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Built-in node kinds.
const (
	KindMessage   = "message"
	KindImage     = "image"
	KindInput     = "input"
	KindCondition = "condition"
	KindDelay     = "delay"
	KindAPICall   = "api-call"
)

// KindDescriptor describes a node kind: its palette metadata, the payload a new
// node starts with and the rules its data must satisfy.
type KindDescriptor struct {
	Kind        string  `json:"type"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Defaults    Payload `json:"defaultData"`

	// ContentField names a string field that must not be blank for the flow to
	// be saved. Empty means the kind carries no required content.
	ContentField string `json:"contentField,omitempty"`

	// Check runs kind-specific checks on a node's data. Optional.
	Check func(Payload) error `json:"-"`
}

// Registry maps kind tags to their descriptors.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	order []string
	kinds map[string]KindDescriptor
}

// NewRegistry returns a registry holding the given descriptors.
func NewRegistry(descs ...KindDescriptor) *Registry {
	r := &Registry{kinds: make(map[string]KindDescriptor)}
	for _, d := range descs {
		r.Register(d)
	}
	return r
}

// DefaultKinds returns a registry with the built-in kinds.
func DefaultKinds() *Registry {
	return NewRegistry(
		KindDescriptor{
			Kind:         KindMessage,
			Label:        "Message",
			Description:  "Send a text message to the user",
			Category:     "communication",
			Defaults:     Payload{"label": "Send Message", "text": "Enter your message here..."},
			ContentField: "text",
		},
		KindDescriptor{
			Kind:        KindImage,
			Label:       "Image",
			Description: "Send an image to the user",
			Category:    "media",
			Defaults:    Payload{"label": "Send Image", "imageUrl": "", "altText": "Image"},
			Check: func(p Payload) error {
				if s, _ := p["imageUrl"].(string); s == "" {
					return errors.New("image node must have an image URL")
				}
				return nil
			},
		},
		KindDescriptor{
			Kind:        KindInput,
			Label:       "User Input",
			Description: "Wait for user input or response",
			Category:    "interaction",
			Defaults:    Payload{"label": "Wait for Input", "inputType": "text", "placeholder": "Type your response..."},
		},
		KindDescriptor{
			Kind:        KindCondition,
			Label:       "Condition",
			Description: "Branch the flow based on conditions",
			Category:    "logic",
			Defaults:    Payload{"label": "Decision Point", "condition": "", "branches": []any{"Yes", "No"}},
		},
		KindDescriptor{
			Kind:        KindDelay,
			Label:       "Delay",
			Description: "Add a delay before the next message",
			Category:    "utility",
			Defaults:    Payload{"label": "Wait", "duration": 1000, "unit": "milliseconds"},
		},
		KindDescriptor{
			Kind:        KindAPICall,
			Label:       "API Call",
			Description: "Make an external API call",
			Category:    "integration",
			Defaults:    Payload{"label": "API Request", "method": "GET", "url": "", "headers": map[string]any{}},
		},
	)
}

// Register adds or replaces a kind. Replacing keeps the original position.
func (r *Registry) Register(d KindDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.kinds[d.Kind]; !ok {
		r.order = append(r.order, d.Kind)
	}
	r.kinds[d.Kind] = d
}

// Lookup returns the descriptor for kind.
func (r *Registry) Lookup(kind string) (KindDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.kinds[kind]
	return d, ok
}

// Kinds returns all descriptors in registration order.
func (r *Registry) Kinds() []KindDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]KindDescriptor, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.kinds[k])
	}
	return out
}

// ByCategory returns the descriptors in category, in registration order.
func (r *Registry) ByCategory(category string) []KindDescriptor {
	var out []KindDescriptor
	for _, d := range r.Kinds() {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range r.Kinds() {
		if !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	return out
}

// CheckNode reports whether a single node's data is acceptable for its kind.
func (r *Registry) CheckNode(n Node) error {
	d, ok := r.Lookup(n.Kind)
	if !ok {
		return &UnknownKindError{Kind: n.Kind}
	}
	if n.Data == nil {
		return ErrMissingNodeData
	}
	if d.ContentField != "" && !hasContent(n.Data, d.ContentField) {
		return fmt.Errorf("%w: %s", ErrEmptyContent, d.ContentField)
	}
	if d.Check != nil {
		if err := d.Check(n.Data); err != nil {
			return fmt.Errorf("chatflow: %s node %s: %w", n.Kind, n.ID, err)
		}
	}
	return nil
}

// hasContent reports whether field holds a non-blank string.
func hasContent(p Payload, field string) bool {
	s, ok := p[field].(string)
	return ok && strings.TrimSpace(s) != ""
}
