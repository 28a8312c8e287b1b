package chatflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKinds(t *testing.T) {
	r := DefaultKinds()

	var tags []string
	for _, d := range r.Kinds() {
		tags = append(tags, d.Kind)
	}
	assert.Equal(t, []string{KindMessage, KindImage, KindInput, KindCondition, KindDelay, KindAPICall}, tags)
	assert.Equal(t, []string{"communication", "media", "interaction", "logic", "utility", "integration"}, r.Categories())

	msg, ok := r.Lookup(KindMessage)
	require.True(t, ok)
	assert.Equal(t, "text", msg.ContentField)

	for _, d := range r.Kinds() {
		if d.Kind != KindMessage {
			assert.Empty(t, d.ContentField, "kind %s", d.Kind)
		}
	}
}

func TestRegistry_RegisterReplacesInPlace(t *testing.T) {
	r := NewRegistry(
		KindDescriptor{Kind: "a", Category: "x"},
		KindDescriptor{Kind: "b", Category: "y"},
	)
	r.Register(KindDescriptor{Kind: "a", Label: "A2", Category: "y"})
	r.Register(KindDescriptor{Kind: "c", Category: "x"})

	kinds := r.Kinds()
	require.Len(t, kinds, 3)
	assert.Equal(t, "A2", kinds[0].Label)
	assert.Equal(t, "c", kinds[2].Kind)

	byY := r.ByCategory("y")
	require.Len(t, byY, 2)
	assert.Equal(t, "a", byY[0].Kind)
	assert.Equal(t, "b", byY[1].Kind)
	assert.Empty(t, r.ByCategory("none"))
}

func TestCheckNode(t *testing.T) {
	r := DefaultKinds()

	tests := []struct {
		name string
		node Node
		want error
	}{
		{"valid message", Node{ID: "1", Kind: KindMessage, Data: Payload{"text": "hi"}}, nil},
		{"blank message", Node{ID: "2", Kind: KindMessage, Data: Payload{"text": "   "}}, ErrEmptyContent},
		{"missing data", Node{ID: "3", Kind: KindMessage}, ErrMissingNodeData},
		{"unknown kind", Node{ID: "4", Kind: "carousel", Data: Payload{}}, ErrUnknownKind},
		{"delay", Node{ID: "5", Kind: KindDelay, Data: Payload{"duration": 5}}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := r.CheckNode(tc.node)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCheckNode_KindCheck(t *testing.T) {
	r := DefaultKinds()

	err := r.CheckNode(Node{ID: "img", Kind: KindImage, Data: Payload{"imageUrl": ""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image URL")

	assert.NoError(t, r.CheckNode(Node{ID: "img", Kind: KindImage, Data: Payload{"imageUrl": "https://example.com/a.png"}}))
}
