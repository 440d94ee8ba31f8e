package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain json",
			in:   `{"entities": []}`,
			want: `{"entities": []}`,
		},
		{
			name: "json code fence",
			in:   "```json\n{\"entities\": []}\n```",
			want: `{"entities": []}`,
		},
		{
			name: "bare code fence",
			in:   "```\n{\"entities\": []}\n```",
			want: `{"entities": []}`,
		},
		{
			name: "leading prose",
			in:   `Here is the extraction: {"entities": []}`,
			want: `{"entities": []}`,
		},
		{
			name: "trailing prose",
			in:   `{"entities": []} Let me know if you need anything else.`,
			want: `{"entities": []}`,
		},
		{
			name: "json array",
			in:   `The entities are: ["a", "b"]`,
			want: `["a", "b"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONFromResponse(tt.in))
		})
	}
}

func TestUnmarshalResponse(t *testing.T) {
	type payload struct {
		Entities []struct {
			Name string `json:"name"`
		} `json:"entities"`
	}

	t.Run("valid json", func(t *testing.T) {
		var p payload
		err := UnmarshalResponse(`{"entities": [{"name": "Holmes"}]}`, &p)
		require.NoError(t, err)
		require.Len(t, p.Entities, 1)
		assert.Equal(t, "Holmes", p.Entities[0].Name)
	})

	t.Run("fenced json with prose", func(t *testing.T) {
		var p payload
		err := UnmarshalResponse("Sure! Here you go:\n```json\n{\"entities\": [{\"name\": \"Watson\"}]}\n```", &p)
		require.NoError(t, err)
		require.Len(t, p.Entities, 1)
	})

	t.Run("repairable json", func(t *testing.T) {
		// Trailing comma and single quotes, the damage models actually produce
		var p payload
		err := UnmarshalResponse(`{"entities": [{"name": "Holmes"},]}`, &p)
		require.NoError(t, err)
		require.Len(t, p.Entities, 1)
	})

	t.Run("unparseable response", func(t *testing.T) {
		var p payload
		err := UnmarshalResponse("I was unable to process this text.", &p)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedResponse)
		assert.Contains(t, err.Error(), "unable to process")
	})

	t.Run("raw payload is truncated in error", func(t *testing.T) {
		var p payload
		long := make([]byte, 2000)
		for i := range long {
			long[i] = 'a'
		}
		err := UnmarshalResponse(string(long), &p)
		require.Error(t, err)
		assert.Less(t, len(err.Error()), 700)
	})
}
