package ids

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProcessorID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "single letter", input: "a"},
		{name: "letters and digits", input: "greenbox2"},
		{name: "maximum length", input: "abcdefghijklmnopqrst"},
		{name: "too long", input: "abcdefghijklmnopqrstu", wantErr: true},
		{name: "leading digit", input: "1abc", wantErr: true},
		{name: "uppercase", input: "Abc", wantErr: true},
		{name: "dash not allowed", input: "green-box", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseProcessorID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidIdentifier))
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "processor id", verr.Kind)
				assert.Equal(t, tt.input, verr.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	valid := map[string]func(string) (string, error){
		"my-junction": func(s string) (string, error) { id, err := ParseJunctionID(s); return id.String(), err },
		"retries":     func(s string) (string, error) { id, err := ParseParameterID(s); return id.String(), err },
		"large-x":     func(s string) (string, error) { id, err := ParseProfileID(s); return id.String(), err },
		"stream.a_b":  func(s string) (string, error) { id, err := ParseResourceID(s); return id.String(), err },
		"pipe1":       func(s string) (string, error) { id, err := ParsePipelineID(s); return id.String(), err },
	}
	for input, parse := range valid {
		t.Run(input, func(t *testing.T) {
			got, err := parse(input)
			require.NoError(t, err)
			assert.Equal(t, input, got)
		})
	}
}

func TestMustPanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustProcessorID("Not-Valid") })
	assert.NotPanics(t, func() { MustProcessorID("valid") })
}

func TestUnmarshalText(t *testing.T) {
	var id JunctionID
	require.NoError(t, id.UnmarshalText([]byte("inbound")))
	assert.Equal(t, "inbound", id.String())

	err := id.UnmarshalText([]byte("_bad"))
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.Equal(t, "inbound", id.String(), "failed unmarshal must not modify the value")

	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "inbound", string(text))
}

func TestZeroValue(t *testing.T) {
	var id ProfileID
	assert.True(t, id.IsZero())
	assert.False(t, MustProfileID("default").IsZero())
}

func TestSortedKeys(t *testing.T) {
	m := map[JunctionID]int{
		MustJunctionID("c"): 3,
		MustJunctionID("a"): 1,
		MustJunctionID("b"): 2,
	}
	keys := SortedKeys(m)
	require.Len(t, keys, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{keys[0].String(), keys[1].String(), keys[2].String()})
}
