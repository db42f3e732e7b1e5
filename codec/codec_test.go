package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manifest struct {
	Snapshot string            `json:"snapshot"`
	Words    int               `json:"words"`
	Labels   map[string]string `json:"labels,omitempty"`
}

func TestCodecs_Interchangeable(t *testing.T) {
	in := manifest{Snapshot: "snapshots/a.vwi", Words: 42, Labels: map[string]string{"set": "oxford5k"}}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		data, err := enc.Marshal(in)
		require.NoError(t, err)

		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			var out manifest
			require.NoError(t, dec.Unmarshal(data, &out), "%s -> %s", enc.Name(), dec.Name())
			assert.Equal(t, in, out)
		}
	}
}

func TestByName(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		got, ok := ByName(c.Name())
		require.True(t, ok)
		assert.Equal(t, c, got)
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
	assert.Panics(t, func() { MustByName("msgpack") })
	assert.Equal(t, Default, MustByName("go-json"))
}
