package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Epoch int       `json:"epoch"`
	Name  string    `json:"name"`
	Alpha []float64 `json:"alpha"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Interchangeable(t *testing.T) {
	in := record{Epoch: 12, Name: "epoch-000012.emb", Alpha: []float64{1, 0.5}}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				data, err := enc.Marshal(in)
				require.NoError(t, err)

				var out record
				require.NoError(t, dec.Unmarshal(data, &out))
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestGoJSON_MarshalIndent(t *testing.T) {
	data, err := GoJSON{}.MarshalIndent(record{Epoch: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"epoch\": 1")
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `{"epoch":3,"name":"","alpha":null}`, string(MustMarshal(nil, record{Epoch: 3})))

	assert.Panics(t, func() {
		MustMarshal(JSON{}, make(chan int))
	})
}
