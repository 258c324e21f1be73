package cliflag

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestNamedFlagSetsOrder(t *testing.T) {
	var fss NamedFlagSets
	fss.FlagSet("chat").String("chat.default-thread", "demo-thread", "default thread")
	fss.FlagSet("store").String("store.type", "inmemory", "store backend")
	fss.FlagSet("chat")

	assert.Equal(t, []string{"chat", "store"}, fss.Order)

	var buf bytes.Buffer
	PrintSections(&buf, fss, 0)
	assert.Contains(t, buf.String(), "Chat flags:")
	assert.Contains(t, buf.String(), "--store.type")
}

func TestWordSepNormalizeFunc(t *testing.T) {
	fs := pflag.NewFlagSet("t", pflag.ContinueOnError)
	assert.Equal(t, pflag.NormalizedName("max-round-trips"), WordSepNormalizeFunc(fs, "max_round_trips"))
	assert.Equal(t, pflag.NormalizedName("plain"), WordSepNormalizeFunc(fs, "plain"))
}
