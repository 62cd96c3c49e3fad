package util

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
}

func TestClientConfigFromEnv(t *testing.T) {
	t.Setenv("FLATMSG_TRANSPORT_ENDPOINTS", "a:1,b:2")
	t.Setenv("FLATMSG_TIMEOUT", "7")
	t.Setenv("FLATMSG_TRANSPORT_READ_BUFFER", "4")
	InitConfig()
	t.Cleanup(viper.Reset)

	conf := GetClientConfig()
	assert.Equal(t, []string{"a:1", "b:2"}, conf.Transport.Endpoints)
	assert.Equal(t, 7, conf.TimeoutSecond)
	assert.Equal(t, 4*1024, conf.Transport.ReadBufferSize)
}

func TestGetSerializerAndTransport(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("serializer", "yaml")
	_, err := GetSerializer()
	require.NoError(t, err)

	viper.Set("serializer", "xml")
	_, err = GetSerializer()
	assert.Error(t, err)

	for _, name := range []string{"http", "tcp", "unix"} {
		viper.Set("transport", name)
		_, err := GetTransport()
		assert.NoError(t, err, name)
	}

	viper.Set("transport", "rest")
	_, err = GetTransport()
	assert.Error(t, err)
}
