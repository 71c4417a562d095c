package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitWithWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("cashon-test", "warn", &buf)
	t.Cleanup(func() { Logger = zerolog.Nop() })

	Info().Msg("hidden")
	Warn().Str("reference", "ref-1").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, `"service":"cashon-test"`)
	assert.Contains(t, out, `"reference":"ref-1"`)
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("cashon-test", "loud", &buf)
	t.Cleanup(func() { Logger = zerolog.Nop() })

	assert.Equal(t, zerolog.InfoLevel, Logger.GetLevel())
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("cashon-test", "debug", &buf)
	t.Cleanup(func() { Logger = zerolog.Nop() })

	l := With("withdrawal")
	l.Info().Msg("tagged")

	assert.Contains(t, buf.String(), `"component":"withdrawal"`)
}
