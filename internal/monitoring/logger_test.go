package monitoring

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("spiral size=%d", 3)
	assert.True(t, called, "custom logger was not called")

	called = false
	SetLogger(nil)
	Logf("spiral size=%d", 5)
	assert.False(t, called, "no-op logger should not reach the previous logger")
}

func TestSetOutput(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	Logf("primes=%d", 25)
	assert.Contains(t, buf.String(), "primes=25")

	restore()
	Logf("after restore")
	assert.NotContains(t, buf.String(), "after restore")
}

func TestLogf_Default(t *testing.T) {
	assert.NotNil(t, Logf)
	assert.NotPanics(t, func() { Logf("test message: %s", "value") })
}
