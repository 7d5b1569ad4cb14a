package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServePortOutOfRangeProducesExactClapStyleMessage(t *testing.T) {
	cmd := serveCmd()
	cmd.SetArgs([]string{"-p", "65536"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()
	assert.ErrorContains(t, err, "invalid value '65536' for '-p <PORT>': 65536 is not in 1..=65535")
}

func TestServePortZeroOutOfRange(t *testing.T) {
	cmd := serveCmd()
	cmd.SetArgs([]string{"-p", "0"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()
	assert.ErrorContains(t, err, "invalid value '0' for '-p <PORT>': 0 is not in 1..=65535")
}
