package main

import (
	"testing"

	"github.com/andresuchdata/stockline/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewAppCommands(t *testing.T) {
	app := newApp(&config.Config{})

	names := make([]string, 0, len(app.Commands))
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"recompute", "cgi", "forecast", "seed", "report"}, names)

	report := app.Command("report")
	if assert.NotNil(t, report) {
		flags := make([]string, 0, len(report.Flags))
		for _, f := range report.Flags {
			flags = append(flags, f.Names()[0])
		}
		assert.Equal(t, []string{"format", "out", "upload"}, flags)
	}
}
