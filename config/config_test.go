package config

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/onsi/gomega"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseDefaults(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg, err := Parse(newFlagSet(), nil)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(cfg).To(gomega.Equal(Default()))
}

func TestParseFlags(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg, err := Parse(newFlagSet(), []string{
		"-debug",
		"-width", "640",
		"-height", "480",
		"-model", "viking_room.obj",
		"-fence-timeout", "250ms",
		"-resizable=false",
	})
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(cfg.Debug).To(gomega.BeTrue())
	g.Expect(cfg.Width).To(gomega.Equal(640))
	g.Expect(cfg.Height).To(gomega.Equal(480))
	g.Expect(cfg.ModelPath).To(gomega.Equal("viking_room.obj"))
	g.Expect(cfg.FenceTimeout).To(gomega.Equal(250 * time.Millisecond))
	g.Expect(cfg.Resizable).To(gomega.BeFalse())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		msg  string
	}{
		{"zero width", []string{"-width", "0"}, "invalid window size"},
		{"negative height", []string{"-height", "-5"}, "invalid window size"},
		{"no shaders", []string{"-shaders", ""}, "shader directory"},
		{"zero timeout", []string{"-fence-timeout", "0s"}, "fence timeout"},
		{"unknown flag", []string{"-nope"}, "parsing flags"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := gomega.NewWithT(t)

			_, err := Parse(newFlagSet(), test.argv)
			g.Expect(err).To(gomega.MatchError(gomega.ContainSubstring(test.msg)))
		})
	}
}
