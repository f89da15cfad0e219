package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hexaflex/shadercube/device"
	"github.com/hexaflex/shadercube/optimizer"
)

func main() {
	config := parseArgs()

	if config.List {
		listRules(os.Stdout)
		return
	}

	src, err := os.ReadFile(config.Input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	res := optimize(config, string(src))

	w, close := makeWriter(config)
	defer close()

	if _, err := io.WriteString(w, res.Source); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	printSummary(os.Stderr, res)
}

// optimize runs the rule pipeline over src for the device described by c.
func optimize(c *Config, src string) optimizer.Result {
	profile := device.Profile{
		Available: true,
		IsMobile:  c.Mobile,
		GPU:       device.GPU{MaxTextureSize: c.MaxTextureSize},
	}

	rules := optimizer.DefaultRules()
	if len(c.Only) > 0 {
		rules = selectRules(rules, c.Only)
	}

	return optimizer.Run(rules, src, optimizer.Input{
		Device: &profile,
		Perf:   &optimizer.Snapshot{AvgFPS: c.FPS},
	})
}

// selectRules returns the rules in ids, keeping registration order.
func selectRules(rules []optimizer.Rule, ids []optimizer.RuleID) []optimizer.Rule {
	want := make(map[optimizer.RuleID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var out []optimizer.Rule
	for _, r := range rules {
		if want[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// printSummary writes the applied rules and size change to w.
func printSummary(w io.Writer, res optimizer.Result) {
	if len(res.Applied) == 0 {
		fmt.Fprintln(w, "no rules applied")
		return
	}

	for _, a := range res.Applied {
		fmt.Fprintf(w, "%-20s %-14s %+5d  %s\n", a.Rule, a.Impact, a.SizeDiff, a.Description)
	}
	fmt.Fprintf(w, "%d -> %d bytes\n", res.SizeBefore, res.SizeAfter)
}

func listRules(w io.Writer) {
	for _, r := range optimizer.DefaultRules() {
		fmt.Fprintf(w, "%-20s %-14s %s\n", r.ID, r.Impact, r.Description)
	}
}

// makeWriter creates an output writer and a cleanup function for it.
func makeWriter(c *Config) (io.Writer, func()) {
	if c.Output == "" {
		return os.Stdout, func() {}
	}

	dir, _ := filepath.Split(c.Output)
	if dir != "" {
		err := os.MkdirAll(dir, 0744)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	fd, err := os.Create(c.Output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	return fd, func() { fd.Close() }
}
