package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hexaflex/shadercube/optimizer"
)

// Config defines program configuration.
type Config struct {
	Input          string             // GLSL file to optimize.
	Output         string             // Path to store output in. Stdout if empty.
	FPS            float64            // Average frame rate the rules are evaluated against.
	Mobile         bool               // Evaluate rules for a mobile device?
	MaxTextureSize int                // Maximum texture size of the evaluated device.
	Only           []optimizer.RuleID // Restrict the pipeline to these rules.
	List           bool               // Print the registered rules and exit.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.FPS = 20
	c.MaxTextureSize = 8192

	flag.Usage = func() {
		fmt.Printf("%s [options] <shader file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	only := flag.String("only", "", "Comma-separated list of rules to run. All rules run if empty.")
	flag.Float64Var(&c.FPS, "fps", c.FPS, "Average frame rate to evaluate the rules against.")
	flag.BoolVar(&c.Mobile, "mobile", c.Mobile, "Evaluate the rules for a mobile device.")
	flag.IntVar(&c.MaxTextureSize, "max-texture", c.MaxTextureSize, "Maximum texture size of the evaluated device.")
	flag.StringVar(&c.Output, "out", c.Output, "Output file. Defaults to stdout.")
	flag.BoolVar(&c.List, "list", c.List, "Print the registered rules and exit.")
	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if c.List {
		return &c
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	for _, name := range filteredSplit(*only, ",") {
		var id optimizer.RuleID
		if err := id.UnmarshalText([]byte(name)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		c.Only = append(c.Only, id)
	}

	c.Input = flag.Arg(0)
	return &c
}

// filteredSplit splits value by sep and returns the resulting list, minus empty entries.
func filteredSplit(value, sep string) []string {
	out := strings.Split(value, sep)
	for i := 0; i < len(out); i++ {
		out[i] = strings.TrimSpace(out[i])
		if len(out[i]) == 0 {
			copy(out[i:], out[i+1:])
			out = out[:len(out)-1]
			i--
		}
	}
	return out
}
