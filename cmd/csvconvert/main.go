// Command csvconvert turns bank spreadsheet exports into a bulk-upload
// JSON document.
//
//	csvconvert -t transactions -i jan.csv -i feb.csv -o upload.json
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"moneylens/internal/csvconvert"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "csvconvert:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("csvconvert", pflag.ContinueOnError)
	inputs := flags.StringArrayP("input", "i", nil, "CSV export to read (repeatable)")
	output := flags.StringP("output", "o", "", "JSON file to write")
	kind := flags.StringP("type", "t", "", "export type: savings or transactions")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if len(*inputs) == 0 {
		return errors.New("at least one --input is required")
	}
	if *output == "" {
		return errors.New("--output is required")
	}

	converter, err := csvconvert.New(*kind)
	if err != nil {
		return err
	}
	for _, path := range *inputs {
		if err := convertFile(converter, path); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(converter.Payload(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := os.WriteFile(*output, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	return nil
}

func convertFile(c csvconvert.Converter, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := c.Convert(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
