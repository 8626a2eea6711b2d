package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/rickgao/orderbook-recorder/internal/api"
	"github.com/rickgao/orderbook-recorder/internal/market"
)

func write(w io.Writer, format string, markets []api.Market) error {
	if format == "yaml" {
		return writeYAML(w, markets)
	}
	return writeText(w, markets)
}

// writeText lists one row per outcome.
func writeText(w io.Writer, markets []api.Market) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tOUTCOME\tTOKEN_ID\tQUESTION")
	for _, m := range markets {
		for _, t := range m.Tokens {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.MarketSlug, t.Outcome, t.TokenID, m.Question)
		}
	}
	return tw.Flush()
}

// writeYAML emits an instruments file the recorder can load directly.
func writeYAML(w io.Writer, markets []api.Market) error {
	doc := struct {
		Instruments market.Instruments `yaml:"instruments"`
	}{
		Instruments: api.ToInstruments(markets),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode instruments: %w", err)
	}
	return enc.Close()
}
