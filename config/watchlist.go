package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Item is one watchlist entry. Bench overrides Config.Benchmark; "-"
// scores the ticker without a benchmark.
type Item struct {
	Ticker string `yaml:"ticker"`
	Name   string `yaml:"name,omitempty"`
	Bench  string `yaml:"bench,omitempty"`
}

// Watchlist accepts three YAML shapes:
//
//	watchlist: [AAPL, MSFT]
//	watchlist: {AAPL: Apple, MSFT: Microsoft}
//	watchlist: [{ticker: AAPL, name: Apple, bench: QQQ}]
type Watchlist []Item

func (w *Watchlist) UnmarshalYAML(n *yaml.Node) error {
	var out Watchlist
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			out = append(out, Item{
				Ticker: strings.TrimSpace(n.Content[i].Value),
				Name:   strings.TrimSpace(n.Content[i+1].Value),
			})
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			switch c.Kind {
			case yaml.ScalarNode:
				out = append(out, Item{Ticker: strings.TrimSpace(c.Value)})
			case yaml.MappingNode:
				var it Item
				if err := c.Decode(&it); err != nil {
					return err
				}
				it.Ticker = strings.TrimSpace(it.Ticker)
				out = append(out, it)
			default:
				return fmt.Errorf("line %d: unsupported watchlist entry", c.Line)
			}
		}
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			break
		}
		return fmt.Errorf("line %d: watchlist must be a list or a map", n.Line)
	default:
		return fmt.Errorf("line %d: watchlist must be a list or a map", n.Line)
	}
	*w = out
	return nil
}

// Tickers lists the watchlist tickers, first occurrence wins.
func (w Watchlist) Tickers() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range w {
		if seen[it.Ticker] {
			continue
		}
		seen[it.Ticker] = true
		out = append(out, it.Ticker)
	}
	return out
}

// BenchFor resolves an item's benchmark against the default. An empty
// result means no benchmark.
func BenchFor(it Item, def string) string {
	switch it.Bench {
	case "":
		if def == it.Ticker {
			return ""
		}
		return def
	case "-":
		return ""
	default:
		return it.Bench
	}
}
