package main

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/domarena/html"
	"github.com/chrisuehlinger/domarena/internal/logger"
	"github.com/chrisuehlinger/domarena/network"
	"github.com/chrisuehlinger/domarena/sink"
	"github.com/chrisuehlinger/domarena/tree"
)

var drivers = []string{"replay", "stream"}

// buildOptions selects how a document is turned into a tree.
type buildOptions struct {
	driver    string
	fragment  string // context element name; replay driver only
	scripting bool
}

func load(ctx context.Context, location string) (*network.Resource, error) {
	client, err := network.NewClient(network.WithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return network.NewLoader(client).Load(ctx, location)
}

// build decodes res and runs the selected driver into a fresh sink. It
// returns the verified result and the name of the encoding used.
func build(ctx context.Context, res *network.Resource, opts buildOptions) (*sink.Result, string, error) {
	r, encoding, err := res.Reader(charsetLabel)
	if err != nil {
		return nil, "", err
	}
	s, err := sink.New(sink.WithParseErrorHandler(func(msg string) {
		logger.Debug("parse error", "location", res.URL, "msg", msg)
	}))
	if err != nil {
		return nil, encoding, err
	}

	switch {
	case opts.fragment != "":
		if opts.driver != "replay" {
			return nil, encoding, fmt.Errorf("fragment parsing needs the replay driver, not %q", opts.driver)
		}
		contextTag := atom.Lookup([]byte(opts.fragment))
		if contextTag == 0 {
			return nil, encoding, fmt.Errorf("unknown fragment context element %q", opts.fragment)
		}
		err = html.ReplayFragment(ctx, r, contextTag, s)
	case opts.driver == "replay":
		err = html.Replay(ctx, r, s, html.WithScripting(opts.scripting))
	case opts.driver == "stream":
		err = html.Stream(ctx, r, s)
	default:
		return nil, encoding, fmt.Errorf("unknown driver %q (want replay or stream)", opts.driver)
	}
	if err != nil {
		return nil, encoding, fmt.Errorf("%s driver: %w", opts.driver, err)
	}

	result, err := s.Finish()
	if err != nil {
		return nil, encoding, err
	}
	logger.Info("built tree",
		"location", res.URL,
		"driver", opts.driver,
		"session", result.Session.String(),
		"nodes", result.Arena.Len())
	return result, encoding, nil
}

// Summary describes a built tree.
type Summary struct {
	Location    string         `json:"location"`
	Driver      string         `json:"driver"`
	Encoding    string         `json:"encoding"`
	Session     string         `json:"session"`
	Quirks      string         `json:"quirks"`
	Nodes       int            `json:"nodes"`
	Kinds       map[string]int `json:"kinds"`
	MaxDepth    int            `json:"max_depth"`
	Orphans     int            `json:"orphans"` // detached roots other than the document, template contents included
	ParseErrors []string       `json:"parse_errors"`
}

func summarize(res *sink.Result) (*Summary, error) {
	s := &Summary{
		Session:     res.Session.String(),
		Quirks:      res.Quirks.String(),
		Kinds:       make(map[string]int),
		ParseErrors: res.Errors,
	}
	if s.ParseErrors == nil {
		s.ParseErrors = []string{}
	}

	for _, root := range res.Arena.Orphans() {
		if root != res.Root {
			s.Orphans++
		}
		err := res.Arena.Walk(root, func(_ tree.Handle, n *tree.Node, depth int) error {
			s.Nodes++
			s.Kinds[n.Kind().String()]++
			if depth > s.MaxDepth {
				s.MaxDepth = depth
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
