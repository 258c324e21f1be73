package builtin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kiosk404/oracle/internal/oracle/service/tools"
)

const (
	DictionaryToolName = "dictionary_tool"

	noDefinition = "No definition found."
)

type dictionaryEntry struct {
	Meanings []struct {
		Definitions []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func dictionarySpec(c *Config) *tools.ToolSpec {
	return &tools.ToolSpec{
		Name:        DictionaryToolName,
		Description: "Return the dictionary definition of a single English word.",
		Parameters: []tools.ParameterDef{
			{
				Name:        "word",
				Type:        tools.TypeString,
				Description: "The single word to define.",
				Required:    true,
				Pattern:     `^\S+$`,
			},
		},
		ErrorMarker: "DICTIONARY_ERROR",
		Action: func(ctx context.Context, args map[string]any) (string, error) {
			return lookupDefinition(ctx, c, stringArg(args, "word"))
		},
	}
}

func lookupDefinition(ctx context.Context, c *Config, word string) (string, error) {
	status, body, err := fetch(ctx, c.HTTPClient,
		joinURL(c.DictionaryBaseURL, "/api/v2/entries/en/"+url.PathEscape(word), nil))
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusNotFound:
		return noDefinition, nil
	case status < 200 || status > 299:
		return "", fmt.Errorf("dictionary service returned status %d", status)
	}

	var entries []dictionaryEntry
	if err := decode(body, &entries); err != nil {
		return "", err
	}
	for _, e := range entries {
		for _, m := range e.Meanings {
			for _, d := range m.Definitions {
				if d.Definition != "" {
					return fmt.Sprintf("Definition of %s: %s", word, d.Definition), nil
				}
			}
		}
	}
	return noDefinition, nil
}
