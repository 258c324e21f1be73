package builtin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/kiosk404/oracle/internal/oracle/service/tools"
)

const (
	NewsToolName = "news_tool"

	maxHeadlines = 3
)

// NewsTopics are the categories accepted by news_tool.
var NewsTopics = []string{"business", "technology", "science", "health", "general"}

type newsResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title string `json:"title"`
	} `json:"articles"`
}

func newsSpec(c *Config) *tools.ToolSpec {
	return &tools.ToolSpec{
		Name: NewsToolName,
		Description: "STRICT NEWS TOOL - Only for recent headlines. " +
			"Valid topics: business, technology, science, health, general.",
		Parameters: []tools.ParameterDef{
			{
				Name:        "topic",
				Type:        tools.TypeString,
				Description: "Headline category.",
				Enum:        NewsTopics,
				Default:     "general",
				Normalize:   newsTopic,
			},
		},
		ErrorMarker: "NEWS_ERROR",
		Action: func(ctx context.Context, args map[string]any) (string, error) {
			return lookupHeadlines(ctx, c, stringArg(args, "topic"))
		},
	}
}

// newsTopic lowercases a topic and maps anything unrecognized to general.
func newsTopic(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if !slices.Contains(NewsTopics, topic) {
		return "general"
	}
	return topic
}

func lookupHeadlines(ctx context.Context, c *Config, topic string) (string, error) {
	if topic == "" {
		topic = "general"
	}

	query := url.Values{}
	query.Set("category", topic)
	query.Set("apiKey", c.NewsAPIKey)

	_, body, err := fetch(ctx, c.HTTPClient, joinURL(c.NewsBaseURL, "/v2/top-headlines", query))
	if err != nil {
		return "", err
	}
	var resp newsResponse
	if err := decode(body, &resp); err != nil {
		return "", err
	}
	if resp.Status == "error" {
		return "", errors.New(resp.Message)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Latest %s news:", topic)
	n := 0
	for _, a := range resp.Articles {
		if n == maxHeadlines {
			break
		}
		b.WriteString("\n• " + a.Title)
		n++
	}
	if n == 0 {
		return "", errors.New("No articles found")
	}
	return b.String(), nil
}
