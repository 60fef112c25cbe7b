package access

import (
	"context"
	"errors"
	"fmt"
	"os"

	jmes "github.com/jmespath/go-jmespath"
	"gopkg.in/yaml.v3"

	"tenantportal/pkg/content"
)

var ErrUnknownWidget = errors.New("unknown widget query id")

// WidgetBinding ties a page-builder query id to the content kind it lists.
type WidgetBinding struct {
	QueryID      string       `yaml:"query_id"`
	Kind         content.Kind `yaml:"kind"`
	PostTypePath string       `yaml:"post_type_path"` // JMESPath into the widget document
	LimitPath    string       `yaml:"limit_path"`
}

type WidgetBindings struct {
	byID map[string]WidgetBinding
}

// DefaultWidgetBindings covers the stock tenant_* widget queries.
func DefaultWidgetBindings() *WidgetBindings {
	wb, _ := newWidgetBindings([]WidgetBinding{
		{QueryID: "tenant_flows", Kind: content.KindFlow},
		{QueryID: "tenant_resources", Kind: content.KindResource},
		{QueryID: "tenant_reps", Kind: content.KindRep},
		{QueryID: "tenant_blog_posts", Kind: content.KindPost},
	})
	return wb
}

// LoadWidgetBindings reads a YAML file of the form:
//
//	widgets:
//	  - query_id: tenant_flows
//	    kind: flow
//	    post_type_path: query.post_type
func LoadWidgetBindings(path string) (*WidgetBindings, error) {
	if path == "" {
		return DefaultWidgetBindings(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Widgets []WidgetBinding `yaml:"widgets"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}
	return newWidgetBindings(doc.Widgets)
}

func newWidgetBindings(list []WidgetBinding) (*WidgetBindings, error) {
	wb := &WidgetBindings{byID: map[string]WidgetBinding{}}
	for _, b := range list {
		if b.QueryID == "" {
			return nil, errors.New("widget binding without query_id")
		}
		if _, ok := content.ParseKind(string(b.Kind)); !ok {
			return nil, fmt.Errorf("widget %s: unknown kind %q", b.QueryID, b.Kind)
		}
		if b.PostTypePath == "" {
			b.PostTypePath = "post_type"
		}
		if b.LimitPath == "" {
			b.LimitPath = "posts_per_page"
		}
		if _, err := jmes.Compile(b.PostTypePath); err != nil {
			return nil, fmt.Errorf("widget %s: post_type_path: %w", b.QueryID, err)
		}
		if _, err := jmes.Compile(b.LimitPath); err != nil {
			return nil, fmt.Errorf("widget %s: limit_path: %w", b.QueryID, err)
		}
		wb.byID[b.QueryID] = b
	}
	return wb, nil
}

func (wb *WidgetBindings) Lookup(queryID string) (WidgetBinding, bool) {
	b, ok := wb.byID[queryID]
	return b, ok
}

// FilterWidgetQuery builds the query a page-builder widget asks for and
// applies the actor's filter for whichever kind the document selects.
func (e *Engine) FilterWidgetQuery(ctx context.Context, a Actor, queryID string, doc any) (*content.Query, error) {
	b, ok := e.widgets.Lookup(queryID)
	if !ok {
		return nil, ErrUnknownWidget
	}
	kind := b.Kind
	if v, err := jmes.Search(b.PostTypePath, doc); err == nil {
		if s, ok := v.(string); ok && s != "" {
			k, ok := content.ParseKind(s)
			if !ok {
				return nil, fmt.Errorf("widget %s: unknown post type %q", queryID, s)
			}
			kind = k
		}
	}
	q := content.NewQuery(kind)
	if v, err := jmes.Search(b.LimitPath, doc); err == nil {
		if n, ok := v.(float64); ok && n > 0 {
			q.Limit = int(n)
		}
	}
	e.FilterQuery(ctx, a, q)
	return q, nil
}
