package main

import (
	"fmt"
	"os"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"gopkg.in/yaml.v3"

	"github.com/sambeau/expando/pkg/expando/ast"
	"github.com/sambeau/expando/pkg/expando/parser"
	"github.com/sambeau/expando/pkg/expando/render"
)

// The sample table renders folder-listing items: the kind of entries
// a file browser or mailbox index would feed the engine.

// DomainItem is the domain id for all item fields.
const DomainItem = 1

// Unique ids within DomainItem.
const (
	UidName = iota + 1
	UidSize
	UidCount
	UidNew
	UidTag
	UidDate    // timestamp, numeric; conditions use this
	UidDateStr // formatted date text
)

// Item is one entry to be rendered, loadable from YAML.
type Item struct {
	Name  string `yaml:"name"`
	Size  int64  `yaml:"size"`
	Count int64  `yaml:"count"`
	New   bool   `yaml:"new"`
	Tag   bool   `yaml:"tag"`
	Date  string `yaml:"date"`

	date time.Time
}

// itemDefs is the definition table for item format strings.
var itemDefs = []parser.Definition{
	{Token: "n", Description: "item name", Did: DomainItem, Uid: UidName, Type: parser.TypeString},
	{Token: "s", Description: "size in bytes", Did: DomainItem, Uid: UidSize, Type: parser.TypeNumber},
	{Token: "C", Description: "message count", Did: DomainItem, Uid: UidCount, Type: parser.TypeNumber},
	{Token: "N", Description: "new-mail flag", Did: DomainItem, Uid: UidNew, Type: parser.TypeNumber},
	{Token: "t", Description: "tagged marker", Did: DomainItem, Uid: UidTag, Type: parser.TypeString},
	{Token: "d", Description: "date, relative-date predicate in conditions", Did: DomainItem, Uid: UidDate, Type: parser.TypeNumber, Parse: parser.CondDateParse},
	{Token: "D", Description: "date, formatted", Did: DomainItem, Uid: UidDateStr, Type: parser.TypeString},
}

// newItemRegistry builds the provider registry paired with itemDefs.
// Dates are formatted for the given locale.
func newItemRegistry(locale monday.Locale) *render.Registry {
	reg := render.NewRegistry()

	reg.AddString(DomainItem, UidName, func(_ ast.Node, data any, _ render.RenderFlags) string {
		return data.(*Item).Name
	})
	reg.AddNumber(DomainItem, UidSize, func(_ ast.Node, data any, _ render.RenderFlags) int64 {
		return data.(*Item).Size
	})
	reg.AddNumber(DomainItem, UidCount, func(_ ast.Node, data any, _ render.RenderFlags) int64 {
		return data.(*Item).Count
	})
	reg.AddNumber(DomainItem, UidNew, func(_ ast.Node, data any, _ render.RenderFlags) int64 {
		if data.(*Item).New {
			return 1
		}
		return 0
	})
	reg.AddString(DomainItem, UidTag, func(_ ast.Node, data any, _ render.RenderFlags) string {
		if data.(*Item).Tag {
			return "*"
		}
		return ""
	})
	reg.AddNumber(DomainItem, UidDate, func(_ ast.Node, data any, _ render.RenderFlags) int64 {
		return data.(*Item).date.Unix()
	})
	reg.AddString(DomainItem, UidDateStr, func(_ ast.Node, data any, _ render.RenderFlags) string {
		return monday.Format(data.(*Item).date, "Jan _2 15:04", locale)
	})

	return reg
}

// loadItems reads items from a YAML file and resolves their dates.
func loadItems(path string) ([]*Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var items []*Item
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, item := range items {
		if item.Date == "" {
			item.date = time.Now()
			continue
		}
		t, err := dateparse.ParseLocal(item.Date)
		if err != nil {
			return nil, fmt.Errorf("bad date %q for item %q: %w", item.Date, item.Name, err)
		}
		item.date = t
	}

	return items, nil
}

// sampleItems is the built-in data used when no item file is given.
func sampleItems() []*Item {
	now := time.Now()
	return []*Item{
		{Name: "inbox", Size: 81920, Count: 42, New: true, date: now.Add(-30 * time.Minute)},
		{Name: "archive", Size: 1048576, Count: 1207, date: now.AddDate(0, -2, 0)},
		{Name: "drafts", Size: 4096, Count: 3, Tag: true, date: now.AddDate(0, 0, -1)},
	}
}
