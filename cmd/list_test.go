package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"returnsdesk/internal/domain/returns"
)

func TestRenderRecordsFormats(t *testing.T) {
	records := []returns.ReturnRecord{committedWidget()}

	var table bytes.Buffer
	if err := renderRecords(&table, "table", records); err != nil {
		t.Fatalf("renderRecords(table) error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(table.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "order_id") || !strings.Contains(lines[1], "Widget") {
		t.Fatalf("table = %q", table.String())
	}

	var out bytes.Buffer
	if err := renderRecords(&out, "yaml", records); err != nil {
		t.Fatalf("renderRecords(yaml) error = %v", err)
	}
	var views []recordView
	if err := yaml.Unmarshal(out.Bytes(), &views); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if len(views) != 1 || views[0].StoreName != "Xinyi" || views[0].Cost != 10 {
		t.Fatalf("views = %+v", views)
	}

	var tomlOut bytes.Buffer
	if err := renderRecords(&tomlOut, "toml", records); err != nil {
		t.Fatalf("renderRecords(toml) error = %v", err)
	}
	var doc struct {
		Returns []recordView `toml:"returns"`
	}
	if err := toml.Unmarshal(tomlOut.Bytes(), &doc); err != nil {
		t.Fatalf("toml.Unmarshal() error = %v", err)
	}
	if len(doc.Returns) != 1 || doc.Returns[0].OrderID != 1 || doc.Returns[0].Origin != "Form" {
		t.Fatalf("toml doc = %+v", doc)
	}

	if err := renderRecords(&out, "xml", records); err == nil {
		t.Fatal("renderRecords(xml) expected error")
	}
}
