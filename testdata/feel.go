package testdata

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"slices"
	"strconv"

	"github.com/cnxtech/jdmn/feel"
	"gopkg.in/yaml.v3"
)

//go:embed feel/*.yaml
var feelTestFiles embed.FS

// GetFEELTests returns the conformance tests, one group per file. The tests
// describe behavior shared by all profiles.
func GetFEELTests() []FEELTestGroup {
	files, err := fs.Glob(feelTestFiles, "feel/*.yaml")
	if err != nil {
		log.Fatalf("list feel tests: %v", err)
	}
	slices.Sort(files)

	var groups []FEELTestGroup
	for _, f := range files {
		data, err := feelTestFiles.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}
		var group FEELTestGroup
		if err := yaml.Unmarshal(data, &group); err != nil {
			log.Fatalf("parse %s: %v", f, err)
		}
		if group.Name == "" {
			group.Name = path.Base(f)
		}
		groups = append(groups, group)
	}
	return groups
}

type FEELTestGroup struct {
	Name  string     `yaml:"name"`
	Tests []FEELTest `yaml:"tests"`
}

type FEELTest struct {
	Name     string          `yaml:"name"`
	Function string          `yaml:"function"`
	Args     FEELTestValues  `yaml:"args"`
	Expected FEELTestValue   `yaml:"expected"`
}

// Inputs builds the arguments of the test with the given library.
func (t FEELTest) Inputs(l *feel.Library) []feel.Value {
	args := make([]feel.Value, 0, len(t.Args))
	for _, a := range t.Args {
		args = append(args, a.Value(l))
	}
	return args
}

// FEELTestValue is a value written as a single key mapping naming its kind,
// e.g. {date: "2016-08-01"}, or as null.
type FEELTestValue struct {
	Type    string
	Text    string
	Items   FEELTestValues
	Entries []FEELTestEntry
}

// FEELTestValues decodes each sequence item on its own so that null items
// are kept as unknown values.
type FEELTestValues []FEELTestValue

func (vs *FEELTestValues) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a sequence", node.Line)
	}
	values := make(FEELTestValues, len(node.Content))
	for i, item := range node.Content {
		if err := values[i].UnmarshalYAML(item); err != nil {
			return err
		}
	}
	*vs = values
	return nil
}

type FEELTestEntry struct {
	Key   string        `yaml:"key"`
	Value FEELTestValue `yaml:"value"`
}

func (v *FEELTestValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*v = FEELTestValue{Type: "null"}
		return nil
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: expected a single key mapping or null", node.Line)
	}
	key, content := node.Content[0].Value, node.Content[1]
	*v = FEELTestValue{Type: key}
	switch key {
	case "list":
		return content.Decode(&v.Items)
	case "context":
		return content.Decode(&v.Entries)
	case "number", "string", "boolean", "date", "time", "dateTime", "duration":
		return content.Decode(&v.Text)
	default:
		return fmt.Errorf("line %d: unknown value type %q", node.Line, key)
	}
}

// Value builds the value with the given library.
func (v FEELTestValue) Value(l *feel.Library) feel.Value {
	switch v.Type {
	case "number":
		return l.Number(v.Text)
	case "string":
		return feel.String(v.Text)
	case "boolean":
		b, err := strconv.ParseBool(v.Text)
		if err != nil {
			log.Fatalf("invalid boolean %q", v.Text)
		}
		return feel.Boolean(b)
	case "date":
		return l.Call("date", feel.String(v.Text))
	case "time":
		return l.Call("time", feel.String(v.Text))
	case "dateTime":
		return l.Call("date and time", feel.String(v.Text))
	case "duration":
		return l.Call("duration", feel.String(v.Text))
	case "list":
		list := feel.List{}
		for _, item := range v.Items {
			list = append(list, item.Value(l))
		}
		return list
	case "context":
		entries := make([]feel.Entry, 0, len(v.Entries))
		for _, e := range v.Entries {
			entries = append(entries, feel.Entry{Key: e.Key, Value: e.Value.Value(l)})
		}
		return feel.NewContext(entries...)
	default:
		return feel.Unknown
	}
}
