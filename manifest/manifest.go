// Package manifest reads the DynamoDB tables declared by a Serverless
// Framework service file or a plain CloudFormation template.
package manifest

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	copytables "github.com/seldebrings/sls-copy-stack-tables"
)

// TableResourceType is the CloudFormation type of a DynamoDB table.
const TableResourceType = "AWS::DynamoDB::Table"

// stageVariables are the stage references recognised in table names when the
// manifest does not carry a literal stage.
var stageVariables = []string{
	"${self:custom.stage}",
	"${self:provider.stage}",
	"${sls:stage}",
	"${opt:stage}",
	copytables.DefaultStageToken,
}

// CopyDataDeploy is the custom.copyDataDeploy section driving the post-deploy copy.
type CopyDataDeploy struct {
	SourceStage      string `yaml:"sourceStage"`
	TargetStage      string `yaml:"targetStage"`
	OverwriteAllData bool   `yaml:"overwriteAllData"`
}

// Resource is a CloudFormation resource. Only the table name is inspected.
type Resource struct {
	Type       string `yaml:"Type"`
	Properties struct {
		TableName yaml.Node `yaml:"TableName"`
	} `yaml:"Properties"`
}

// SkippedResource is a table resource whose name cannot be mapped across stages.
type SkippedResource struct {
	ID     string
	Reason string
}

// Manifest is a parsed service file.
type Manifest struct {
	Service  serviceName `yaml:"service"`
	Provider struct {
		Region string `yaml:"region"`
		Stage  string `yaml:"stage"`
	} `yaml:"provider"`
	Custom struct {
		Stage          string          `yaml:"stage"`
		CopyDataDeploy *CopyDataDeploy `yaml:"copyDataDeploy"`
	} `yaml:"custom"`

	// Serverless layout
	ServerlessResources resourceSection `yaml:"resources"`

	// CloudFormation layout
	Resources map[string]Resource `yaml:"Resources"`
}

// Name returns the service name.
func (m *Manifest) Name() string {
	return string(m.Service)
}

// Region returns provider.region.
func (m *Manifest) Region() string {
	return m.Provider.Region
}

// CopyDataDeploy returns custom.copyDataDeploy, or nil when absent.
func (m *Manifest) CopyDataDeploy() *CopyDataDeploy {
	return m.Custom.CopyDataDeploy
}

// Tables returns the sorted, deduplicated logical names of every table whose
// TableName is a literal string. ${self:service} and ${self:provider.region}
// are expanded; names left with any variable besides the stage token are
// reported by Skipped instead.
func (m *Manifest) Tables() []string {
	tables, _, _ := m.classify()
	return tables
}

// Skipped returns the table resources Tables leaves out and the resource file
// references that are not read, sorted by id.
func (m *Manifest) Skipped() []SkippedResource {
	_, skipped, _ := m.classify()
	return skipped
}

// StageToken returns the placeholder that carries the stage in table names.
//
// A literal custom.stage (as found in a rendered service file) is used as is.
// Otherwise the first known stage variable occurring in a table name is used,
// falling back to the default token.
func (m *Manifest) StageToken() string {
	_, _, token := m.classify()
	return token
}

func (m *Manifest) classify() (tables []string, skipped []SkippedResource, token string) {
	type named struct{ id, name string }
	var names []named

	m.eachTable(func(id string, r Resource) {
		name, ok := literalName(r)
		if !ok {
			reason := "TableName is not a literal string"
			if r.Properties.TableName.Kind == 0 {
				reason = "TableName is not set"
			}
			skipped = append(skipped, SkippedResource{ID: id, Reason: reason})
			return
		}
		names = append(names, named{id: id, name: m.expand(name)})
	})

	token = m.stageToken(func(v string) bool {
		for _, n := range names {
			if strings.Contains(n.name, v) {
				return true
			}
		}
		return false
	})

	seen := make(map[string]struct{})
	tables = []string{}
	for _, n := range names {
		if strings.Contains(strings.Replace(n.name, token, "", 1), "${") {
			skipped = append(skipped, SkippedResource{
				ID:     n.id,
				Reason: fmt.Sprintf("TableName %q has an unresolved variable", n.name),
			})
			continue
		}
		if _, dup := seen[n.name]; dup {
			continue
		}
		seen[n.name] = struct{}{}
		tables = append(tables, n.name)
	}

	for _, ref := range m.ServerlessResources.FileRefs {
		skipped = append(skipped, SkippedResource{
			ID:     ref,
			Reason: "resources from a referenced file are not read",
		})
	}

	sort.Strings(tables)
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].ID < skipped[j].ID })
	return tables, skipped, token
}

func (m *Manifest) stageToken(used func(string) bool) string {
	if s := m.Custom.Stage; s != "" && !strings.Contains(s, "${") {
		return s
	}
	for _, v := range stageVariables {
		if used(v) {
			return v
		}
	}
	return copytables.DefaultStageToken
}

// expand substitutes the service and region references whose values are
// literal in the manifest.
func (m *Manifest) expand(name string) string {
	for ref, value := range map[string]string{
		"${self:service}":         m.Name(),
		"${self:provider.region}": m.Region(),
	} {
		if value != "" && !strings.Contains(value, "${") {
			name = strings.ReplaceAll(name, ref, value)
		}
	}
	return name
}

// DeployRequest builds the request of the post-deploy copy from
// custom.copyDataDeploy. ok is false when the section is absent.
func (m *Manifest) DeployRequest() (req copytables.Request, ok bool) {
	cd := m.CopyDataDeploy()
	if cd == nil {
		return copytables.Request{}, false
	}
	return copytables.Request{
		SourceStage:      cd.SourceStage,
		TargetStage:      cd.TargetStage,
		OverwriteAllData: cd.OverwriteAllData,
		StageToken:       m.StageToken(),
		Tables:           m.Tables(),
	}, true
}

func (m *Manifest) eachTable(fn func(id string, r Resource)) {
	for _, resources := range []map[string]Resource{m.ServerlessResources.Resources, m.Resources} {
		for id, r := range resources {
			if r.Type == TableResourceType {
				fn(id, r)
			}
		}
	}
}

func literalName(r Resource) (string, bool) {
	n := r.Properties.TableName
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" || n.Value == "" {
		return "", false
	}
	return n.Value, true
}

// serviceName accepts both `service: name` and `service: {name: name}`.
type serviceName string

func (s *serviceName) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		var v struct {
			Name string `yaml:"name"`
		}
		if err := value.Decode(&v); err != nil {
			return err
		}
		*s = serviceName(v.Name)
		return nil
	}
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	*s = serviceName(name)
	return nil
}

// resourceSection accepts `resources` as a mapping or as a list of mappings.
// Scalar entries (file references) are kept in FileRefs and not followed.
type resourceSection struct {
	Resources map[string]Resource
	FileRefs  []string
}

func (r *resourceSection) UnmarshalYAML(value *yaml.Node) error {
	var nodes []*yaml.Node
	switch value.Kind {
	case yaml.MappingNode:
		nodes = []*yaml.Node{value}
	case yaml.SequenceNode:
		nodes = value.Content
	case yaml.ScalarNode:
		if value.Value != "" {
			r.FileRefs = append(r.FileRefs, value.Value)
		}
		return nil
	default:
		return nil
	}

	for _, n := range nodes {
		if n.Kind == yaml.ScalarNode && n.Value != "" {
			r.FileRefs = append(r.FileRefs, n.Value)
			continue
		}
		if n.Kind != yaml.MappingNode {
			continue
		}
		var part struct {
			Resources map[string]Resource `yaml:"Resources"`
		}
		if err := n.Decode(&part); err != nil {
			return err
		}
		for id, res := range part.Resources {
			if r.Resources == nil {
				r.Resources = make(map[string]Resource)
			}
			r.Resources[id] = res
		}
	}
	return nil
}
