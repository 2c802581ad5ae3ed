package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sardine-ai/ctmagent-config/manager"
	"github.com/sardine-ai/ctmagent-config/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var decimal = regexp.MustCompile(`^[-+]?(0|[1-9][0-9]*)$`)

type applyOptions struct {
	file   string
	set    []string
	state  string
	check  bool
	format string
}

func newApplyCommand(o *globalOptions) *cobra.Command {
	a := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a desired configuration",
		Long: `Apply writes the supplied settings that differ from the current ones.

Settings come from a desired-state document (-f, "-" for stdin) and from
--set flags, which win over the document:

  ctmagent-config apply -f agent.yaml
  ctmagent-config apply --set diagnostic_level=2 --set ssl=yes
  ctmagent-config apply --state absent --set ssl=

Every setting is validated before anything is written. Writes are not
transactional; a failed write leaves the earlier ones in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			desired, err := a.desired(cmd.InOrStdin())
			if err != nil {
				return err
			}
			m, err := o.manager()
			if err != nil {
				return err
			}
			var opts []manager.Option
			if a.check {
				opts = append(opts, manager.WithCheckMode())
			}
			result, err := m.Apply(desired, opts...)
			if err != nil {
				if result.Changed {
					// Written before the failure.
					if perr := printValue(cmd.OutOrStdout(), a.format, result); perr != nil {
						logrus.WithError(perr).Error("error printing result")
					}
				}
				return err
			}
			return printValue(cmd.OutOrStdout(), a.format, result)
		},
	}
	cmd.Flags().StringVarP(&a.file, "filename", "f", "", "desired-state document, - for stdin")
	cmd.Flags().StringArrayVar(&a.set, "set", nil, "key=value setting, repeatable")
	cmd.Flags().StringVar(&a.state, "state", "", "present or absent, overrides the document")
	cmd.Flags().BoolVar(&a.check, "check", false, "report what would change without writing")
	cmd.Flags().StringVar(&a.format, "format", "yaml", "output format: yaml or json")
	return cmd
}

func (a *applyOptions) desired(stdin io.Reader) (model.DesiredState, error) {
	desired := model.DesiredState{Config: map[string]interface{}{}}
	if a.file != "" {
		var data []byte
		var err error
		if a.file == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(a.file)
		}
		if err != nil {
			return desired, err
		}
		if err := yaml.Unmarshal(data, &desired); err != nil {
			return desired, fmt.Errorf("parsing %s: %w", a.file, err)
		}
		if desired.Config == nil {
			desired.Config = map[string]interface{}{}
		}
	}
	for _, kv := range a.set {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return desired, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		desired.Config[strings.TrimSpace(name)] = scalar(value)
	}
	if a.state != "" {
		desired.State = model.State(a.state)
	}
	state, err := model.ParseState(string(desired.State))
	if err != nil {
		return desired, err
	}
	desired.State = state
	return desired, nil
}

// scalar reads a --set value the way it would read in a YAML document,
// except that only booleans and plain decimal integers are typed. Octal,
// hex and float spellings stay strings so the schema sees what was typed.
func scalar(value string) interface{} {
	if value == "" {
		return ""
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(value), &doc); err != nil || len(doc.Content) != 1 {
		return value
	}
	node := doc.Content[0]
	if node.Kind != yaml.ScalarNode {
		return value
	}
	switch node.Tag {
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if decimal.MatchString(node.Value) {
			if n, err := strconv.Atoi(node.Value); err == nil {
				return n
			}
		}
	case "!!str":
		return node.Value
	}
	return value
}
