package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/vk/dxecore/internal/config"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate checks the platform description against the registered Go code:
// every config block and argument, and every component setting, must name
// something a module registered, and constant argument values must convert
// to the field types.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	names := make([]string, 0, len(model.Configs))
	for name := range model.Configs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		block := model.Configs[name]
		binding, ok := r.configs[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("config '%s': no module registers a configuration with this name", name))
			continue
		}
		fields := config.FieldNames(binding.Type)

		args := make([]string, 0, len(block.Arguments))
		for arg := range block.Arguments {
			args = append(args, arg)
		}
		sort.Strings(args)

		for _, arg := range args {
			field, ok := fields[arg]
			if !ok {
				errs = append(errs, fmt.Sprintf("config '%s': argument '%s' is not a field of %s", name, arg, binding.Type))
				continue
			}
			val, diags := block.Arguments[arg].Value(nil)
			if diags.HasErrors() {
				errs = append(errs, fmt.Sprintf("config '%s', argument '%s': %s", name, arg, diags.Error()))
				continue
			}
			if err := checkType(val, field); err != nil {
				errs = append(errs, fmt.Sprintf("config '%s', argument '%s': %v", name, arg, err))
			}
		}
	}

	components := make([]string, 0, len(model.Components))
	for name := range model.Components {
		components = append(components, name)
	}
	sort.Strings(components)
	for _, name := range components {
		if !r.componentNames[name] {
			errs = append(errs, fmt.Sprintf("component '%s': no module registers a component with this name", name))
		}
	}

	for _, b := range r.Configs() {
		if _, ok := model.Configs[b.Name]; !ok {
			logger.Debug("Config keeps its registered default.", "config", b.Name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func checkType(val cty.Value, field reflect.StructField) error {
	want, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface())
	if err != nil {
		return fmt.Errorf("could not imply cty type from Go field type %s: %w", field.Type, err)
	}
	if _, err := convert.Convert(val, want); err != nil {
		return fmt.Errorf("type mismatch. Field '%s' requires '%s' but the value is '%s'",
			field.Name, want.FriendlyName(), val.Type().FriendlyName())
	}
	return nil
}
