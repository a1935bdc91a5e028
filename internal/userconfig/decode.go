package userconfig

import (
	"fmt"
	"math/big"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/ohler55/ojg/oj"
	"github.com/ohler55/ojg/sen"
	"github.com/zclconf/go-cty/cty"
)

func decodeJSON(data []byte) (map[string]any, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return topLevelObject(v)
}

// decodeJSONC accepts comments and trailing commas.
func decodeJSONC(data []byte) (map[string]any, error) {
	v, err := sen.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSONC: %w", err)
	}
	return topLevelObject(v)
}

func decodeTOML(data []byte) (map[string]any, error) {
	m := map[string]any{}
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return m, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if v == nil {
		return map[string]any{}, nil
	}
	return topLevelObject(v)
}

// decodeHCL maps top-level attributes to keys and each unlabeled block to
// a section named by its type.
func decodeHCL(data []byte) (map[string]any, error) {
	file, diags := hclsyntax.ParseConfig(data, BaseName+".hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to parse HCL: unexpected body type %T", file.Body)
	}
	out, err := hclAttributes(body.Attributes)
	if err != nil {
		return nil, err
	}
	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return nil, fmt.Errorf("block %q must not have labels", block.Type)
		}
		section, err := hclAttributes(block.Body.Attributes)
		if err != nil {
			return nil, err
		}
		for _, nested := range block.Body.Blocks {
			section[nested.Type] = map[string]any{}
		}
		out[block.Type] = section
	}
	return out, nil
}

func hclAttributes(attrs hclsyntax.Attributes) (map[string]any, error) {
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		goVal, err := ctyToGo(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = goVal
	}
	return out, nil
}

func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return v.AsString(), nil
	case ty.Equals(cty.Bool):
		return v.True(), nil
	case ty.Equals(cty.Number):
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := map[string]any{}
		for k, ev := range v.AsValueMap() {
			gv, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k] = gv
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []any
		for _, ev := range v.AsValueSlice() {
			gv, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}

func topLevelObject(v any) (map[string]any, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("configuration must be an object, got %T", v)
	}
	return m, nil
}
