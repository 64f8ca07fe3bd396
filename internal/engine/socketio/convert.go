package socketio

import (
	"fmt"

	"github.com/vk/nxpost/internal/postjob"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// jobValue is the wire form of a job.
func jobValue(job postjob.Job) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"job_id":        cty.StringVal(job.ID.String()),
		"target":        cty.StringVal(job.Target),
		"target_kind":   cty.StringVal(job.TargetKind.String()),
		"postprocessor": cty.StringVal(job.Postprocessor),
		"output":        cty.StringVal(job.OutputPath),
		"listing":       cty.BoolVal(job.EmitListing),
		"ball_center":   cty.BoolVal(job.EmitBallCenter),
		"units":         cty.StringVal(string(job.Units)),
	})
}

// decodeResult reads the result code from a post:result payload. A job_id,
// when present, must match wantID.
func decodeResult(val cty.Value, wantID string) (int, error) {
	if val.IsNull() || !val.Type().IsObjectType() {
		return 0, fmt.Errorf("unexpected result payload of type %s", val.Type().FriendlyName())
	}
	if val.Type().HasAttribute("job_id") {
		idVal := val.GetAttr("job_id")
		if idVal.Type() == cty.String && !idVal.IsNull() && idVal.AsString() != wantID {
			return 0, fmt.Errorf("result for job %s received while waiting for %s", idVal.AsString(), wantID)
		}
	}
	if !val.Type().HasAttribute("code") {
		return 0, fmt.Errorf("result payload has no code")
	}
	var code int
	if err := gocty.FromCtyValue(val.GetAttr("code"), &code); err != nil {
		return 0, fmt.Errorf("invalid result code: %w", err)
	}
	return code, nil
}

// ctyValueToInterface converts a cty.Value to a Go interface{}.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if val.Type().IsPrimitiveType() {
		switch val.Type() {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", val.Type().FriendlyName())
		}
	}
	if val.Type().IsObjectType() || val.Type().IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			elem, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = elem
		}
		return out, nil
	}
	if val.Type().IsTupleType() || val.Type().IsListType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			elem, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", val.Type().FriendlyName())
}

// interfaceToCtyValue converts a decoded JSON value to a cty.Value.
func interfaceToCtyValue(data any) (cty.Value, error) {
	if data == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	switch v := data.(type) {
	case string:
		return cty.StringVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case map[string]any:
		attrs := make(map[string]cty.Value)
		for key, val := range v {
			ctyVal, err := interfaceToCtyValue(val)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key] = ctyVal
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		elems := make([]cty.Value, 0, len(v))
		for _, val := range v {
			ctyVal, err := interfaceToCtyValue(val)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, ctyVal)
		}
		return cty.TupleVal(elems), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported type for conversion to cty.Value: %T", v)
	}
}
