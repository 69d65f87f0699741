package manifest

import (
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	jsoniter "github.com/json-iterator/go"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

var manifestSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "resource", LabelNames: []string{"kind", "name"}},
	},
}

var resourceSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "state"}},
	Blocks:     []hcl.BlockHeaderSchema{{Type: "spec"}},
}

// LoadHCL parses a manifest of the form:
//
//	resource "mq-destination" "orders" {
//	  state = "present"
//	  spec {
//	    queue_id = "orders"
//	  }
//	}
//
// Spec attributes are literal expressions; there is no variable or
// function evaluation.
func LoadHCL(path string) ([]domain.ResourceBlock, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if file == nil || diags.HasErrors() {
		return nil, errors.Newf(errors.CodeManifestParse, "parsing HCL manifest %s: %s", path, diags.Error())
	}

	content, contentDiags := file.Body.Content(manifestSchema)
	if contentDiags.HasErrors() {
		return nil, errors.Newf(errors.CodeManifestInvalid, "manifest %s: %s", path, contentDiags.Error())
	}

	blocks := make([]domain.ResourceBlock, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		rb, err := decodeResourceBlock(block)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, rb)
	}
	return blocks, nil
}

func decodeResourceBlock(block *hcl.Block) (domain.ResourceBlock, error) {
	kind, name := block.Labels[0], block.Labels[1]
	if kind == "" || name == "" {
		return domain.ResourceBlock{}, errors.Newf(errors.CodeManifestInvalid,
			"resource block at %s needs non-empty kind and name labels", block.DefRange.String())
	}

	rb := domain.ResourceBlock{
		Kind: domain.ResourceKind(kind),
		Name: name,
		Spec: map[string]any{},
	}

	content, diags := block.Body.Content(resourceSchema)
	if diags.HasErrors() {
		return domain.ResourceBlock{}, errors.Newf(errors.CodeManifestInvalid,
			"resource %s/%s: %s", kind, name, diags.Error())
	}

	if attr, ok := content.Attributes["state"]; ok {
		val, valDiags := attr.Expr.Value(nil)
		if valDiags.HasErrors() || !val.Type().Equals(cty.String) || val.IsNull() {
			return domain.ResourceBlock{}, errors.Newf(errors.CodeManifestInvalid,
				"resource %s/%s: 'state' must be a string", kind, name)
		}
		rb.State = domain.LifecycleState(val.AsString())
	}

	var specBlock *hcl.Block
	for _, inner := range content.Blocks {
		if specBlock != nil {
			return domain.ResourceBlock{}, errors.Newf(errors.CodeManifestInvalid,
				"resource %s/%s declares more than one spec block", kind, name)
		}
		specBlock = inner
	}
	if specBlock == nil {
		return rb, nil
	}

	attrs, attrDiags := specBlock.Body.JustAttributes()
	if attrDiags.HasErrors() {
		return domain.ResourceBlock{}, errors.Newf(errors.CodeManifestInvalid,
			"resource %s/%s: %s", kind, name, attrDiags.Error())
	}
	for attrName, attr := range attrs {
		val, valDiags := attr.Expr.Value(nil)
		if valDiags.HasErrors() {
			return domain.ResourceBlock{}, errors.Newf(errors.CodeManifestInvalid,
				"resource %s/%s: evaluating spec attribute %q: %s", kind, name, attrName, valDiags.Error())
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return domain.ResourceBlock{}, errors.Wrapf(err, errors.CodeManifestInvalid,
				"resource %s/%s: decoding spec attribute %q", kind, name, attrName)
		}
		rb.Spec[attrName] = goVal
	}
	return rb, nil
}

// ctyToGo lowers a cty value to plain Go types. Nulls come back as nil
// so the caller can keep the key in the spec map. Whole numbers become
// int64 to avoid float drift on large ids.
func ctyToGo(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, errors.New(errors.CodeManifestInvalid, "value is not a literal")
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty.Equals(cty.String):
		return val.AsString(), nil
	case ty.Equals(cty.Bool):
		return val.True(), nil
	case ty.Equals(cty.Number):
		bf := val.AsBigFloat()
		if i64, acc := bf.Int64(); acc == big.Exact {
			return i64, nil
		}
		f64, _ := bf.Float64()
		return f64, nil
	}

	jsonBytes, err := ctyjson.Marshal(val, ty)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeManifestInvalid,
			"marshaling %s value to intermediary JSON", ty.FriendlyName())
	}
	var out any
	json := jsoniter.ConfigCompatibleWithStandardLibrary
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		return nil, errors.Wrapf(err, errors.CodeManifestInvalid,
			"unmarshaling intermediary JSON for %s value", ty.FriendlyName())
	}
	return out, nil
}
