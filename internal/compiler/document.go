package compiler

// ComponentDoc is the on-disk shape of an interface model, shared by the
// CUE, JSON and YAML loaders. Members are lists, not maps, so declaration
// order survives every format.
//
//	component: "Demo"
//	members: [
//		{object: "Counter", members: [{constructor: "new"}, {method: "increment", returns: "u64"}]},
//		{enum: "Status", variants: [{name: "Ok"}, {name: "Failed"}]},
//	]
type ComponentDoc struct {
	Component string      `json:"component" yaml:"component"`
	Members   []MemberDoc `json:"members" yaml:"members"`
}

// MemberDoc is a tagged member entry. Exactly one of Object, Record,
// Namespace or Enum names the member and selects its kind.
type MemberDoc struct {
	Object    string `json:"object,omitempty" yaml:"object,omitempty"`
	Record    string `json:"record,omitempty" yaml:"record,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Enum      string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Doc       string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Members   []ObjectMemberDoc `json:"members,omitempty" yaml:"members,omitempty"`
	Fields    []FieldDoc        `json:"fields,omitempty" yaml:"fields,omitempty"`
	Functions []FunctionDoc     `json:"functions,omitempty" yaml:"functions,omitempty"`
	Variants  []VariantDoc      `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// ObjectMemberDoc is a constructor or a method entry. A constructor entry
// with an empty name is the primary constructor.
type ObjectMemberDoc struct {
	Constructor *string  `json:"constructor,omitempty" yaml:"constructor,omitempty"`
	Method      string   `json:"method,omitempty" yaml:"method,omitempty"`
	Doc         string   `json:"doc,omitempty" yaml:"doc,omitempty"`
	Args        []ArgDoc `json:"args,omitempty" yaml:"args,omitempty"`
	Returns     string   `json:"returns,omitempty" yaml:"returns,omitempty"`
	Throws      bool     `json:"throws,omitempty" yaml:"throws,omitempty"`
}

// FunctionDoc is a namespace function entry.
type FunctionDoc struct {
	Name    string   `json:"name" yaml:"name"`
	Doc     string   `json:"doc,omitempty" yaml:"doc,omitempty"`
	Args    []ArgDoc `json:"args,omitempty" yaml:"args,omitempty"`
	Returns string   `json:"returns,omitempty" yaml:"returns,omitempty"`
	Throws  bool     `json:"throws,omitempty" yaml:"throws,omitempty"`
}

// ArgDoc is a named argument with a type expression.
type ArgDoc struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// FieldDoc is a named record field with a type expression.
type FieldDoc struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// VariantDoc is an enum variant. A missing discriminant is one more than
// the previous variant's, starting at zero.
type VariantDoc struct {
	Name         string `json:"name" yaml:"name"`
	Discriminant *int64 `json:"discriminant,omitempty" yaml:"discriminant,omitempty"`
}
