package model

// Component is the root of an interface model.
type Component struct {
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

// MemberKind identifies the variant of a Member.
type MemberKind string

const (
	KindObject    MemberKind = "object"
	KindRecord    MemberKind = "record"
	KindNamespace MemberKind = "namespace"
	KindEnum      MemberKind = "enum"
)

// Member is a sealed interface over the top-level members of a Component.
// Only *ObjectType, *RecordType, *NamespaceType and *EnumType implement it.
type Member interface {
	MemberName() string
	Kind() MemberKind
	member()
}

// ObjectType is an opaque native object exposed through a handle.
type ObjectType struct {
	Name    string         `json:"name"`
	Doc     string         `json:"doc,omitempty"`
	Members []ObjectMember `json:"members"`
}

// RecordType is a plain data aggregate passed by value.
type RecordType struct {
	Name   string  `json:"name"`
	Doc    string  `json:"doc,omitempty"`
	Fields []Field `json:"fields"`
}

// NamespaceType groups free functions.
type NamespaceType struct {
	Name      string     `json:"name"`
	Doc       string     `json:"doc,omitempty"`
	Functions []Function `json:"functions"`
}

// EnumType is a C-like enumeration with explicit discriminants.
type EnumType struct {
	Name     string    `json:"name"`
	Doc      string    `json:"doc,omitempty"`
	Variants []Variant `json:"variants"`
}

func (o *ObjectType) MemberName() string    { return o.Name }
func (r *RecordType) MemberName() string    { return r.Name }
func (n *NamespaceType) MemberName() string { return n.Name }
func (e *EnumType) MemberName() string      { return e.Name }

func (*ObjectType) Kind() MemberKind    { return KindObject }
func (*RecordType) Kind() MemberKind    { return KindRecord }
func (*NamespaceType) Kind() MemberKind { return KindNamespace }
func (*EnumType) Kind() MemberKind      { return KindEnum }

func (*ObjectType) member()    {}
func (*RecordType) member()    {}
func (*NamespaceType) member() {}
func (*EnumType) member()      {}

// PrimaryConstructorName is the name of the constructor that maps to the
// native language's own construction syntax.
const PrimaryConstructorName = "new"

// ObjectMember is a sealed interface over *Constructor and *Method.
type ObjectMember interface {
	MemberName() string
	Arguments() []Argument
	objectMember()
}

// Constructor creates a new native object and returns its handle.
type Constructor struct {
	Name   string     `json:"name"`
	Doc    string     `json:"doc,omitempty"`
	Args   []Argument `json:"args"`
	Throws bool       `json:"throws,omitempty"`
}

// Method operates on a borrowed handle.
// Return is nil when the method returns nothing.
type Method struct {
	Name   string     `json:"name"`
	Doc    string     `json:"doc,omitempty"`
	Args   []Argument `json:"args"`
	Return TypeRef    `json:"return,omitempty"`
	Throws bool       `json:"throws,omitempty"`
}

func (c *Constructor) MemberName() string    { return c.Name }
func (m *Method) MemberName() string         { return m.Name }
func (c *Constructor) Arguments() []Argument { return c.Args }
func (m *Method) Arguments() []Argument      { return m.Args }
func (*Constructor) objectMember()           {}
func (*Method) objectMember()                {}

// IsPrimary reports whether c is the object's primary constructor.
func (c *Constructor) IsPrimary() bool {
	return c.Name == PrimaryConstructorName
}

// Function is a free function inside a namespace.
type Function struct {
	Name   string     `json:"name"`
	Doc    string     `json:"doc,omitempty"`
	Args   []Argument `json:"args"`
	Return TypeRef    `json:"return,omitempty"`
	Throws bool       `json:"throws,omitempty"`
}

// Argument is a named, typed parameter.
type Argument struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// Field is a named, typed record field.
type Field struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// Variant is an enum variant with its wire discriminant.
type Variant struct {
	Name         string `json:"name"`
	Discriminant int64  `json:"discriminant"`
}

// Lookup returns the member with the given name.
func (c *Component) Lookup(name string) (Member, bool) {
	for _, m := range c.Members {
		if m != nil && m.MemberName() == name {
			return m, true
		}
	}
	return nil, false
}

// Constructors returns the object's constructors in declaration order.
func (o *ObjectType) Constructors() []*Constructor {
	var out []*Constructor
	for _, m := range o.Members {
		if c, ok := m.(*Constructor); ok {
			out = append(out, c)
		}
	}
	return out
}

// Methods returns the object's methods in declaration order.
func (o *ObjectType) Methods() []*Method {
	var out []*Method
	for _, m := range o.Members {
		if meth, ok := m.(*Method); ok {
			out = append(out, meth)
		}
	}
	return out
}
