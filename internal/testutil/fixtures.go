// Package testutil holds deterministic clocks, ID generators and model
// fixtures shared by package tests.
package testutil

import "github.com/rpl/application-services/internal/model"

// Counter is an object with a primary constructor and one method:
//
//	object Counter { constructor new(); increment() -> u64 }
func Counter() *model.ObjectType {
	return &model.ObjectType{
		Name: "Counter",
		Doc:  "A monotonically increasing counter.",
		Members: []model.ObjectMember{
			&model.Constructor{Name: "new"},
			&model.Method{Name: "increment", Return: model.U64{}},
		},
	}
}

// Math is a namespace with one function: add(a: u32, b: u32) -> u32.
func Math() *model.NamespaceType {
	return &model.NamespaceType{
		Name: "Math",
		Functions: []model.Function{{
			Name: "add",
			Args: []model.Argument{
				{Name: "a", Type: model.U32{}},
				{Name: "b", Type: model.U32{}},
			},
			Return: model.U32{},
		}},
	}
}

// Status is an enum with discriminants 0 and 1.
func Status() *model.EnumType {
	return &model.EnumType{
		Name: "Status",
		Variants: []model.Variant{
			{Name: "Active", Discriminant: 0},
			{Name: "Inactive", Discriminant: 1},
		},
	}
}

// Point is a record of two u32 fields.
func Point() *model.RecordType {
	return &model.RecordType{
		Name: "Point",
		Fields: []model.Field{
			{Name: "x", Type: model.U32{}},
			{Name: "y", Type: model.U32{}},
		},
	}
}

// Component wraps members into a component named "demo".
func Component(members ...model.Member) *model.Component {
	return &model.Component{Name: "demo", Members: members}
}

// Demo is the full fixture: Counter, Math, Status and Point, plus a
// Library object exercising every composite type.
func Demo() *model.Component {
	return Component(Counter(), Math(), Status(), Point(), Library())
}

// Library uses records, enums, optionals, sequences and maps in
// arguments and returns.
func Library() *model.ObjectType {
	return &model.ObjectType{
		Name: "Library",
		Members: []model.ObjectMember{
			&model.Constructor{Name: "new", Args: []model.Argument{{Name: "name", Type: model.String{}}}},
			&model.Constructor{Name: "with_capacity", Args: []model.Argument{{Name: "capacity", Type: model.U32{}}}, Throws: true},
			&model.Method{
				Name:   "lookup",
				Args:   []model.Argument{{Name: "key", Type: model.String{}}},
				Return: model.Optional{Inner: model.RecordRef{Name: "Point"}},
			},
			&model.Method{
				Name: "store",
				Args: []model.Argument{
					{Name: "points", Type: model.Sequence{Elem: model.RecordRef{Name: "Point"}}},
					{Name: "flags", Type: model.Map{Key: model.String{}, Value: model.Boolean{}}},
				},
				Throws: true,
			},
			&model.Method{Name: "status", Return: model.EnumRef{Name: "Status"}},
			&model.Method{Name: "clone_counter", Return: model.ObjectRef{Name: "Counter"}},
		},
	}
}

// DuplicateWidgets declares two objects named Widget, which collide on
// Widget_free.
func DuplicateWidgets() *model.Component {
	widget := func() *model.ObjectType {
		return &model.ObjectType{
			Name:    "Widget",
			Members: []model.ObjectMember{&model.Constructor{Name: "new"}},
		}
	}
	return Component(widget(), widget())
}

// Conn declares methods named like the lifecycle and conversion members
// that generated wrappers add to every object:
//
//	object Conn { constructor new(); close(); lower() -> u32; read(); to_string() -> string }
func Conn() *model.ObjectType {
	return &model.ObjectType{
		Name: "Conn",
		Members: []model.ObjectMember{
			&model.Constructor{Name: "new"},
			&model.Method{Name: "close"},
			&model.Method{Name: "lower", Return: model.U32{}},
			&model.Method{Name: "read"},
			&model.Method{Name: "to_string", Return: model.String{}},
		},
	}
}
