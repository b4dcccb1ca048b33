// Package schema turns Go structs into schema models.
//
// A schema model is a struct (or a pointer to a struct) whose exported fields are named, typed slots.
// The field name is taken from the json tag when there is one. Fields marked omitempty are optional,
// all the others are required. Decoding a mapping into a model checks that every required field is
// present and that every value has the declared type, then runs the validate tags of the struct.
package schema
