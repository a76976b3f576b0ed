// Package model defines the field configurations, visibility rules, and form
// values the rest of the module works with. Builders reside in internal/model
// but return the types re-exported here.
//
// A Field is derived from one remote parameter descriptor (or appended as a
// synthetic capability field whose name starts with "__"). Values are a closed
// set of variants (Text, Number, Bool, List, Rows, TextOrFile, FileRef); the
// normalize package is the only place raw input is narrowed into them.
// Uploaded files never live in Values; callers keep them in a side-table and
// store a FileRef surrogate in the field's slot.
package model
