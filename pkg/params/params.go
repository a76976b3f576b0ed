package params

import "strings"

// Type is the remote parameter type reported by the processing service.
type Type string

const (
	TypeText              Type = "TEXT"
	TypeTextEdit          Type = "TEXT_EDIT"
	TypeString            Type = "STRING"
	TypeStringOrAttr      Type = "STRING_OR_ATTR"
	TypeStringOrChoice    Type = "STRING_OR_CHOICE"
	TypePassword          Type = "PASSWORD"
	TypeInteger           Type = "INTEGER"
	TypeFloat             Type = "FLOAT"
	TypeNumber            Type = "NUMBER"
	TypeRangeSlider       Type = "RANGE_SLIDER"
	TypeChoice            Type = "CHOICE"
	TypeLookupChoice      Type = "LOOKUP_CHOICE"
	TypeListbox           Type = "LISTBOX"
	TypeLookupListbox     Type = "LOOKUP_LISTBOX"
	TypeCheckbox          Type = "CHECKBOX"
	TypeBoolean           Type = "BOOLEAN"
	TypeDate              Type = "DATE"
	TypeTime              Type = "TIME"
	TypeDatetime          Type = "DATETIME"
	TypeDateTime          Type = "DATE_TIME"
	TypeColor             Type = "COLOR"
	TypeColorPick         Type = "COLOR_PICK"
	TypeTable             Type = "TABLE"
	TypeFilename          Type = "FILENAME"
	TypeFilenameMustExist Type = "FILENAME_MUSTEXIST"
	TypeDirname           Type = "DIRNAME"
	TypeDirnameMustExist  Type = "DIRNAME_MUSTEXIST"
	TypeDirnameSrc        Type = "DIRNAME_SRC"
	TypeLookupFile        Type = "LOOKUP_FILE"
	TypeReprojectionFile  Type = "REPROJECTION_FILE"
	TypeTextOrFile        Type = "TEXT_OR_FILE"
	TypeCoordSys          Type = "COORDSYS"
	TypeGeometry          Type = "GEOMETRY"
	TypeMessage           Type = "MESSAGE"
	TypeURL               Type = "URL"
	TypeAttributeName     Type = "ATTRIBUTE_NAME"
	TypeAttributeList     Type = "ATTRIBUTE_LIST"
	TypeDBConnection      Type = "DB_CONNECTION"
	TypeWebConnection     Type = "WEB_CONNECTION"
	TypeScripted          Type = "SCRIPTED"
	TypeNoValue           Type = "NOVALUE"
)

// Normalize upper-cases and trims the type so lookups are case-insensitive.
func (t Type) Normalize() Type {
	return Type(strings.ToUpper(strings.TrimSpace(string(t))))
}

// Option is a single entry of a choice-style parameter.
type Option struct {
	Value   any    `json:"value" yaml:"value"`
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`
}

// Column describes one column of a TABLE parameter.
type Column struct {
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Descriptor is a published parameter as returned by the remote service.
// Descriptors are immutable once fetched for a workspace.
type Descriptor struct {
	Name             string   `json:"name" yaml:"name"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type             Type     `json:"type" yaml:"type"`
	Model            string   `json:"model,omitempty" yaml:"model,omitempty"`
	DefaultValue     any      `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Optional         bool     `json:"optional,omitempty" yaml:"optional,omitempty"`
	Required         *bool    `json:"required,omitempty" yaml:"required,omitempty"`
	ListOptions      []Option `json:"listOptions,omitempty" yaml:"listOptions,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinimumExclusive bool     `json:"minimumExclusive,omitempty" yaml:"minimumExclusive,omitempty"`
	MaximumExclusive bool     `json:"maximumExclusive,omitempty" yaml:"maximumExclusive,omitempty"`
	DecimalPrecision *int     `json:"decimalPrecision,omitempty" yaml:"decimalPrecision,omitempty"`
	Step             *float64 `json:"step,omitempty" yaml:"step,omitempty"`
	Columns          []Column `json:"columns,omitempty" yaml:"columns,omitempty"`
	Visibility       any      `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	VisibilityRule   string   `json:"visibilityRule,omitempty" yaml:"visibilityRule,omitempty"`
}

// IsRequired reports whether the parameter must carry a value. An explicit
// required flag wins over the optional flag.
func (d Descriptor) IsRequired() bool {
	if d.Required != nil {
		return *d.Required
	}
	return !d.Optional
}

// Signature returns the ordered, comma-joined list of parameter names. Two
// descriptor lists with the same signature produce the same set of fields.
func Signature(descriptors []Descriptor) string {
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Name)
	}
	return strings.Join(names, ",")
}

// WorkspaceSummary is one entry of a repository listing.
type WorkspaceSummary struct {
	Name         string `json:"name" yaml:"name"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Type         string `json:"type,omitempty" yaml:"type,omitempty"`
	LastSaveDate string `json:"lastSaveDate,omitempty" yaml:"lastSaveDate,omitempty"`
}

// WorkspaceMetadata describes a single workspace item.
type WorkspaceMetadata struct {
	Name         string   `json:"name" yaml:"name"`
	Title        string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Repository   string   `json:"repositoryName,omitempty" yaml:"repository,omitempty"`
	Services     []string `json:"services,omitempty" yaml:"services,omitempty"`
	LastSaveDate string   `json:"lastSaveDate,omitempty" yaml:"lastSaveDate,omitempty"`
}

// Detail is the result of fetching a workspace's parameters.
type Detail struct {
	Parameters []Descriptor      `json:"parameters" yaml:"parameters"`
	Item       WorkspaceMetadata `json:"item" yaml:"item"`
}
