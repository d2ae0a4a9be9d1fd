package props

import "errors"

var (
	// ErrKeyNotFound is returned by key-addressed DirtyMap operations when the
	// key is not present.
	ErrKeyNotFound = errors.New("props: key not found")
	// ErrNilHolder indicates a nil holder where one is required.
	ErrNilHolder = errors.New("props: holder is nil")
	// ErrNameRequired indicates a property declared without a name.
	ErrNameRequired = errors.New("props: property name must not be empty")
	// ErrDuplicateName indicates two leaves flattened to the same compound name.
	ErrDuplicateName = errors.New("props: duplicate compound name")
	// ErrNotStruct is returned by PropertiesOf for non-struct values.
	ErrNotStruct = errors.New("props: value is not a struct")
	// ErrFlushFuncRequired is returned by Flush without a write function.
	ErrFlushFuncRequired = errors.New("props: flush function is required")
)
